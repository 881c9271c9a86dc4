package cart

import (
	"context"
	"errors"
	"sort"

	"github.com/candylabs/sweetshop/internal/sweets"
)

// SweetReader is the catalog view the cart needs: current stock for the
// advisory check and full details for resolving a cart read.
type SweetReader interface {
	Get(ctx context.Context, id string) (sweets.Sweet, error)
}

type Line struct {
	Sweet    sweets.Sweet `json:"sweet"`
	Quantity int          `json:"quantity"`
}

type Cart struct {
	UserID string `json:"user_id"`
	Items  []Line `json:"items"`
}

type Service struct {
	Store  Store
	Sweets SweetReader
}

// Add merges qty into the user's cart entry for a sweet, after an advisory
// check that the merged total fits current stock. The check reserves
// nothing: stock may be gone by purchase time, and that is reported then.
func (s *Service) Add(ctx context.Context, userID, sweetID string, qty int) (Cart, error) {
	if sweetID == "" || qty <= 0 {
		return Cart{}, sweets.ErrInvalidQuantity
	}
	sw, err := s.Sweets.Get(ctx, sweetID)
	if err != nil {
		return Cart{}, err
	}
	entries, err := s.Store.Entries(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	total := entries[sweetID] + qty
	if total > sw.Quantity {
		return Cart{}, sweets.ErrInsufficientStock
	}
	if err := s.Store.SetQuantity(ctx, userID, sweetID, total); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, sweetID string) (Cart, error) {
	if err := s.Store.Remove(ctx, userID, sweetID); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, userID)
}

// Get resolves cart entries to full sweets. Entries whose sweet has vanished
// are skipped in the view; the reconciliation sweep removes them durably.
func (s *Service) Get(ctx context.Context, userID string) (Cart, error) {
	entries, err := s.Store.Entries(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	out := Cart{UserID: userID, Items: []Line{}}
	for sweetID, qty := range entries {
		sw, err := s.Sweets.Get(ctx, sweetID)
		if errors.Is(err, sweets.ErrNotFound) {
			continue
		}
		if err != nil {
			return Cart{}, err
		}
		out.Items = append(out.Items, Line{Sweet: sw, Quantity: qty})
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].Sweet.Name < out.Items[j].Sweet.Name })
	return out, nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.Store.Clear(ctx, userID)
}
