package reconcile

import (
	"context"
	"encoding/json"
	"log"

	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/candylabs/sweetshop/internal/kafka"
	"github.com/candylabs/sweetshop/internal/sweets"
)

// CartPurger is the slice of the cart store the sweep needs.
type CartPurger interface {
	RemoveFromAllCarts(ctx context.Context, sweetID string) error
}

// Dedup skips events that have already been fully processed. Nil disables
// deduplication.
type Dedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string)
}

// Service removes deleted sweets from every cart. It runs outside the
// deletion's atomicity boundary: the catalog row is already gone when the
// event arrives, and a failed sweep only leaves cosmetic dangling entries.
type Service struct {
	Carts       CartPurger
	Dedup       Dedup
	ServiceName string
}

// HandleSweetDeleted is mounted as the consumer handler for
// catalog.sweet.deleted. An event is marked processed only after the sweep
// succeeds, so a failed sweep is retried on redelivery.
func (s *Service) HandleSweetDeleted(ctx context.Context, m kafkago.Message) error {
	var env sweets.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != sweets.EventSweetDeleted {
		return nil
	}

	if s.Dedup != nil {
		seen, _ := s.Dedup.Seen(ctx, env.EventID)
		if seen {
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[sweets.SweetDeletedPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.SweetID == "" {
		return nil
	}

	if err := s.Carts.RemoveFromAllCarts(ctx, p.SweetID); err != nil {
		return err
	}
	if s.Dedup != nil {
		s.Dedup.Mark(ctx, env.EventID)
	}
	log.Printf("reconciled carts after delete of sweet %s (%s)", p.SweetID, p.Name)
	return nil
}
