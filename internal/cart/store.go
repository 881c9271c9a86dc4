package cart

import "context"

// Store holds per-user carts as sweet_id -> quantity maps. It is advisory
// state only and never touches the stock ledger.
type Store interface {
	// Entries returns the cart map for a user; an absent cart reads as empty.
	Entries(ctx context.Context, userID string) (map[string]int, error)
	// SetQuantity writes the merged quantity for one sweet.
	SetQuantity(ctx context.Context, userID, sweetID string, qty int) error
	// Remove drops one entry; removing an absent entry is not an error.
	Remove(ctx context.Context, userID, sweetID string) error
	// Clear empties the cart; clearing an absent cart is not an error.
	Clear(ctx context.Context, userID string) error
	// RemoveFromAllCarts purges one sweet from every cart in the system.
	RemoveFromAllCarts(ctx context.Context, sweetID string) error
}
