package sweets

import "errors"

var (
	// ErrNotFound is returned when a sweet id does not exist, so HTTP
	// handlers can respond with 404.
	ErrNotFound = errors.New("sweet not found")

	// ErrNameTaken signals a create or rename colliding with an existing
	// sweet name. Names are unique, case-sensitive.
	ErrNameTaken = errors.New("sweet name already exists")

	// ErrInsufficientStock is a business outcome, not a fault: the item
	// exists but cannot cover the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity rejects zero or negative quantities before any
	// store access.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrConditionNotMet is the raw outcome of a failed conditional
	// decrement. It cannot tell a missing sweet from an empty shelf; callers
	// classify it with a secondary existence probe.
	ErrConditionNotMet = errors.New("conditional update not satisfied")
)
