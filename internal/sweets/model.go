package sweets

import "time"

type Sweet struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	PriceCents int       `json:"price_cents"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SearchFilter narrows a catalog listing. Zero values mean "no constraint".
type SearchFilter struct {
	Name          string
	Category      string
	MinPriceCents *int
	MaxPriceCents *int
}

// UpdateInput carries the admin edit of a sweet. Nil fields are left as-is.
// Quantity set through here is the admin correction path; concurrent-safe
// stock mutation goes through the Ledger only.
type UpdateInput struct {
	Name       *string
	Category   *string
	PriceCents *int
	Quantity   *int
}
