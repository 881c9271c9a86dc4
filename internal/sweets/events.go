package sweets

import (
	"encoding/json"
	"time"
)

const (
	EventSweetDeleted   = "SweetDeleted"
	EventStockPurchased = "StockPurchased"
	EventStockRestocked = "StockRestocked"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // sweet_id
	Payload       json.RawMessage `json:"payload"`
}

type SweetDeletedPayload struct {
	SweetID string `json:"sweet_id"`
	Name    string `json:"name"`
}

type StockPurchasedPayload struct {
	SweetID   string `json:"sweet_id"`
	Quantity  int    `json:"quantity"`
	Remaining int    `json:"remaining"`
}

type StockRestockedPayload struct {
	SweetID     string `json:"sweet_id"`
	Quantity    int    `json:"quantity"`
	NewQuantity int    `json:"new_quantity"`
}
