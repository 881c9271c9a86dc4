package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/candylabs/sweetshop/internal/kafka"
	"github.com/candylabs/sweetshop/internal/sweets"
)

// Ledger is the pair of atomic stock primitives plus the existence probe
// used to classify a failed decrement.
type Ledger interface {
	DecrementIfAvailable(ctx context.Context, id string, qty int) (sweets.Sweet, error)
	Increment(ctx context.Context, id string, qty int) (sweets.Sweet, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Publisher is satisfied by kafka.Producer; nil disables audit events.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Ledger            Ledger
	ProducerPurchased Publisher // stock.purchased
	ProducerRestocked Publisher // stock.restocked
	ServiceName       string
}

// Purchase is the only path that moves stock down. It never retries:
// insufficient stock is a terminal business outcome, and retry loops would
// reorder fairness between concurrent buyers.
func (s *Service) Purchase(ctx context.Context, sweetID string, qty int) (sweets.Sweet, error) {
	if qty <= 0 {
		return sweets.Sweet{}, sweets.ErrInvalidQuantity
	}
	sw, err := s.Ledger.DecrementIfAvailable(ctx, sweetID, qty)
	if errors.Is(err, sweets.ErrConditionNotMet) {
		// the conditional write cannot tell absent from short-stocked
		ok, perr := s.Ledger.Exists(ctx, sweetID)
		if perr != nil {
			return sweets.Sweet{}, perr
		}
		if !ok {
			return sweets.Sweet{}, sweets.ErrNotFound
		}
		return sweets.Sweet{}, sweets.ErrInsufficientStock
	}
	if err != nil {
		return sweets.Sweet{}, err
	}

	s.publish(s.ProducerPurchased, sweets.EventStockPurchased, sw.ID,
		sweets.StockPurchasedPayload{SweetID: sw.ID, Quantity: qty, Remaining: sw.Quantity})
	return sw, nil
}

// Restock moves stock up. Zero or negative amounts are rejected, not
// treated as no-ops.
func (s *Service) Restock(ctx context.Context, sweetID string, qty int) (sweets.Sweet, error) {
	if qty <= 0 {
		return sweets.Sweet{}, sweets.ErrInvalidQuantity
	}
	sw, err := s.Ledger.Increment(ctx, sweetID, qty)
	if err != nil {
		return sweets.Sweet{}, err
	}

	s.publish(s.ProducerRestocked, sweets.EventStockRestocked, sw.ID,
		sweets.StockRestockedPayload{SweetID: sw.ID, Quantity: qty, NewQuantity: sw.Quantity})
	return sw, nil
}

func (s *Service) publish(p Publisher, eventType, sweetID string, payload any) {
	if p == nil {
		return
	}
	ev := sweets.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: sweetID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(sweets.PartitionKey(sweetID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
