package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candylabs/sweetshop/internal/sweets"
)

// fakeLedger serializes the conditional decrement with a mutex, matching the
// atomicity the SQL ledger gets from a single conditional UPDATE.
type fakeLedger struct {
	mu    sync.Mutex
	items map[string]*sweets.Sweet
}

func newFakeLedger(items ...sweets.Sweet) *fakeLedger {
	f := &fakeLedger{items: map[string]*sweets.Sweet{}}
	for i := range items {
		s := items[i]
		f.items[s.ID] = &s
	}
	return f
}

func (f *fakeLedger) DecrementIfAvailable(_ context.Context, id string, qty int) (sweets.Sweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok || s.Quantity < qty {
		return sweets.Sweet{}, sweets.ErrConditionNotMet
	}
	s.Quantity -= qty
	return *s, nil
}

func (f *fakeLedger) Increment(_ context.Context, id string, qty int) (sweets.Sweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return sweets.Sweet{}, sweets.ErrNotFound
	}
	s.Quantity += qty
	return *s, nil
}

func (f *fakeLedger) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[id]
	return ok, nil
}

func (f *fakeLedger) quantity(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].Quantity
}

type capturedEvent struct {
	key   []byte
	value []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *fakePublisher) Publish(key, value []byte, _ ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{key: key, value: value})
}

func TestPurchaseConcurrentNoOversell(t *testing.T) {
	const (
		initial = 30
		buyers  = 50
	)
	ledger := newFakeLedger(sweets.Sweet{ID: "s1", Name: "Barfi", Quantity: initial})
	svc := &Service{Ledger: ledger}

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		succeeded    int
		insufficient int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(context.Background(), "s1", 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, sweets.ErrInsufficientStock):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, initial, succeeded)
	assert.Equal(t, buyers-initial, insufficient)
	assert.Equal(t, 0, ledger.quantity("s1"))
}

func TestPurchaseConcurrentMultiUnit(t *testing.T) {
	// 5 in stock, 10 buyers of 2 each: exactly 2 can win, 1 remains.
	ledger := newFakeLedger(sweets.Sweet{ID: "s1", Name: "Jalebi", Quantity: 5})
	svc := &Service{Ledger: ledger}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Purchase(context.Background(), "s1", 2); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, ledger.quantity("s1"))
}

func TestPurchaseThenRestockScenario(t *testing.T) {
	ledger := newFakeLedger(sweets.Sweet{ID: "s1", Name: "Ladoo", Quantity: 5})
	svc := &Service{Ledger: ledger}
	ctx := context.Background()

	s, err := svc.Purchase(ctx, "s1", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Quantity)

	_, err = svc.Purchase(ctx, "s1", 3)
	assert.ErrorIs(t, err, sweets.ErrInsufficientStock)
	assert.Equal(t, 2, ledger.quantity("s1"))

	s, err = svc.Restock(ctx, "s1", 10)
	require.NoError(t, err)
	assert.Equal(t, 12, s.Quantity)
}

func TestPurchaseUnknownSweetIsNotFound(t *testing.T) {
	svc := &Service{Ledger: newFakeLedger()}

	_, err := svc.Purchase(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, sweets.ErrNotFound)
	assert.NotErrorIs(t, err, sweets.ErrInsufficientStock)
}

func TestPurchaseInvalidQuantity(t *testing.T) {
	ledger := newFakeLedger(sweets.Sweet{ID: "s1", Quantity: 5})
	svc := &Service{Ledger: ledger}

	for _, qty := range []int{0, -1, -100} {
		_, err := svc.Purchase(context.Background(), "s1", qty)
		assert.ErrorIs(t, err, sweets.ErrInvalidQuantity, "qty=%d", qty)
	}
	assert.Equal(t, 5, ledger.quantity("s1"))
}

func TestRestockMonotonic(t *testing.T) {
	ledger := newFakeLedger(sweets.Sweet{ID: "s1", Quantity: 7})
	svc := &Service{Ledger: ledger}

	s, err := svc.Restock(context.Background(), "s1", 4)
	require.NoError(t, err)
	assert.Equal(t, 11, s.Quantity)

	_, err = svc.Restock(context.Background(), "s1", 0)
	assert.ErrorIs(t, err, sweets.ErrInvalidQuantity)

	_, err = svc.Restock(context.Background(), "ghost", 4)
	assert.ErrorIs(t, err, sweets.ErrNotFound)
}

func TestPurchasePublishesAuditEvent(t *testing.T) {
	ledger := newFakeLedger(sweets.Sweet{ID: "s1", Name: "Halwa", Quantity: 5})
	pub := &fakePublisher{}
	svc := &Service{Ledger: ledger, ProducerPurchased: pub, ServiceName: "test-api"}

	_, err := svc.Purchase(context.Background(), "s1", 2)
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, []byte("s1"), pub.events[0].key)

	var env sweets.Envelope
	require.NoError(t, json.Unmarshal(pub.events[0].value, &env))
	assert.Equal(t, sweets.EventStockPurchased, env.EventType)
	assert.Equal(t, "test-api", env.Producer)

	var p sweets.StockPurchasedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, 2, p.Quantity)
	assert.Equal(t, 3, p.Remaining)
}
