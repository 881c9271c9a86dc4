package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candylabs/sweetshop/internal/sweets"
)

// memStore is a map-backed Store with the same idempotency contract as the
// redis implementation.
type memStore struct {
	mu    sync.Mutex
	carts map[string]map[string]int
}

func newMemStore() *memStore { return &memStore{carts: map[string]map[string]int{}} }

func (s *memStore) Entries(_ context.Context, userID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	for k, v := range s.carts[userID] {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) SetQuantity(_ context.Context, userID, sweetID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.carts[userID] == nil {
		s.carts[userID] = map[string]int{}
	}
	s.carts[userID][sweetID] = qty
	return nil
}

func (s *memStore) Remove(_ context.Context, userID, sweetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts[userID], sweetID)
	return nil
}

func (s *memStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func (s *memStore) RemoveFromAllCarts(_ context.Context, sweetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entries := range s.carts {
		delete(entries, sweetID)
	}
	return nil
}

type fakeCatalog struct {
	mu    sync.Mutex
	items map[string]sweets.Sweet
}

func newFakeCatalog(items ...sweets.Sweet) *fakeCatalog {
	f := &fakeCatalog{items: map[string]sweets.Sweet{}}
	for _, s := range items {
		f.items[s.ID] = s
	}
	return f
}

func (f *fakeCatalog) Get(_ context.Context, id string) (sweets.Sweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return sweets.Sweet{}, sweets.ErrNotFound
	}
	return s, nil
}

func (f *fakeCatalog) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
}

func newService(items ...sweets.Sweet) (*Service, *memStore, *fakeCatalog) {
	store := newMemStore()
	catalog := newFakeCatalog(items...)
	return &Service{Store: store, Sweets: catalog}, store, catalog
}

func TestAddMergesQuantities(t *testing.T) {
	svc, _, _ := newService(sweets.Sweet{ID: "s1", Name: "Ladoo", Quantity: 10})
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", "s1", 2)
	require.NoError(t, err)
	c, err := svc.Add(ctx, "alice", "s1", 3)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAddMergeFailsOverStock(t *testing.T) {
	svc, _, _ := newService(sweets.Sweet{ID: "s1", Name: "Ladoo", Quantity: 4})
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", "s1", 2)
	require.NoError(t, err)

	_, err = svc.Add(ctx, "alice", "s1", 3)
	assert.ErrorIs(t, err, sweets.ErrInsufficientStock)

	c, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity, "failed add must leave the entry untouched")
}

func TestAddValidation(t *testing.T) {
	svc, _, _ := newService(sweets.Sweet{ID: "s1", Quantity: 5})
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", "s1", 0)
	assert.ErrorIs(t, err, sweets.ErrInvalidQuantity)
	_, err = svc.Add(ctx, "alice", "s1", -2)
	assert.ErrorIs(t, err, sweets.ErrInvalidQuantity)
	_, err = svc.Add(ctx, "alice", "", 1)
	assert.ErrorIs(t, err, sweets.ErrInvalidQuantity)
	_, err = svc.Add(ctx, "alice", "ghost", 1)
	assert.ErrorIs(t, err, sweets.ErrNotFound)

	c, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, c.Items, "rejected adds must not create entries")
}

func TestRemoveAbsentEntryIsNoop(t *testing.T) {
	svc, _, _ := newService(sweets.Sweet{ID: "s1", Quantity: 5})

	c, err := svc.Remove(context.Background(), "alice", "never-added")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestClearIsIdempotent(t *testing.T) {
	svc, _, _ := newService(sweets.Sweet{ID: "s1", Quantity: 5})
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", "s1", 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "alice"))
	require.NoError(t, svc.Clear(ctx, "alice"))

	c, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestGetForFreshUserIsEmpty(t *testing.T) {
	svc, _, _ := newService()

	c, err := svc.Get(context.Background(), "newcomer")
	require.NoError(t, err)
	assert.Equal(t, "newcomer", c.UserID)
	assert.NotNil(t, c.Items)
	assert.Empty(t, c.Items)
}

func TestGetSkipsVanishedSweets(t *testing.T) {
	svc, _, catalog := newService(
		sweets.Sweet{ID: "s1", Name: "Ladoo", Quantity: 5},
		sweets.Sweet{ID: "s2", Name: "Barfi", Quantity: 5},
	)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", "s1", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "alice", "s2", 1)
	require.NoError(t, err)

	// deleted from the catalog but not yet swept from carts
	catalog.remove("s1")

	c, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "s2", c.Items[0].Sweet.ID)
}

func TestRemoveFromAllCartsIsComplete(t *testing.T) {
	svc, store, catalog := newService(
		sweets.Sweet{ID: "s1", Name: "Ladoo", Quantity: 10},
		sweets.Sweet{ID: "s2", Name: "Barfi", Quantity: 10},
	)
	ctx := context.Background()

	for _, user := range []string{"alice", "bob"} {
		_, err := svc.Add(ctx, user, "s1", 1)
		require.NoError(t, err)
		_, err = svc.Add(ctx, user, "s2", 2)
		require.NoError(t, err)
	}

	catalog.remove("s1")
	require.NoError(t, store.RemoveFromAllCarts(ctx, "s1"))

	for _, user := range []string{"alice", "bob"} {
		c, err := svc.Get(ctx, user)
		require.NoError(t, err)
		require.Len(t, c.Items, 1, "user %s", user)
		assert.Equal(t, "s2", c.Items[0].Sweet.ID)
	}
}
