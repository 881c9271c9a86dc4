package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/candylabs/sweetshop/internal/kafka"
	"github.com/candylabs/sweetshop/internal/sweets"
)

// Catalog is the sweets repo surface the handler consumes.
type Catalog interface {
	Create(ctx context.Context, name, category string, priceCents, quantity int) (sweets.Sweet, error)
	Get(ctx context.Context, id string) (sweets.Sweet, error)
	List(ctx context.Context) ([]sweets.Sweet, error)
	Search(ctx context.Context, f sweets.SearchFilter) ([]sweets.Sweet, error)
	Update(ctx context.Context, id string, in sweets.UpdateInput) (sweets.Sweet, error)
	Delete(ctx context.Context, id string) error
}

// Inventory is the purchase/restock surface.
type Inventory interface {
	Purchase(ctx context.Context, sweetID string, qty int) (sweets.Sweet, error)
	Restock(ctx context.Context, sweetID string, qty int) (sweets.Sweet, error)
}

// Publisher is satisfied by kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type SweetsHandler struct {
	Catalog   Catalog
	Inventory Inventory
	Producer  Publisher // catalog.sweet.deleted
	Service   string
}

type CreateSweetReq struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	PriceCents *int   `json:"price_cents"`
	Quantity   *int   `json:"quantity"`
}

type UpdateSweetReq struct {
	Name       *string `json:"name"`
	Category   *string `json:"category"`
	PriceCents *int    `json:"price_cents"`
	Quantity   *int    `json:"quantity"`
}

type QuantityReq struct {
	Quantity *int `json:"quantity"`
}

func (h *SweetsHandler) Register(r *chi.Mux) {
	r.Route("/sweets", func(r chi.Router) {
		r.Use(Authenticated)
		r.Get("/", h.list)
		r.Get("/search", h.search)
		r.Get("/{id}", h.get)
		r.Post("/{id}/purchase", h.purchase)

		r.Group(func(r chi.Router) {
			r.Use(AdminOnly)
			r.Post("/", h.create)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.deleteSweet)
			r.Post("/{id}/restock", h.restock)
		})
	})
}

func (h *SweetsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSweetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Name == "" || req.Category == "" || req.PriceCents == nil || req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, category, price_cents and quantity are required"})
		return
	}
	if *req.PriceCents < 0 || *req.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price_cents and quantity must be non-negative"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.Catalog.Create(ctx, req.Name, req.Category, *req.PriceCents, *req.Quantity)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *SweetsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Catalog.List(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	if out == nil {
		out = []sweets.Sweet{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SweetsHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := sweets.SearchFilter{Name: q.Get("name"), Category: q.Get("category")}
	if v := q.Get("minPrice"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid minPrice"})
			return
		}
		f.MinPriceCents = &n
	}
	if v := q.Get("maxPrice"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid maxPrice"})
			return
		}
		f.MaxPriceCents = &n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Catalog.Search(ctx, f)
	if err != nil {
		writeErr(w, err)
		return
	}
	if out == nil {
		out = []sweets.Sweet{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SweetsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.Catalog.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SweetsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSweetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if (req.PriceCents != nil && *req.PriceCents < 0) || (req.Quantity != nil && *req.Quantity < 0) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price_cents and quantity must be non-negative"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.Catalog.Update(ctx, chi.URLParam(r, "id"), sweets.UpdateInput{
		Name:       req.Name,
		Category:   req.Category,
		PriceCents: req.PriceCents,
		Quantity:   req.Quantity,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// deleteSweet removes the catalog row, then publishes catalog.sweet.deleted
// so the reconciler can purge cart references. The publish is outside the
// delete's atomicity boundary; a lost event only leaves dangling cart
// entries that fail NotFound at purchase time.
func (h *SweetsHandler) deleteSweet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.Catalog.Get(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Catalog.Delete(ctx, id); err != nil {
		writeErr(w, err)
		return
	}

	if h.Producer != nil {
		ev := sweets.Envelope{
			EventID:       uuid.NewString(),
			EventType:     sweets.EventSweetDeleted,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      h.Service,
			TraceID:       r.Header.Get("X-Request-Id"),
			CorrelationID: id,
			Payload:       kafkax.MustMarshal(sweets.SweetDeletedPayload{SweetID: id, Name: s.Name}),
		}
		h.Producer.Publish(sweets.PartitionKey(id), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(sweets.EventSweetDeleted)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "sweet deleted"})
}

func (h *SweetsHandler) purchase(w http.ResponseWriter, r *http.Request) {
	qty, ok := decodeQuantity(w, r, 1)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.Inventory.Purchase(ctx, chi.URLParam(r, "id"), qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "purchase successful", "sweet": s})
}

func (h *SweetsHandler) restock(w http.ResponseWriter, r *http.Request) {
	qty, ok := decodeQuantity(w, r, 0)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s, err := h.Inventory.Restock(ctx, chi.URLParam(r, "id"), qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "restock successful", "sweet": s})
}

// decodeQuantity reads an optional {"quantity": n} body. An empty body
// yields def; the services reject def <= 0.
func decodeQuantity(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	var req QuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return 0, false
	}
	if req.Quantity == nil {
		return def, true
	}
	return *req.Quantity, true
}
