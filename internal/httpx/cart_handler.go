package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/candylabs/sweetshop/internal/cart"
)

// Carts is the cart service surface, always scoped to the caller's own cart.
type Carts interface {
	Add(ctx context.Context, userID, sweetID string, qty int) (cart.Cart, error)
	Remove(ctx context.Context, userID, sweetID string) (cart.Cart, error)
	Get(ctx context.Context, userID string) (cart.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type CartHandler struct {
	Carts Carts
}

type CartAddReq struct {
	SweetID  string `json:"sweetId"`
	Quantity *int   `json:"quantity"`
}

type CartRemoveReq struct {
	SweetID string `json:"sweetId"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(Authenticated)
		r.Get("/", h.get)
		r.Post("/add", h.add)
		r.Post("/remove", h.remove)
		r.Post("/clear", h.clear)
	})
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req CartAddReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if req.SweetID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sweetId is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Carts.Add(ctx, id.UserID, req.SweetID, qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req CartRemoveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.SweetID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sweetId is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Carts.Remove(ctx, id.UserID, req.SweetID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Carts.Get(ctx, id.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Carts.Clear(ctx, id.UserID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
