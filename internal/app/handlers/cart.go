package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/airbatu-shop/internal/service"
)

type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required,max=64"`
}

type UpdateQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type SelectSlotRequest struct {
	Slot string `json:"slot" validate:"required"`
}

type CustomerRequest struct {
	Name  string `json:"name" validate:"max=80"`
	Phone string `json:"phone" validate:"omitempty,min=6,max=20"`
}

// CreateCartHandler обрабатывает запрос POST /api/carts
func CreateCartHandler(log *slog.Logger, carts service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateCartHandler"
		logger := log.With(slog.String("op", op))

		cart, err := carts.Create(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, cart)
	}
}

// GetCartHandler обрабатывает запрос GET /api/carts/{id}.
// Слоты пересчитываются на каждый запрос.
func GetCartHandler(log *slog.Logger, carts service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		cart, err := carts.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, cart)
	}
}

// AddItemHandler обрабатывает запрос POST /api/carts/{id}/items
func AddItemHandler(log *slog.Logger, carts service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddItemHandler"
		logger := log.With(slog.String("op", op))

		var req AddItemRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		cart, err := carts.AddItem(r.Context(), chi.URLParam(r, "id"), req.ProductID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, cart)
	}
}

// UpdateQuantityHandler обрабатывает запрос PATCH /api/carts/{id}/items/{productID}
func UpdateQuantityHandler(log *slog.Logger, carts service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateQuantityHandler"
		logger := log.With(slog.String("op", op))

		var req UpdateQuantityRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		cart, err := carts.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productID"), req.Delta)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, cart)
	}
}

// SelectSlotHandler обрабатывает запрос PUT /api/carts/{id}/slot
func SelectSlotHandler(log *slog.Logger, carts service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SelectSlotHandler"
		logger := log.With(slog.String("op", op))

		var req SelectSlotRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		cart, err := carts.SelectSlot(r.Context(), chi.URLParam(r, "id"), req.Slot)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, cart)
	}
}

// CustomerHandler обрабатывает запрос PUT /api/carts/{id}/customer
func CustomerHandler(log *slog.Logger, carts service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CustomerHandler"
		logger := log.With(slog.String("op", op))

		var req CustomerRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		cart, err := carts.SetCustomer(r.Context(), chi.URLParam(r, "id"), req.Name, req.Phone)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, cart)
	}
}

// CheckoutHandler обрабатывает запрос POST /api/carts/{id}/checkout.
// Пока корзина не готова, ответ 409, а не 500: кнопка на витрине просто неактивна.
func CheckoutHandler(log *slog.Logger, checkout service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		res, err := checkout.Checkout(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, res)
	}
}
