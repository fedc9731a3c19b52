package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/airbatu-shop/internal/domain/models"
	"github.com/linemk/airbatu-shop/internal/service"
)

type StaffLoginRequest struct {
	Passcode string `json:"passcode" validate:"required,max=32"`
}

type StaffLoginResponse struct {
	Token string `json:"token"`
}

type OrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending accepted ready completed cancelled"`
}

type StockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type StockResponse struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}

type ShopStatusRequest struct {
	Open *bool `json:"open" validate:"required"`
}

type ShopStatusResponse struct {
	Open bool `json:"open"`
}

type ClearOrdersResponse struct {
	Removed int64 `json:"removed"`
}

// StaffLoginHandler обрабатывает запрос POST /api/staff/login
func StaffLoginHandler(log *slog.Logger, staff service.StaffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.StaffLoginHandler"
		logger := log.With(slog.String("op", op))

		var req StaffLoginRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		token, err := staff.Login(r.Context(), req.Passcode)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, StaffLoginResponse{Token: token})
	}
}

// StaffOrdersHandler обрабатывает запрос GET /api/staff/orders
func StaffOrdersHandler(log *slog.Logger, staff service.StaffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.StaffOrdersHandler"
		logger := log.With(slog.String("op", op))

		orders, err := staff.ListOrders(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}
		writeJSON(w, logger, http.StatusOK, orders)
	}
}

// UpdateOrderStatusHandler обрабатывает запрос PATCH /api/staff/orders/{id}
func UpdateOrderStatusHandler(log *slog.Logger, staff service.StaffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		var req OrderStatusRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		order, err := staff.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}

// ClearOrdersHandler обрабатывает запрос DELETE /api/staff/orders/closed
func ClearOrdersHandler(log *slog.Logger, staff service.StaffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ClearOrdersHandler"
		logger := log.With(slog.String("op", op))

		n, err := staff.ClearClosedOrders(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, ClearOrdersResponse{Removed: n})
	}
}

// AdjustStockHandler обрабатывает запрос PATCH /api/staff/products/{id}/stock
func AdjustStockHandler(log *slog.Logger, staff service.StaffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdjustStockHandler"
		logger := log.With(slog.String("op", op))

		var req StockRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		productID := chi.URLParam(r, "id")
		stock, err := staff.AdjustStock(r.Context(), productID, req.Delta)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, StockResponse{ProductID: productID, Stock: stock})
	}
}

// RestockHandler обрабатывает запрос POST /api/staff/products/restock
func RestockHandler(log *slog.Logger, staff service.StaffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RestockHandler"
		logger := log.With(slog.String("op", op))

		if err := staff.RestockAll(r.Context()); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ShopStatusHandler обрабатывает запрос PUT /api/staff/shop
func ShopStatusHandler(log *slog.Logger, staff service.StaffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ShopStatusHandler"
		logger := log.With(slog.String("op", op))

		var req ShopStatusRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		open := staff.SetShopOpen(r.Context(), *req.Open)
		writeJSON(w, logger, http.StatusOK, ShopStatusResponse{Open: open})
	}
}
