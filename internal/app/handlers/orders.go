package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/airbatu-shop/internal/service"
)

// ReceiptHandler обрабатывает запрос GET /api/orders/{id}
func ReceiptHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ReceiptHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "order id is required", http.StatusBadRequest)
			return
		}

		receipt, err := orders.Receipt(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, receipt)
	}
}

// FindOrdersHandler обрабатывает запрос GET /api/orders?phone=
func FindOrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.FindOrdersHandler"
		logger := log.With(slog.String("op", op))

		phone := r.URL.Query().Get("phone")
		if phone == "" {
			http.Error(w, "phone parameter is required", http.StatusBadRequest)
			return
		}

		receipts, err := orders.FindByPhone(r.Context(), phone)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, receipts)
	}
}

// LiveBoardHandler обрабатывает запрос GET /api/orders/live
func LiveBoardHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LiveBoardHandler"
		logger := log.With(slog.String("op", op))

		board, err := orders.LiveBoard(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, board)
	}
}
