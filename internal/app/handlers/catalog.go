package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/airbatu-shop/internal/service"
)

// ProductsHandler обрабатывает запрос GET /api/products
func ProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalog.ListProducts(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, products)
	}
}

// ShopHandler обрабатывает запрос GET /api/shop
func ShopHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ShopHandler"
		writeJSON(w, log.With(slog.String("op", op)), http.StatusOK, catalog.ShopInfo(r.Context()))
	}
}
