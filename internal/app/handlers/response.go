package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/airbatu-shop/internal/domain/models"
	"github.com/linemk/airbatu-shop/internal/pickup"
	"github.com/linemk/airbatu-shop/internal/service"
	"github.com/linemk/airbatu-shop/internal/storage"
)

var validate = validator.New()

// ErrorResponse - тело ответа с ошибкой. Slots заполняется, когда выбранный слот больше не предлагается.
type ErrorResponse struct {
	Error string        `json:"error"`
	Slots []pickup.Slot `json:"slots,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// decodeAndValidate читает JSON-тело и проверяет теги validate
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Error("invalid request: decoding error", slog.Any("error", err))
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		logger.Error("invalid request: validation error", slog.Any("error", err))
		http.Error(w, "validation error", http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor сопоставляет доменные ошибки с HTTP-кодами
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrCartNotFound),
		errors.Is(err, storage.ErrProductNotFound),
		errors.Is(err, storage.ErrOrderNotFound),
		errors.Is(err, models.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrShopClosed),
		errors.Is(err, service.ErrSoldOut),
		errors.Is(err, service.ErrProductComingSoon),
		errors.Is(err, service.ErrSlotNotOffered),
		errors.Is(err, service.ErrNotSubmittable),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidPasscode):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError отдаёт клиенту только текст доменной ошибки; внутренние ошибки скрываются
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("error", err))
		http.Error(w, "internal server error", status)
		return
	}
	logger.Warn("request rejected", slog.Any("error", err), slog.Int("status", status))

	resp := ErrorResponse{Error: publicMessage(err)}
	var slotErr *service.SlotUnavailableError
	if errors.As(err, &slotErr) {
		resp.Slots = slotErr.Slots
	}
	writeJSON(w, logger, status, resp)
}

var publicErrors = []error{
	service.ErrCartNotFound,
	storage.ErrProductNotFound,
	storage.ErrOrderNotFound,
	models.ErrLineNotFound,
	service.ErrShopClosed,
	service.ErrSoldOut,
	service.ErrProductComingSoon,
	service.ErrSlotNotOffered,
	service.ErrNotSubmittable,
	service.ErrNameRequired,
	service.ErrEmptyCart,
	service.ErrInvalidTransition,
	service.ErrInvalidStatus,
	service.ErrInvalidPasscode,
}

func publicMessage(err error) string {
	for _, known := range publicErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return http.StatusText(statusFor(err))
}
