package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// Recommender - подсказка вкуса дня
type Recommender interface {
	Current() (string, bool)
	Recommend(ctx context.Context, mood, weather string) string
}

type RecommendationResponse struct {
	Text  string `json:"text"`
	Ready bool   `json:"ready"`
}

// RecommendationHandler обрабатывает запрос GET /api/recommendation.
// Без mood и weather отдаёт прогретую подсказку, иначе спрашивает модель с таймаутом.
func RecommendationHandler(log *slog.Logger, advisor Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RecommendationHandler"
		logger := log.With(slog.String("op", op))

		mood := r.URL.Query().Get("mood")
		weather := r.URL.Query().Get("weather")

		var resp RecommendationResponse
		if mood == "" && weather == "" {
			resp.Text, resp.Ready = advisor.Current()
		} else {
			resp.Text, resp.Ready = advisor.Recommend(r.Context(), mood, weather), true
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}
