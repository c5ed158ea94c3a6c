package api

import (
	"log/slog"
	"net/http"

	"tg_journal/internal/middleware"

	"github.com/gorilla/mux"
)

// SetupRouter настраивает роутинг. webhook может быть nil (режим polling).
func (h *Handler) SetupRouter(webhookPath string, webhook http.Handler) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Recover(h.logger))
	r.Use(middleware.RequestLogger(h.logger))

	r.HandleFunc("/", h.HandleRoot).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)

	if webhook != nil && webhookPath != "" {
		r.Handle(webhookPath, webhook).Methods(http.MethodPost)
	}

	// Сигналы TradingView
	r.HandleFunc("/sector", h.HandleSector).Methods(http.MethodPost)
	r.HandleFunc("/sector_candle", h.HandleSectorCandle).Methods(http.MethodPost)

	return r
}

// HandleRoot отвечает на проверки доступности хостинга
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleHealth возвращает статус здоровья сервиса
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("⚠️ Health check failed", slog.Any("error", err))
		h.respondJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})

		return
	}

	h.respondJSON(w, http.StatusOK, StatusResponse{Status: "healthy"})
}
