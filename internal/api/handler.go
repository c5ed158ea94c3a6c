package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"tg_journal/internal/sector"
)

// maxBodyBytes ограничивает размер тела входящих webhook запросов
const maxBodyBytes = 1 << 20

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// Relay обрабатывает сигналы секторов
type Relay interface {
	HandleSignal(ctx context.Context, sig sector.Signal) error
	HandleCandle(ctx context.Context, c sector.Candle) error
}

// Handler обрабатывает HTTP запросы
type Handler struct {
	store  Pinger
	relay  Relay
	logger *slog.Logger
}

// New создает новый обработчик
func New(store Pinger, relay Relay, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		relay:  relay,
		logger: logger,
	}
}

// Helper функции для JSON ответов

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Debug("Failed to write response", slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func (h *Handler) respondOK(w http.ResponseWriter) {
	h.respondJSON(w, http.StatusOK, OKResponse{OK: true})
}

// decode читает JSON тело запроса
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
