package api

import (
	"errors"
	"log/slog"
	"net/http"

	"tg_journal/internal/middleware"
	"tg_journal/internal/sector"
)

// HandleSector принимает сигнал сектора. Ошибки рассылки только логируются,
// отправитель всегда получает {"ok": true}.
func (h *Handler) HandleSector(w http.ResponseWriter, r *http.Request) {
	var sig sector.Signal
	if err := decode(w, r, &sig); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.logger.Info("📨 Sector signal received",
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.String("symbol", sig.Symbol),
		slog.String("message", sig.Message))

	if err := h.relay.HandleSignal(r.Context(), sig); err != nil {
		h.logger.Error("❌ Failed to relay sector signal",
			slog.String("symbol", sig.Symbol),
			slog.Any("error", err))
	}

	h.respondOK(w)
}

// HandleSectorCandle принимает свечу секторного индекса
func (h *Handler) HandleSectorCandle(w http.ResponseWriter, r *http.Request) {
	var c sector.Candle
	if err := decode(w, r, &c); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.relay.HandleCandle(r.Context(), c); err != nil {
		if errors.Is(err, sector.ErrInvalidCandle) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("❌ Failed to handle sector candle",
			slog.String("symbol", c.Symbol),
			slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal error")

		return
	}

	h.respondOK(w)
}
