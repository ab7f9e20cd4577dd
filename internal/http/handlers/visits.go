package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/pkg/logging"
)

const maxBookingBody = 1 << 20

// VisitBooker delegates booking lifecycle calls to the visit scheduler.
type VisitBooker interface {
	ReserveVisit(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
	BookVisit(ctx context.Context, applicationRef string, body json.RawMessage) (json.RawMessage, error)
	CancelVisit(ctx context.Context, reference string, body json.RawMessage) (json.RawMessage, error)
}

// VisitsHandler passes booking lifecycle requests through to the visit
// scheduler. The orchestration layer adds no semantics here; payloads are
// forwarded verbatim.
type VisitsHandler struct {
	booker VisitBooker
	logger *logging.Logger
}

// NewVisitsHandler creates the booking delegation handler.
func NewVisitsHandler(booker VisitBooker, logger *logging.Logger) *VisitsHandler {
	if booker == nil {
		panic("handlers: visit booker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &VisitsHandler{booker: booker, logger: logger}
}

// Reserve creates a visit application reservation.
// POST /visits/reserve
func (h *VisitsHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	resp, err := h.booker.ReserveVisit(r.Context(), body)
	if err != nil {
		h.logger.Error("visit reserve failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream service unavailable")
		return
	}
	writeRaw(w, http.StatusCreated, resp)
}

// Book confirms a reserved visit application.
// PUT /visits/{reference}/book
func (h *VisitsHandler) Book(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")
	if ref == "" {
		writeError(w, http.StatusBadRequest, "visit reference required")
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	resp, err := h.booker.BookVisit(r.Context(), ref, body)
	if err != nil {
		h.logger.Error("visit book failed", "reference", ref, "error", err)
		writeError(w, http.StatusBadGateway, "upstream service unavailable")
		return
	}
	writeRaw(w, http.StatusOK, resp)
}

// Cancel cancels a booked visit.
// PUT /visits/{reference}/cancel
func (h *VisitsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")
	if ref == "" {
		writeError(w, http.StatusBadRequest, "visit reference required")
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	resp, err := h.booker.CancelVisit(r.Context(), ref, body)
	if err != nil {
		h.logger.Error("visit cancel failed", "reference", ref, "error", err)
		writeError(w, http.StatusBadGateway, "upstream service unavailable")
		return
	}
	writeRaw(w, http.StatusOK, resp)
}

func (h *VisitsHandler) readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBookingBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return nil, false
	}
	if len(body) > 0 && !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return body, true
}

func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}
