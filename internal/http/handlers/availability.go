// Package handlers exposes the orchestration service's HTTP endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/availability"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/pkg/logging"
)

// AvailabilityHandler serves the visit session availability endpoint.
type AvailabilityHandler struct {
	service *availability.Service
	logger  *logging.Logger
}

// NewAvailabilityHandler creates the availability HTTP handler.
func NewAvailabilityHandler(service *availability.Service, logger *logging.Logger) *AvailabilityHandler {
	if service == nil {
		panic("handlers: availability service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityHandler{service: service, logger: logger}
}

type availableSessionDTO struct {
	SessionTemplateReference string `json:"sessionTemplateReference"`
	VisitDate                string `json:"visitDate"`
	StartTime                string `json:"startTime"`
	EndTime                  string `json:"endTime"`
	SessionRestriction       string `json:"sessionRestriction"`
	SessionForReview         bool   `json:"sessionForReview"`
}

// GetAvailableSessions returns bookable visit sessions for a prisoner.
// GET /prisons/{prisonCode}/prisoners/{prisonerID}/visit-sessions/available
//
// Query parameters:
//
//	visitors          comma-separated visitor ids (optional)
//	restriction       OPEN or CLOSED (optional; server resolves when absent)
//	appointmentCheck  true/false, defaults to true
func (h *AvailabilityHandler) GetAvailableSessions(w http.ResponseWriter, r *http.Request) {
	req := availability.Request{
		PrisonCode:       chi.URLParam(r, "prisonCode"),
		PrisonerID:       chi.URLParam(r, "prisonerID"),
		AppointmentCheck: true,
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("visitors")); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.VisitorIDs = append(req.VisitorIDs, id)
			}
		}
	}

	if raw := r.URL.Query().Get("restriction"); raw != "" {
		restriction, ok := availability.ParseRestriction(strings.ToUpper(raw))
		if !ok {
			writeError(w, http.StatusBadRequest, "restriction must be OPEN or CLOSED")
			return
		}
		req.Requested = &restriction
	}

	if raw := r.URL.Query().Get("appointmentCheck"); raw != "" {
		check, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "appointmentCheck must be a boolean")
			return
		}
		req.AppointmentCheck = check
	}

	sessions, err := h.service.AvailableVisitSessions(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, availability.ErrCollaborator):
			h.logger.Error("availability lookup failed",
				"prison_code", req.PrisonCode,
				"prisoner_id", req.PrisonerID,
				"error", err,
			)
			writeError(w, http.StatusBadGateway, "upstream service unavailable")
		default:
			h.logger.Error("availability lookup failed",
				"prison_code", req.PrisonCode,
				"prisoner_id", req.PrisonerID,
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	out := make([]availableSessionDTO, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, availableSessionDTO{
			SessionTemplateReference: s.SessionTemplateRef,
			VisitDate:                s.Date.Format(time.DateOnly),
			StartTime:                s.Start.Format("15:04"),
			EndTime:                  s.End.Format("15:04"),
			SessionRestriction:       string(s.Restriction),
			SessionForReview:         s.SessionForReview,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
