package handlers

import (
	"net/http"
	"route-sequencer-service/internal/api/dto"
	"route-sequencer-service/internal/services"
)

// SequenceHandler sequences caller-supplied stops without touching storage.
type SequenceHandler struct {
	Sequencer *services.RouteSequencer
}

func (h *SequenceHandler) Sequence(w http.ResponseWriter, r *http.Request) {
	var req dto.SequenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	plan, err := h.Sequencer.Plan(r.Context(), req.Stops, req.Constraints)
	if err != nil {
		writeServiceError(w, r, "sequence", err)
		return
	}

	writeJSON(w, r, http.StatusOK, plan)
}
