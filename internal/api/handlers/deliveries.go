package handlers

import (
	"net/http"
	"route-sequencer-service/internal/api/dto"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/ports"
	"strings"
)

// DeliveryHandler exposes read-only delivery retrieval endpoints.
type DeliveryHandler struct {
	Repo ports.DeliveryRepository
}

func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	switch status {
	case "", domain.DeliveryPending, domain.DeliveryRouted:
	default:
		writeError(w, r, http.StatusBadRequest, "status must be pending or routed")
		return
	}

	deliveries, err := h.Repo.ListDeliveries(r.Context(), status)
	if err != nil {
		writeServiceError(w, r, "list deliveries", err)
		return
	}

	res := dto.ListDeliveriesResponse{
		Deliveries: make([]dto.DeliveryResponse, 0, len(deliveries)),
	}
	for _, d := range deliveries {
		res.Deliveries = append(res.Deliveries, dto.NewDeliveryResponse(d))
	}

	writeJSON(w, r, http.StatusOK, res)
}
