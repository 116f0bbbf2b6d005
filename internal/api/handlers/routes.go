package handlers

import (
	"net/http"
	"route-sequencer-service/internal/api/dto"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/ports"
	"route-sequencer-service/internal/services"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RouteHandler struct {
	Deliveries ports.DeliveryRepository
	// Vehicles is optional; without it only the request restrictions apply.
	Vehicles          ports.VehicleRepository
	Routes            ports.RouteRepository
	Sequencer         *services.RouteSequencer
	Depot             domain.Stop
	MatrixConcurrency int
}

// Create builds, sequences and persists a route for the requested deliveries.
func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var routeDate time.Time
	if s := strings.TrimSpace(req.DataRota); s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "data_rota must be formatted as YYYY-MM-DD")
			return
		}
		routeDate = d
	}

	svcReq := services.BuildRouteRequest{
		DeliveryIDs:       req.EntregasIDs,
		VehicleID:         req.VeiculoID,
		DriverID:          req.MotoristaID,
		RouteDate:         routeDate,
		Constraints:       req.Restricoes.Constraints(),
		Depot:             h.Depot,
		MatrixConcurrency: h.MatrixConcurrency,
	}

	route, err := services.BuildRoute(r.Context(), svcReq, h.Deliveries, h.Vehicles, h.Routes, h.Sequencer)
	if err != nil {
		writeServiceError(w, r, "build route", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, route)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "route id must be a UUID")
		return
	}

	route, err := h.Routes.GetRoute(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, route)
}
