package api

import (
	"net/http"
	"route-sequencer-service/internal/api/handlers"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/ports"
	"route-sequencer-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators the HTTP layer needs. Vehicles and Storage may be nil.
type Deps struct {
	Storage           handlers.Pinger
	Deliveries        ports.DeliveryRepository
	Vehicles          ports.VehicleRepository
	Routes            ports.RouteRepository
	Sequencer         *services.RouteSequencer
	Depot             domain.Stop
	MatrixConcurrency int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	deliveryHandler := &handlers.DeliveryHandler{Repo: deps.Deliveries}
	routeHandler := &handlers.RouteHandler{
		Deliveries:        deps.Deliveries,
		Vehicles:          deps.Vehicles,
		Routes:            deps.Routes,
		Sequencer:         deps.Sequencer,
		Depot:             deps.Depot,
		MatrixConcurrency: deps.MatrixConcurrency,
	}
	sequenceHandler := &handlers.SequenceHandler{Sequencer: deps.Sequencer}

	r.Get("/health", (&handlers.HealthHandler{Storage: deps.Storage}).Check)
	r.Get("/deliveries", deliveryHandler.List)
	r.Route("/routes", func(r chi.Router) {
		r.Post("/", routeHandler.Create)
		r.Get("/{id}", routeHandler.Get)
	})
	r.Post("/sequence", sequenceHandler.Sequence)

	return r
}
