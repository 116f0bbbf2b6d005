package services

import (
	"context"
	"errors"
	"fmt"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/ports"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type BuildRouteRequest struct {
	DeliveryIDs []string
	VehicleID   string
	DriverID    string
	RouteDate   time.Time
	Constraints domain.RouteConstraints
	// Depot is prepended as the first stop of the route.
	Depot domain.Stop
	// MatrixConcurrency > 0 precomputes pairwise distances with that many workers.
	MatrixConcurrency int
}

func (r BuildRouteRequest) validate() error {
	if len(r.DeliveryIDs) == 0 {
		return &domain.ValidationError{Field: "entregas_ids", Reason: "at least one delivery is required"}
	}
	if strings.TrimSpace(r.VehicleID) == "" {
		return &domain.ValidationError{Field: "veiculo_id", Reason: "must be non-empty"}
	}
	if strings.TrimSpace(r.DriverID) == "" {
		return &domain.ValidationError{Field: "motorista_id", Reason: "must be non-empty"}
	}

	seen := make(map[string]struct{}, len(r.DeliveryIDs))
	for _, id := range r.DeliveryIDs {
		if strings.TrimSpace(id) == "" {
			return &domain.ValidationError{Field: "entregas_ids", Reason: "ids must be non-empty"}
		}
		if _, ok := seen[id]; ok {
			return &domain.ValidationError{Field: "entregas_ids", Reason: fmt.Sprintf("duplicate delivery id %q", id)}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// BuildRoute resolves deliveries, sequences them from the depot, computes
// metrics and persists the resulting route.
//
// Collaborators are passed per call; vehicles may be nil, in which case only
// the request constraints apply. A route that cannot carry a single delivery is
// rejected with *domain.CapacityExceededError; a partial route is saved with its
// exclusions recorded.
func BuildRoute(
	ctx context.Context,
	req BuildRouteRequest,
	deliveries ports.DeliveryRepository,
	vehicles ports.VehicleRepository,
	routes ports.RouteRepository,
	sequencer *RouteSequencer,
) (*domain.Route, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("build route: %w", err)
	}
	if sequencer == nil {
		return nil, errors.New("build route: sequencer must be non-nil")
	}

	found, err := deliveries.GetDeliveries(ctx, req.DeliveryIDs)
	if err != nil {
		return nil, fmt.Errorf("build route: get deliveries: %w", err)
	}

	byID := make(map[string]*domain.Delivery, len(found))
	for _, d := range found {
		byID[d.ID] = d
	}

	// Keep request order so the greedy tie-break is predictable for callers.
	stops := make([]domain.Stop, 0, 1+len(req.DeliveryIDs))
	stops = append(stops, req.Depot)
	for _, id := range req.DeliveryIDs {
		d, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("build route: delivery %q: %w", id, domain.ErrNotFound)
		}
		if d.Status != "" && d.Status != domain.DeliveryPending {
			return nil, fmt.Errorf("build route: %w", &domain.ValidationError{
				Field:  "entregas_ids",
				Reason: fmt.Sprintf("delivery %q is %s, not pending", id, d.Status),
			})
		}
		stops = append(stops, d.ToStop())
	}

	constraints := req.Constraints
	if vehicles != nil {
		vehicle, err := vehicles.GetVehicle(ctx, req.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("build route: vehicle %q: %w", req.VehicleID, err)
		}
		constraints = vehicle.Merge(req.Constraints)
	}

	seq := sequencer
	if req.MatrixConcurrency > 0 && len(stops) > 2 {
		matrix, err := PrecomputeDistances(ctx, sequencer.Resolver, stops, req.MatrixConcurrency)
		if err != nil {
			return nil, fmt.Errorf("build route: %w", err)
		}
		withMatrix := *sequencer
		withMatrix.Resolver = matrix
		seq = &withMatrix
	}

	plan, err := seq.Plan(ctx, stops, constraints)
	if err != nil {
		return nil, fmt.Errorf("build route: %w", err)
	}

	status := domain.RoutePlanned
	switch plan.Sequence.Status {
	case domain.SequenceInfeasible:
		return nil, fmt.Errorf("build route: %w", plan.Sequence.Err())
	case domain.SequencePartial:
		// Only the depot was placed: there is nothing to deliver.
		if len(plan.Sequence.Stops) <= 1 {
			return nil, fmt.Errorf("build route: %w", plan.Sequence.Err())
		}
		status = domain.RoutePartial
	}

	routeDate := req.RouteDate
	if routeDate.IsZero() {
		routeDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	route := &domain.Route{
		ID:        uuid.New(),
		VehicleID: req.VehicleID,
		DriverID:  req.DriverID,
		RouteDate: routeDate,
		Status:    status,
		Stops:     plan.Sequence.Stops,
		Excluded:  plan.Sequence.Excluded,
		Metrics:   plan.Metrics,
		CreatedAt: time.Now().UTC(),
	}

	if err := routes.SaveRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("build route: save route: %w", err)
	}

	log.WithFields(log.Fields{
		"route_id":    route.ID.String(),
		"vehicle_id":  route.VehicleID,
		"status":      route.Status,
		"stops":       len(route.Stops),
		"excluded":    len(route.Excluded),
		"distance_km": route.Metrics.TotalDistanceKm,
		"total_cost":  route.Metrics.TotalCost,
	}).Info("route built")

	return route, nil
}
