package dto

import "route-sequencer-service/internal/domain"

// CreateRouteRequest is the body of POST /routes.
type CreateRouteRequest struct {
	EntregasIDs []string           `json:"entregas_ids"`
	VeiculoID   string             `json:"veiculo_id"`
	MotoristaID string             `json:"motorista_id"`
	DataRota    string             `json:"data_rota"`
	Restricoes  *RestricoesRequest `json:"restricoes"`
}

type RestricoesRequest struct {
	PesoMaximo   *float64 `json:"peso_maximo"`
	VolumeMaximo *float64 `json:"volume_maximo"`
}

func (r *RestricoesRequest) Constraints() domain.RouteConstraints {
	if r == nil {
		return domain.RouteConstraints{}
	}
	return domain.RouteConstraints{MaxWeight: r.PesoMaximo, MaxVolume: r.VolumeMaximo}
}

// SequenceRequest is the body of POST /sequence. Stops[0] is the start.
type SequenceRequest struct {
	Stops       []domain.Stop           `json:"stops"`
	Constraints domain.RouteConstraints `json:"constraints"`
}
