package dto

import (
	"route-sequencer-service/internal/domain"
	"time"
)

type DeliveryResponse struct {
	ID           string   `json:"id"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	WeightKg     float64  `json:"weight_kg"`
	VolumeM3     float64  `json:"volume_m3"`
	DeliveryDate *string  `json:"delivery_date"`
	Status       string   `json:"status"`
}

type ListDeliveriesResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
}

func NewDeliveryResponse(d *domain.Delivery) DeliveryResponse {
	res := DeliveryResponse{
		ID:       d.ID,
		Address:  d.Address,
		City:     d.City,
		WeightKg: d.WeightKg,
		VolumeM3: d.VolumeM3,
		Status:   d.Status,
	}
	if d.Coordinates != nil {
		res.Lat = &d.Coordinates.Lat
		res.Lng = &d.Coordinates.Lon
	}
	if d.DeliveryDate != nil {
		s := d.DeliveryDate.Format(time.DateOnly)
		res.DeliveryDate = &s
	}
	return res
}
