package domain

import (
	"github.com/google/uuid"
)

type Room struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	TotalUnits  int       `json:"total_units"`
}

func (r *Room) HasCapacity(quantity int) bool {
	return r.TotalUnits >= quantity
}
