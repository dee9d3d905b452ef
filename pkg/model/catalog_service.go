package model

import (
	"time"
)

// CatalogService is a bookable offering. The core consumes only DurationMin,
// which drives slot generation and appointment end-time computation.
type CatalogService struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID     string    `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	DurationMin int       `json:"duration_min" bson:"duration_min" validate:"required,min=5,max=480"`
	PriceCents  int64     `json:"price_cents" bson:"price_cents" validate:"min=0"`
	IsVisible   bool      `json:"is_visible" bson:"is_visible"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type CatalogServiceUpdate struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	DurationMin *int   `json:"duration_min,omitempty" validate:"omitempty,min=5,max=480"`
	PriceCents  *int64 `json:"price_cents,omitempty" validate:"omitempty,min=0"`
	IsVisible   *bool  `json:"is_visible,omitempty" validate:"omitempty"`
}
