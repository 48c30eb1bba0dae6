package model

import (
	"time"
)

type TourStatus string

const (
	StatusBooked    TourStatus = "BOOKED"
	StatusCancelled TourStatus = "CANCELLED"
)

type Tour struct {
	ID         string     `json:"id"`
	PropertyID string     `json:"property_id"`
	CustomerID string     `json:"customer_id"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      time.Time  `json:"end_at"`
	Status     TourStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TourCreate is the normalized creation request handed to the service.
// The idempotency token arrives as a header, not part of the JSON body.
type TourCreate struct {
	PropertyID       string    `json:"property_id" validate:"required,min=1,max=128"`
	CustomerID       string    `json:"customer_id" validate:"required,min=1,max=128"`
	StartAt          time.Time `json:"start_at" validate:"required"`
	EndAt            time.Time `json:"end_at" validate:"required"`
	IdempotencyToken string    `json:"-"`
}

// TourFilter narrows a listing. Date keeps tours whose window intersects
// that UTC calendar day.
type TourFilter struct {
	PropertyID string
	CustomerID string
	Date       *time.Time
}

type TourPage struct {
	Items    []*Tour `json:"items"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Total    int     `json:"total"`
}
