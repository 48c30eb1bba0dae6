package events

import (
	"time"

	"tourly/pkg/model"
)

const (
	TypeTourCreated   = "tour.created"
	TypeTourCancelled = "tour.cancelled"
)

// TourEvent is the payload published after a state change commits. Events are
// emitted outside the store's critical section and are best-effort; the
// booking outcome never depends on the broker.
type TourEvent struct {
	Type       string           `json:"type"`
	TourID     string           `json:"tour_id"`
	PropertyID string           `json:"property_id"`
	CustomerID string           `json:"customer_id"`
	StartAt    time.Time        `json:"start_at"`
	EndAt      time.Time        `json:"end_at"`
	Status     model.TourStatus `json:"status"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func FromTour(eventType string, t *model.Tour, occurredAt time.Time) TourEvent {
	return TourEvent{
		Type:       eventType,
		TourID:     t.ID,
		PropertyID: t.PropertyID,
		CustomerID: t.CustomerID,
		StartAt:    t.StartAt,
		EndAt:      t.EndAt,
		Status:     t.Status,
		OccurredAt: occurredAt,
	}
}
