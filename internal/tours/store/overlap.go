package store

import (
	"time"

	"tourly/pkg/model"
)

// HasOverlap reports whether any blocking tour for the property intersects
// [start, end). It runs on the live collection under the same lock as the
// pending insert; checking outside that lock would let two concurrent
// creations for the same slot both pass.
func (tx *Tx) HasOverlap(propertyID string, start, end time.Time) bool {
	for _, t := range tx.s.tours {
		if t.PropertyID != propertyID {
			continue
		}
		if !blocksWindow(t) {
			continue
		}
		if overlaps(t.StartAt, t.EndAt, start, end) {
			return true
		}
	}
	return false
}

// blocksWindow is the single place deciding which tours reserve their slot.
// Cancelled tours do not block; flipping that policy means changing only
// this predicate.
func blocksWindow(t *model.Tour) bool {
	return t.Status == model.StatusBooked
}

// overlaps is strict interval intersection: windows that merely touch at an
// endpoint do not overlap.
func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}
