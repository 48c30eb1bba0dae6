package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"time"

	tourerrors "tourly/internal/tours/errors"
	"tourly/internal/tours/store"
	"tourly/internal/tours/validator"
	"tourly/pkg/config"
	apperrors "tourly/pkg/errors"
	"tourly/pkg/events"
	"tourly/pkg/model"

	"github.com/google/uuid"
)

type TourService interface {
	Create(ctx context.Context, req *model.TourCreate) (*model.Tour, bool, error)
	GetByID(ctx context.Context, id string) (*model.Tour, error)
	List(ctx context.Context, filter model.TourFilter, sortParam string, page, pageSize int) (*model.TourPage, error)
	Cancel(ctx context.Context, id string) (*model.Tour, error)
}

type tourService struct {
	store     *store.Store
	validator *validator.TourValidator
	events    events.Publisher
	cfg       *config.Config
}

func NewTourService(
	st *store.Store,
	v *validator.TourValidator,
	publisher events.Publisher,
	cfg *config.Config,
) TourService {
	return &tourService{
		store:     st,
		validator: v,
		events:    publisher,
		cfg:       cfg,
	}
}

// Create runs the whole booking protocol in one critical section: idempotent
// replay, then quota, then overlap, then commit. A replay consumes no quota
// and performs no checks; a rejected request leaves no trace in the ledger so
// a corrected retry is never blocked by the failed attempt.
func (s *tourService) Create(ctx context.Context, req *model.TourCreate) (*model.Tour, bool, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Tour validation failed", "error", err)
		return nil, false, apperrors.Validation("Invalid tour request", map[string]any{"error": err.Error()})
	}

	req.StartAt = req.StartAt.UTC()
	req.EndAt = req.EndAt.UTC()
	if !req.EndAt.After(req.StartAt) {
		return nil, false, s.mapDomainError(tourerrors.ErrInvalidWindow, "")
	}

	fp := ""
	if req.IdempotencyToken != "" {
		fp = fingerprint(req)
	}

	var tour *model.Tour
	created := false

	err := s.store.Atomically(func(tx *store.Tx) error {
		if fp != "" {
			if existing, ok := tx.Replay(fp); ok {
				tour = existing
				return nil
			}
		}

		if tx.QuotaUsed(req.CustomerID) >= s.cfg.DailyTourLimit {
			return tourerrors.ErrQuotaExceeded
		}

		if tx.HasOverlap(req.PropertyID, req.StartAt, req.EndAt) {
			return tourerrors.ErrOverlapConflict
		}

		now := tx.Now()
		tour = &model.Tour{
			ID:         newTourID(),
			PropertyID: req.PropertyID,
			CustomerID: req.CustomerID,
			StartAt:    req.StartAt,
			EndAt:      req.EndAt,
			Status:     model.StatusBooked,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		tx.InsertTour(tour)
		tx.IncrementQuota(req.CustomerID)
		if fp != "" {
			tx.RecordFingerprint(fp, tour.ID)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, s.mapDomainError(err, "")
	}

	if created {
		s.cfg.Log.Info("Tour created",
			"tour_id", tour.ID,
			"property_id", tour.PropertyID,
			"customer_id", tour.CustomerID,
			"start_at", tour.StartAt,
		)
		s.publish(ctx, events.TypeTourCreated, tour)
	} else {
		s.cfg.Log.Debug("Tour creation replayed", "tour_id", tour.ID)
	}

	return tour, created, nil
}

func (s *tourService) GetByID(ctx context.Context, id string) (*model.Tour, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Tour ID cannot be empty")
	}

	tour, ok := s.store.GetTour(id)
	if !ok {
		return nil, s.mapDomainError(tourerrors.ErrNotFound, id)
	}
	return tour, nil
}

func (s *tourService) List(ctx context.Context, filter model.TourFilter, sortParam string, page, pageSize int) (*model.TourPage, error) {
	if page < 1 || page > s.cfg.MaxPage {
		return nil, s.mapDomainError(tourerrors.ErrInvalidPage, "")
	}
	if pageSize < 1 || pageSize > s.cfg.MaxPageSize {
		return nil, s.mapDomainError(tourerrors.ErrInvalidPage, "")
	}

	desc := strings.HasPrefix(sortParam, "-")
	if strings.TrimPrefix(sortParam, "-") != "start_at" {
		return nil, s.mapDomainError(tourerrors.ErrInvalidSort, "")
	}

	var dayStart, dayEnd time.Time
	if filter.Date != nil {
		d := filter.Date.UTC()
		dayStart = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		dayEnd = dayStart.Add(24 * time.Hour)
	}

	matched := s.store.Match(func(t *model.Tour) bool {
		if filter.PropertyID != "" && t.PropertyID != filter.PropertyID {
			return false
		}
		if filter.CustomerID != "" && t.CustomerID != filter.CustomerID {
			return false
		}
		if filter.Date != nil {
			if !t.StartAt.Before(dayEnd) || !t.EndAt.After(dayStart) {
				return false
			}
		}
		return true
	})

	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return matched[j].StartAt.Before(matched[i].StartAt)
		}
		return matched[i].StartAt.Before(matched[j].StartAt)
	})

	total := len(matched)
	startIdx := (page - 1) * pageSize
	if startIdx > total {
		startIdx = total
	}
	endIdx := startIdx + pageSize
	if endIdx > total {
		endIdx = total
	}

	return &model.TourPage{
		Items:    matched[startIdx:endIdx],
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// Cancel is idempotent: cancelling an already-cancelled tour succeeds and
// returns the record unchanged.
func (s *tourService) Cancel(ctx context.Context, id string) (*model.Tour, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Tour ID cannot be empty")
	}

	var tour *model.Tour
	transitioned := false

	err := s.store.Atomically(func(tx *store.Tx) error {
		existing, ok := tx.Tour(id)
		if !ok {
			return tourerrors.ErrNotFound
		}
		if existing.Status == model.StatusCancelled {
			tour = existing
			return nil
		}
		tour, _ = tx.MarkCancelled(id)
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, s.mapDomainError(err, id)
	}

	if transitioned {
		s.cfg.Log.Info("Tour cancelled",
			"tour_id", tour.ID,
			"property_id", tour.PropertyID,
			"customer_id", tour.CustomerID,
		)
		s.publish(ctx, events.TypeTourCancelled, tour)
	}

	return tour, nil
}

func (s *tourService) mapDomainError(err error, id string) error {
	switch {
	case errors.Is(err, tourerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Tour", id)
	case errors.Is(err, tourerrors.ErrQuotaExceeded):
		return apperrors.RateLimit("daily tour creation limit reached")
	case errors.Is(err, tourerrors.ErrOverlapConflict):
		return apperrors.Conflict("tour window overlaps an existing booked tour for this property")
	case errors.Is(err, tourerrors.ErrInvalidWindow):
		return apperrors.InvalidInput("end_at must be after start_at").
			WithDetails(map[string]any{"field": "end_at"})
	case errors.Is(err, tourerrors.ErrInvalidPage):
		return apperrors.InvalidInput("page and page_size are out of bounds").
			WithDetails(map[string]any{"field": "page"})
	case errors.Is(err, tourerrors.ErrInvalidSort):
		return apperrors.InvalidInput("unsupported sort field").
			WithDetails(map[string]any{"field": "sort"})
	default:
		return apperrors.Internal("Tour operation failed", err)
	}
}

func (s *tourService) publish(ctx context.Context, eventType string, t *model.Tour) {
	ev := events.FromTour(eventType, t, t.UpdatedAt)
	if err := s.events.Publish(ctx, ev); err != nil {
		s.cfg.Log.Warn("Failed to publish tour event",
			"type", eventType,
			"tour_id", t.ID,
			"error", err,
		)
	}
}

// fingerprint keys the idempotency ledger. The token is part of the hash, so
// requests without a token never collide with anything.
func fingerprint(req *model.TourCreate) string {
	h := sha256.New()
	for _, field := range []string{
		req.CustomerID,
		req.PropertyID,
		req.StartAt.UTC().Format(time.RFC3339Nano),
		req.EndAt.UTC().Format(time.RFC3339Nano),
		req.IdempotencyToken,
	} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func newTourID() string {
	u := uuid.New()
	return "tour_" + hex.EncodeToString(u[:])[:12]
}
