package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tourly/pkg/config"
	apperrors "tourly/pkg/errors"
	httputil "tourly/pkg/http"
	"tourly/pkg/logger"
	"tourly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockTourService struct {
	createFn func(ctx context.Context, req *model.TourCreate) (*model.Tour, bool, error)
	getFn    func(ctx context.Context, id string) (*model.Tour, error)
	listFn   func(ctx context.Context, filter model.TourFilter, sortParam string, page, pageSize int) (*model.TourPage, error)
	cancelFn func(ctx context.Context, id string) (*model.Tour, error)
}

func (m *mockTourService) Create(ctx context.Context, req *model.TourCreate) (*model.Tour, bool, error) {
	return m.createFn(ctx, req)
}

func (m *mockTourService) GetByID(ctx context.Context, id string) (*model.Tour, error) {
	return m.getFn(ctx, id)
}

func (m *mockTourService) List(ctx context.Context, filter model.TourFilter, sortParam string, page, pageSize int) (*model.TourPage, error) {
	return m.listFn(ctx, filter, sortParam, page, pageSize)
}

func (m *mockTourService) Cancel(ctx context.Context, id string) (*model.Tour, error) {
	return m.cancelFn(ctx, id)
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultPageSize: 20,
		Log:             logger.New(logger.Config{Level: "error", Output: io.Discard}),
	}
}

func newTestRouter(svc *mockTourService) *httprouter.Router {
	router := httprouter.New()
	NewTourHandler(svc, testConfig()).RegisterRoutes(router)
	return router
}

func sampleTour() *model.Tour {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &model.Tour{
		ID:         "tour_abc123def456",
		PropertyID: "prop-1",
		CustomerID: "cust-1",
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Status:     model.StatusBooked,
		CreatedAt:  start,
		UpdatedAt:  start,
	}
}

func createBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(model.TourCreate{
		PropertyID: "prop-1",
		CustomerID: "cust-1",
		StartAt:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestCreateReturns201(t *testing.T) {
	svc := &mockTourService{
		createFn: func(_ context.Context, req *model.TourCreate) (*model.Tour, bool, error) {
			return sampleTour(), true, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/tours", createBody(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var tour model.Tour
	if err := json.NewDecoder(rec.Body).Decode(&tour); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if tour.ID != "tour_abc123def456" {
		t.Errorf("tour id = %q", tour.ID)
	}
}

func TestCreateReplayReturns200(t *testing.T) {
	svc := &mockTourService{
		createFn: func(_ context.Context, _ *model.TourCreate) (*model.Tour, bool, error) {
			return sampleTour(), false, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/tours", createBody(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("replay status = %d, want 200", rec.Code)
	}
}

func TestCreatePassesIdempotencyHeader(t *testing.T) {
	var gotToken string
	svc := &mockTourService{
		createFn: func(_ context.Context, req *model.TourCreate) (*model.Tour, bool, error) {
			gotToken = req.IdempotencyToken
			return sampleTour(), true, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/tours", createBody(t))
	req.Header.Set("Idempotency-Key", "tok-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if gotToken != "tok-42" {
		t.Errorf("token passed to service = %q, want tok-42", gotToken)
	}
}

func TestCreateInvalidBody(t *testing.T) {
	svc := &mockTourService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/tours", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != apperrors.CodeInvalidInput {
		t.Errorf("error code = %q, want %q", resp.Code, apperrors.CodeInvalidInput)
	}
}

func TestCreateErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"overlap conflict", apperrors.Conflict("window taken"), http.StatusConflict, apperrors.CodeConflict},
		{"quota exceeded", apperrors.RateLimit("limit reached"), http.StatusTooManyRequests, apperrors.CodeRateLimit},
		{"validation", apperrors.Validation("bad request", nil), http.StatusUnprocessableEntity, apperrors.CodeValidation},
		{"invalid window", apperrors.InvalidInput("end_at must be after start_at"), http.StatusBadRequest, apperrors.CodeInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockTourService{
				createFn: func(_ context.Context, _ *model.TourCreate) (*model.Tour, bool, error) {
					return nil, false, tc.err
				},
			}
			router := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/v1/tours", createBody(t))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if resp := decodeError(t, rec); resp.Code != tc.wantCode {
				t.Errorf("error code = %q, want %q", resp.Code, tc.wantCode)
			}
		})
	}
}

func TestGetByID(t *testing.T) {
	svc := &mockTourService{
		getFn: func(_ context.Context, id string) (*model.Tour, error) {
			if id != "tour_abc123def456" {
				return nil, apperrors.NotFoundWithID("Tour", id)
			}
			return sampleTour(), nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/tours/tour_abc123def456", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/tours/tour_missing", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != apperrors.CodeNotFound {
		t.Errorf("error code = %q, want %q", resp.Code, apperrors.CodeNotFound)
	}
}

func TestListParsesQueryParams(t *testing.T) {
	var (
		gotFilter   model.TourFilter
		gotSort     string
		gotPage     int
		gotPageSize int
	)
	svc := &mockTourService{
		listFn: func(_ context.Context, filter model.TourFilter, sortParam string, page, pageSize int) (*model.TourPage, error) {
			gotFilter = filter
			gotSort = sortParam
			gotPage = page
			gotPageSize = pageSize
			return &model.TourPage{Items: []*model.Tour{}, Page: page, PageSize: pageSize}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/tours?property_id=p1&customer_id=c1&date=2025-06-01&sort=-start_at&page=3&page_size=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotFilter.PropertyID != "p1" || gotFilter.CustomerID != "c1" {
		t.Errorf("filter = %+v", gotFilter)
	}
	if gotFilter.Date == nil || !gotFilter.Date.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date filter = %v", gotFilter.Date)
	}
	if gotSort != "-start_at" || gotPage != 3 || gotPageSize != 5 {
		t.Errorf("sort=%q page=%d page_size=%d", gotSort, gotPage, gotPageSize)
	}
}

func TestListDefaults(t *testing.T) {
	var gotSort string
	var gotPage, gotPageSize int
	svc := &mockTourService{
		listFn: func(_ context.Context, _ model.TourFilter, sortParam string, page, pageSize int) (*model.TourPage, error) {
			gotSort = sortParam
			gotPage = page
			gotPageSize = pageSize
			return &model.TourPage{Items: []*model.Tour{}, Page: page, PageSize: pageSize}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/tours", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if gotSort != "start_at" || gotPage != 1 || gotPageSize != 20 {
		t.Errorf("defaults: sort=%q page=%d page_size=%d, want start_at/1/20", gotSort, gotPage, gotPageSize)
	}
}

func TestListRejectsMalformedParams(t *testing.T) {
	svc := &mockTourService{
		listFn: func(_ context.Context, _ model.TourFilter, _ string, page, pageSize int) (*model.TourPage, error) {
			return &model.TourPage{Items: []*model.Tour{}, Page: page, PageSize: pageSize}, nil
		},
	}
	router := newTestRouter(svc)

	for _, url := range []string{
		"/v1/tours?date=June-1st",
		"/v1/tours?page=abc",
		"/v1/tours?page_size=abc",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, rec.Code)
		}
	}
}

func TestCancelReturns204(t *testing.T) {
	svc := &mockTourService{
		cancelFn: func(_ context.Context, id string) (*model.Tour, error) {
			if id == "tour_missing" {
				return nil, apperrors.NotFoundWithID("Tour", id)
			}
			tour := sampleTour()
			tour.Status = model.StatusCancelled
			return tour, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/v1/tours/tour_abc123def456", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Error("204 response must have an empty body")
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/tours/tour_missing", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
