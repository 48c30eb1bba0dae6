package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tourly/internal/tours/service"
	"tourly/pkg/config"
	apperrors "tourly/pkg/errors"
	httputil "tourly/pkg/http"
	"tourly/pkg/logger"
	"tourly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const idempotencyHeader = "Idempotency-Key"

type TourHandler struct {
	service service.TourService
	cfg     *config.Config
	log     *logger.Logger
}

func NewTourHandler(service service.TourService, cfg *config.Config) *TourHandler {
	return &TourHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *TourHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.TourCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}
	req.IdempotencyToken = r.Header.Get(idempotencyHeader)

	tour, created, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	// Replays answer 200 with the originally created tour; only a fresh
	// creation answers 201.
	if created {
		if err := httputil.WriteCreated(w, tour); err != nil {
			h.log.Error("failed to write response", "handler", "Create", "error", err)
		}
		return
	}
	if err := httputil.WriteSuccess(w, tour); err != nil {
		h.log.Error("failed to write response", "handler", "Create", "error", err)
	}
}

func (h *TourHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	tour, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, tour); err != nil {
		h.log.Error("failed to write response", "handler", "GetByID", "error", err)
	}
}

func (h *TourHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	filter := model.TourFilter{
		PropertyID: query.Get("property_id"),
		CustomerID: query.Get("customer_id"),
	}

	if dateStr := query.Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			h.writeError(w, "List", apperrors.InvalidInput("invalid date parameter, must be YYYY-MM-DD"))
			return
		}
		filter.Date = &parsed
	}

	sortParam := query.Get("sort")
	if sortParam == "" {
		sortParam = "start_at"
	}

	page, ok := h.intParam(w, query.Get("page"), "page", 1)
	if !ok {
		return
	}
	pageSize, ok := h.intParam(w, query.Get("page_size"), "page_size", h.cfg.DefaultPageSize)
	if !ok {
		return
	}

	result, err := h.service.List(r.Context(), filter, sortParam, page, pageSize)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write response", "handler", "List", "error", err)
	}
}

func (h *TourHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if _, err := h.service.Cancel(r.Context(), id); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TourHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/v1/tours", h.Create)
	router.GET("/v1/tours", h.List)
	router.GET("/v1/tours/:id", h.GetByID)
	router.DELETE("/v1/tours/:id", h.Cancel)
}

func (h *TourHandler) intParam(w http.ResponseWriter, raw, name string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		h.writeError(w, "List", apperrors.InvalidInput("invalid "+name+" parameter: "+raw))
		return 0, false
	}
	return v, true
}

func (h *TourHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}
