package handler

import (
	"net/http"

	httputil "tourly/pkg/http"
	"tourly/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// HealthHandler answers liveness and readiness probes. The store lives in
// process memory, so a responding process is a ready process.
type HealthHandler struct {
	log *logger.Logger
}

func NewHealthHandler(log *logger.Logger) *HealthHandler {
	return &HealthHandler{log: log}
}

func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, map[string]string{"status": "ok"}); err != nil {
		h.log.Error("failed to write health response", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Status)
	router.GET("/ready", h.Status)
}
