package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/DeyvidJesus/gomech-ai-service/internal/http/response"
	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	probeTimeout   = 5 * time.Second
)

// Probe checks one optional dependency such as Redis or NATS.
type Probe func(ctx context.Context) error

type StatusDeps struct {
	DB      *gorm.DB
	Env     func() map[string]bool
	Probes  map[string]Probe
	Locks   interface{ Len() int }
	Workers interface{ InFlight() int }
}

type StatusHandler struct {
	log  *logger.Logger
	deps StatusDeps
}

func NewStatusHandler(log *logger.Logger, deps StatusDeps) *StatusHandler {
	return &StatusHandler{log: log.With("handler", "status"), deps: deps}
}

type StatusResponse struct {
	Status          string          `json:"status"`
	Database        store.Health    `json:"database"`
	Env             map[string]bool `json:"env"`
	Dependencies    map[string]bool `json:"dependencies,omitempty"`
	Locks           int             `json:"locks"`
	WorkersInFlight int             `json:"workers_in_flight"`
}

// GET /status
func (h *StatusHandler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	var health store.Health
	names := make([]string, 0, len(h.deps.Probes))
	for name := range h.deps.Probes {
		names = append(names, name)
	}
	outcomes := make([]bool, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		health = store.Inspect(gctx, h.deps.DB)
		if health.Cause != nil {
			h.log.Error("database health check failed", "error", health.Cause)
		}
		return nil
	})
	for idx, name := range names {
		probe := h.deps.Probes[name]
		g.Go(func() error {
			if err := probe(gctx); err != nil {
				h.log.Warn("dependency probe failed", "dependency", name, "error", err)
				return nil
			}
			outcomes[idx] = true
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]bool, len(names))
	for idx, name := range names {
		results[name] = outcomes[idx]
	}

	out := StatusResponse{
		Status:       statusOK,
		Database:     health,
		Env:          map[string]bool{},
		Dependencies: results,
	}
	if h.deps.Env != nil {
		out.Env = h.deps.Env()
	}
	if h.deps.Locks != nil {
		out.Locks = h.deps.Locks.Len()
	}
	if h.deps.Workers != nil {
		out.WorkersInFlight = h.deps.Workers.InFlight()
	}
	if degraded(out) {
		out.Status = statusDegraded
	}
	response.RespondOK(c, out)
}

func degraded(s StatusResponse) bool {
	if !s.Database.Healthy() {
		return true
	}
	for _, ok := range s.Env {
		if !ok {
			return true
		}
	}
	for _, ok := range s.Dependencies {
		if !ok {
			return true
		}
	}
	return false
}
