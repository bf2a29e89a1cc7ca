package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/tips/pkg/logger"
)

const checkTimeout = 2 * time.Second

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessChecker reports whether the scoring artifacts are in service.
type ReadinessChecker interface {
	Ready() bool
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	scoring ReadinessChecker
	redis   Pinger
	log     logger.Logger
}

// NewHealthHandler creates a new HealthHandler. redis may be nil when
// artifacts are not read from Redis.
func NewHealthHandler(scoring ReadinessChecker, redis Pinger, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		scoring: scoring,
		redis:   redis,
		log:     log,
	}
}

// LivenessCheck godoc
// @Summary      Liveness Check
// @Description  Reports that the process is running.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck godoc
// @Summary      Readiness Check
// @Description  Ready only once artifacts are loaded and every dependency answers.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	status := "ready"
	checks := h.performChecks(c.Request.Context())

	httpStatus := http.StatusOK
	for _, checkStatus := range checks {
		if checkStatus != "ok" {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}
	if httpStatus != http.StatusOK {
		h.log.Warn(c.Request.Context(), "Readiness check failed", logger.Any("checks", checks))
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

func (h *HealthHandler) performChecks(ctx context.Context) map[string]string {
	var wg sync.WaitGroup
	checks := make(map[string]string)
	mu := &sync.Mutex{}

	checkers := map[string]func() string{
		"artifacts": h.checkArtifacts,
	}
	if h.redis != nil {
		checkers["redis"] = func() string { return h.checkRedis(ctx) }
	}

	wg.Add(len(checkers))
	for name, checkFunc := range checkers {
		go func(name string, f func() string) {
			defer wg.Done()
			status := f()
			mu.Lock()
			checks[name] = status
			mu.Unlock()
		}(name, checkFunc)
	}
	wg.Wait()
	return checks
}

func (h *HealthHandler) checkArtifacts() string {
	if !h.scoring.Ready() {
		return "error: artifacts not loaded"
	}
	return "ok"
}

func (h *HealthHandler) checkRedis(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := h.redis.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

//Personal.AI order the ending
