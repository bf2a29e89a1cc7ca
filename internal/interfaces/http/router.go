// Package http wires the gin router of the scoring service.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/tips/internal/config"
	"github.com/turtacn/tips/internal/interfaces/http/handlers"
	"github.com/turtacn/tips/internal/interfaces/http/middleware"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/logger"
)

// artifactsMaxAge is how long clients may reuse an artifact description before revalidating.
const artifactsMaxAge = time.Minute

// RouterDependencies 路由器依赖
type RouterDependencies struct {
	Config         *config.Config
	Logger         logger.Logger
	ScoringHandler *handlers.ScoringHandler
	HealthHandler  *handlers.HealthHandler
	// Metrics is optional; nil disables request metrics.
	Metrics middleware.HTTPMetrics
	// Gatherer serves /metrics; defaults to the global registry.
	Gatherer prometheus.Gatherer
}

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	deps   RouterDependencies
	server *http.Server
}

// NewRouter 创建路由器
func NewRouter(deps RouterDependencies) *Router {
	// 设置 Gin 模式
	switch deps.Config.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(deps.Config.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	r := &Router{engine: gin.New(), deps: deps}
	r.setupRoutes()

	srv := deps.Config.Server
	r.server = &http.Server{
		Addr:           srv.Addr(),
		Handler:        r.engine,
		ReadTimeout:    srv.ReadTimeout,
		WriteTimeout:   srv.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	return r
}

// Engine exposes the gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupRoutes() {
	log := r.deps.Logger

	// 全局中间件
	r.engine.Use(handlers.RecoveryMiddleware(log))
	r.engine.Use(handlers.RequestIDMiddleware())
	r.engine.Use(handlers.TracingMiddleware())
	r.engine.Use(handlers.LoggingMiddleware(log))
	if r.deps.Metrics != nil {
		r.engine.Use(middleware.ObservabilityMiddleware(r.deps.Metrics))
	}

	// CORS 配置
	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", constants.HeaderRequestID, constants.HeaderIfNoneMatch},
		ExposeHeaders: []string{constants.HeaderRequestID, constants.HeaderETag},
		MaxAge:        12 * time.Hour,
	}))

	// 健康检查路由
	r.engine.GET("/health/live", r.deps.HealthHandler.LivenessCheck)
	r.engine.GET("/health/ready", r.deps.HealthHandler.ReadinessCheck)

	if r.deps.Config.Monitoring.MetricsEnabled {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.deps.Gatherer, promhttp.HandlerOpts{})))
	}
	if r.deps.Config.Monitoring.PprofEnabled {
		pprof.Register(r.engine)
	}

	// API 路由组
	v1 := r.engine.Group("/api/" + constants.APIVersion)
	{
		v1.POST("/score", r.deps.ScoringHandler.Score)
		v1.GET("/artifacts", middleware.ETagCache(artifactsMaxAge), r.deps.ScoringHandler.GetArtifacts)
	}

	// 运维接口，不对外暴露
	internal := r.engine.Group("/_internal")
	{
		internal.POST("/artifacts/reload", r.deps.ScoringHandler.ReloadArtifacts)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start runs the HTTP server until Stop is called.
func (r *Router) Start() error {
	r.deps.Logger.Info(context.Background(), "Starting HTTP server", logger.String("address", r.server.Addr))
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	r.deps.Logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}

//Personal.AI order the ending
