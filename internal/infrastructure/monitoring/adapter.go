// Package monitoring provides the zap logger, Prometheus metrics and OpenTelemetry tracing
// behind the domain's logging and metrics interfaces.
package monitoring

import (
	"time"

	"github.com/turtacn/tips/internal/domain/service"
)

var _ service.Metrics = (*MetricsAdapter)(nil)

// MetricsAdapter implements the domain's service.Metrics interface, sending metrics to a Prometheus backend.
// MetricsAdapter 实现了域的 service.Metrics 接口，将指标发送到 Prometheus 后端。
type MetricsAdapter struct {
	metrics *Metrics
}

// NewMetricsAdapter wraps a concrete Prometheus Metrics object.
// NewMetricsAdapter 创建一个包装具体 Prometheus Metrics 对象的新适配器。
func NewMetricsAdapter(metrics *Metrics) service.Metrics {
	return &MetricsAdapter{metrics: metrics}
}

// RecordScore delegates the call to the underlying Prometheus Metrics object.
// RecordScore 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordScore(result, tier string, duration time.Duration) {
	a.metrics.RecordScore(result, tier, duration)
}

// ObserveProbability delegates the call to the underlying Prometheus Metrics object.
// ObserveProbability 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) ObserveProbability(p float64) {
	a.metrics.ObserveProbability(p)
}

// RecordArtifactLoad delegates the call to the underlying Prometheus Metrics object.
// RecordArtifactLoad 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordArtifactLoad(source string, success bool, duration time.Duration) {
	a.metrics.RecordArtifactLoad(source, success, duration)
}

// RecordCacheAccess delegates the call to the underlying Prometheus Metrics object.
// RecordCacheAccess 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordCacheAccess(cacheType string, hit bool) {
	a.metrics.RecordCacheAccess(cacheType, hit)
}
