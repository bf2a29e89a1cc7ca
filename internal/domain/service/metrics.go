// Package service holds the scoring pipeline: profile validation, feature
// transformation, model invocation and the artifacts bundle they share.
package service

import (
	"time"
)

// Metrics defines the interface for collecting scoring metrics.
// This abstraction allows the application layer to remain independent of the specific monitoring implementation (e.g., Prometheus).
// Metrics 定义了收集评分指标的接口。
// 这种抽象使应用层能够独立于具体的监控实现（例如 Prometheus）。
type Metrics interface {
	// RecordScore records one scoring call. result is "success" or the error code; tier is empty on failure.
	// RecordScore 记录一次评分调用。result 为 "success" 或错误码；失败时 tier 为空。
	RecordScore(result, tier string, duration time.Duration)

	// ObserveProbability records the distribution of returned probabilities.
	// ObserveProbability 记录返回概率的分布。
	ObserveProbability(p float64)

	// RecordArtifactLoad records one underlying artifact load (first load or reload).
	// RecordArtifactLoad 记录一次底层工件加载（首次加载或重新加载）。
	RecordArtifactLoad(source string, success bool, duration time.Duration)

	// RecordCacheAccess records a cache hit or miss.
	// RecordCacheAccess 记录缓存命中或未命中。
	RecordCacheAccess(cacheType string, hit bool)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) RecordScore(string, string, time.Duration)      {}
func (NopMetrics) ObserveProbability(float64)                     {}
func (NopMetrics) RecordArtifactLoad(string, bool, time.Duration) {}
func (NopMetrics) RecordCacheAccess(string, bool)                 {}
