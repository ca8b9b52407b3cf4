package errors

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrorMonitor 错误监控器，按错误码聚合计数并导出Prometheus指标
type ErrorMonitor struct {
	errorCounter *prometheus.CounterVec

	stats      map[string]*ErrorStats
	statsMutex sync.RWMutex
}

// ErrorStats 错误统计信息
type ErrorStats struct {
	Code      string
	Count     int64
	FirstSeen time.Time
	LastSeen  time.Time
}

var (
	defaultMonitor     *ErrorMonitor
	defaultMonitorOnce sync.Once
)

// GetErrorMonitor 获取全局错误监控器
func GetErrorMonitor() *ErrorMonitor {
	defaultMonitorOnce.Do(func() {
		defaultMonitor = &ErrorMonitor{
			errorCounter: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "farmchat_errors_total",
				Help: "Application errors by code and endpoint",
			}, []string{"code", "endpoint"}),
			stats: make(map[string]*ErrorStats),
		}
	})
	return defaultMonitor
}

// RecordError 记录一次错误
func (em *ErrorMonitor) RecordError(appErr *AppError, endpoint string) {
	if appErr == nil {
		return
	}

	em.errorCounter.WithLabelValues(string(appErr.Code), endpoint).Inc()

	em.statsMutex.Lock()
	defer em.statsMutex.Unlock()

	now := time.Now()
	stat, ok := em.stats[string(appErr.Code)]
	if !ok {
		stat = &ErrorStats{Code: string(appErr.Code), FirstSeen: now}
		em.stats[string(appErr.Code)] = stat
	}
	stat.Count++
	stat.LastSeen = now
}

// GetStats 获取错误统计快照
func (em *ErrorMonitor) GetStats() map[string]ErrorStats {
	em.statsMutex.RLock()
	defer em.statsMutex.RUnlock()

	snapshot := make(map[string]ErrorStats, len(em.stats))
	for code, stat := range em.stats {
		snapshot[code] = *stat
	}
	return snapshot
}
