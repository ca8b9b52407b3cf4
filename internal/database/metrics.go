package database

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// MetricsCollector 数据库连接池指标收集器
type MetricsCollector struct {
	db              *sql.DB
	logger          *logrus.Logger
	collectInterval time.Duration
	stopChan        chan struct{}

	dbConnectionsGauge *prometheus.GaugeVec
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector(db *sql.DB, logger *logrus.Logger) *MetricsCollector {
	mc := &MetricsCollector{
		db:              db,
		logger:          logger,
		collectInterval: 15 * time.Second,
		stopChan:        make(chan struct{}),
	}

	mc.registerMetrics()

	return mc
}

// registerMetrics 注册Prometheus指标
func (mc *MetricsCollector) registerMetrics() {
	mc.dbConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "farmchat_db_connections",
			Help: "Database connection pool state",
		},
		[]string{"state"}, // states: idle, in_use, open, wait_count
	)

}

// Start 开始周期收集连接池指标
func (mc *MetricsCollector) Start() {
	mc.logger.Info("Starting database metrics collection")

	go func() {
		ticker := time.NewTicker(mc.collectInterval)
		defer ticker.Stop()

		for {
			select {
			case <-mc.stopChan:
				return
			case <-ticker.C:
				mc.collectMetrics()
			}
		}
	}()
}

// Stop 停止指标收集
func (mc *MetricsCollector) Stop() {
	close(mc.stopChan)
}

// collectMetrics 采样一次连接池状态
func (mc *MetricsCollector) collectMetrics() {
	stats := mc.db.Stats()

	mc.dbConnectionsGauge.WithLabelValues("idle").Set(float64(stats.Idle))
	mc.dbConnectionsGauge.WithLabelValues("in_use").Set(float64(stats.InUse))
	mc.dbConnectionsGauge.WithLabelValues("open").Set(float64(stats.OpenConnections))
	mc.dbConnectionsGauge.WithLabelValues("wait_count").Set(float64(stats.WaitCount))

	mc.logger.WithFields(logrus.Fields{
		"idle":   stats.Idle,
		"in_use": stats.InUse,
		"open":   stats.OpenConnections,
		"wait":   stats.WaitCount,
	}).Debug("Database connection pool stats collected")
}
