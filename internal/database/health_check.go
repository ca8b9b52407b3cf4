package database

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// HealthChecker 依赖健康检查器，周期性探测Postgres与Redis
type HealthChecker struct {
	db            *sql.DB
	redis         *redis.Client
	logger        *logrus.Logger
	checkInterval time.Duration
	retryDelay    time.Duration
	maxRetries    int

	mu           sync.RWMutex
	dbHealthy    bool
	redisHealthy bool
	lastCheck    time.Time
	lastError    error
	stopChan     chan struct{}
	running      bool
}

// HealthCheckResult 健康检查结果
type HealthCheckResult struct {
	Healthy      bool      `json:"healthy"`
	Database     bool      `json:"database"`
	Redis        bool      `json:"redis"`
	LastCheck    time.Time `json:"last_check"`
	LastError    string    `json:"last_error,omitempty"`
	ResponseTime string    `json:"response_time,omitempty"`
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(db *sql.DB, rdb *redis.Client, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		db:            db,
		redis:         rdb,
		logger:        logger,
		checkInterval: 30 * time.Second,
		retryDelay:    5 * time.Second,
		maxRetries:    3,
		stopChan:      make(chan struct{}),
	}
}

// SetCheckInterval 设置检查间隔
func (hc *HealthChecker) SetCheckInterval(interval time.Duration) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checkInterval = interval
}

// Start 开始周期检查，阻塞直到ctx取消或Stop被调用
func (hc *HealthChecker) Start(ctx context.Context) {
	hc.mu.Lock()
	if hc.running {
		hc.mu.Unlock()
		return
	}
	hc.running = true
	hc.mu.Unlock()

	hc.logger.Info("Starting dependency health checker")

	// 立即执行一次检查
	go hc.checkAndUpdate()

	ticker := time.NewTicker(hc.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			hc.mu.Lock()
			hc.running = false
			hc.mu.Unlock()
			hc.logger.Info("Dependency health checker stopped")
			return
		case <-hc.stopChan:
			hc.mu.Lock()
			hc.running = false
			hc.mu.Unlock()
			hc.logger.Info("Dependency health checker stopped")
			return
		case <-ticker.C:
			go hc.checkAndUpdate()
		}
	}
}

// Stop 停止健康检查
func (hc *HealthChecker) Stop() {
	hc.mu.Lock()
	if !hc.running {
		hc.mu.Unlock()
		return
	}
	close(hc.stopChan)
	hc.mu.Unlock()
}

// Check 执行单次检查，任一依赖失败即返回错误
func (hc *HealthChecker) Check(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dbErr := hc.db.PingContext(ctx)
	var redisErr error
	if hc.redis != nil {
		redisErr = hc.redis.Ping(ctx).Err()
	}
	responseTime := time.Since(start)

	hc.mu.Lock()
	hc.lastCheck = time.Now()
	hc.dbHealthy = dbErr == nil
	hc.redisHealthy = redisErr == nil

	var firstErr error
	if dbErr != nil {
		firstErr = dbErr
	} else if redisErr != nil {
		firstErr = redisErr
	}
	hc.lastError = firstErr
	hc.mu.Unlock()

	if firstErr != nil {
		hc.logger.WithFields(logrus.Fields{
			"error":         firstErr.Error(),
			"response_time": responseTime,
		}).Warn("Dependency health check failed")
		return firstErr
	}

	hc.logger.WithField("response_time", responseTime).Debug("Dependency health check passed")
	return nil
}

// checkAndUpdate 执行检查并在失败时重试
func (hc *HealthChecker) checkAndUpdate() {
	ctx := context.Background()
	if err := hc.Check(ctx); err != nil {
		hc.retryWithBackoff(ctx)
	}
}

// retryWithBackoff 带退避的重试逻辑
func (hc *HealthChecker) retryWithBackoff(ctx context.Context) {
	for i := 0; i < hc.maxRetries; i++ {
		hc.logger.WithField("attempt", i+1).Info("Retrying dependency check")

		select {
		case <-time.After(hc.retryDelay * time.Duration(i+1)):
			if err := hc.Check(ctx); err == nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}

	hc.logger.Error("Dependencies still unhealthy after all retries")
}

// IsHealthy 所有依赖都健康时返回true
func (hc *HealthChecker) IsHealthy() bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.dbHealthy && hc.redisHealthy
}

// GetHealthResult 获取健康检查结果快照
func (hc *HealthChecker) GetHealthResult() HealthCheckResult {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	result := HealthCheckResult{
		Healthy:   hc.dbHealthy && hc.redisHealthy,
		Database:  hc.dbHealthy,
		Redis:     hc.redisHealthy,
		LastCheck: hc.lastCheck,
	}
	if hc.lastError != nil {
		result.LastError = hc.lastError.Error()
	}
	return result
}
