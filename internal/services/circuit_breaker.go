package services

import (
	"sync"
	"sync/atomic"
	"time"
)

// BreakerState 熔断器状态
type BreakerState int32

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

// String 返回状态字符串
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker 外部调用熔断器，按工具名隔离故障
type CircuitBreaker struct {
	name string

	failureThreshold int
	successThreshold int
	cooldown         time.Duration

	state           int32
	failureCount    int32
	successCount    int32
	lastFailureTime time.Time
	mutex           sync.RWMutex
}

// NewCircuitBreaker 创建熔断器
func NewCircuitBreaker(name string, failureThreshold, successThreshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:             name,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
		state:            int32(BreakerClosed),
	}
}

// Call 带熔断保护执行调用
func (cb *CircuitBreaker) Call(fn func() error) error {
	if !cb.allow() {
		return &BreakerOpenError{Name: cb.name}
	}

	err := fn()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

// allow 检查当前状态是否允许请求通过
func (cb *CircuitBreaker) allow() bool {
	switch cb.State() {
	case BreakerClosed, BreakerHalfOpen:
		return true
	case BreakerOpen:
		cb.mutex.RLock()
		cooled := time.Since(cb.lastFailureTime) >= cb.cooldown
		cb.mutex.RUnlock()

		if cooled {
			atomic.StoreInt32(&cb.state, int32(BreakerHalfOpen))
			atomic.StoreInt32(&cb.successCount, 0)
			return true
		}
		return false
	default:
		return false
	}
}

// recordSuccess 记录成功结果
func (cb *CircuitBreaker) recordSuccess() {
	switch cb.State() {
	case BreakerHalfOpen:
		if int(atomic.AddInt32(&cb.successCount, 1)) >= cb.successThreshold {
			atomic.StoreInt32(&cb.state, int32(BreakerClosed))
			atomic.StoreInt32(&cb.failureCount, 0)
		}
	case BreakerClosed:
		atomic.StoreInt32(&cb.failureCount, 0)
	}
}

// recordFailure 记录失败结果
func (cb *CircuitBreaker) recordFailure() {
	cb.mutex.Lock()
	cb.lastFailureTime = time.Now()
	cb.mutex.Unlock()

	switch cb.State() {
	case BreakerHalfOpen:
		// 半开状态失败立即重新打开
		atomic.StoreInt32(&cb.state, int32(BreakerOpen))
		atomic.StoreInt32(&cb.successCount, 0)
	case BreakerClosed:
		if int(atomic.AddInt32(&cb.failureCount, 1)) >= cb.failureThreshold {
			atomic.StoreInt32(&cb.state, int32(BreakerOpen))
		}
	}
}

// State 获取当前状态
func (cb *CircuitBreaker) State() BreakerState {
	return BreakerState(atomic.LoadInt32(&cb.state))
}

// Stats 返回统计信息
func (cb *CircuitBreaker) Stats() map[string]interface{} {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()

	return map[string]interface{}{
		"name":              cb.name,
		"state":             cb.State().String(),
		"failure_count":     atomic.LoadInt32(&cb.failureCount),
		"success_count":     atomic.LoadInt32(&cb.successCount),
		"failure_threshold": cb.failureThreshold,
		"last_failure_time": cb.lastFailureTime,
	}
}

// BreakerOpenError 熔断器打开错误
type BreakerOpenError struct {
	Name string
}

func (e *BreakerOpenError) Error() string {
	return "circuit breaker is open: " + e.Name
}

// 全局熔断器表，按外部依赖名聚合
var (
	globalBreakers = make(map[string]*CircuitBreaker)
	breakerMutex   sync.RWMutex
)

// GetCircuitBreaker 获取或创建全局熔断器
func GetCircuitBreaker(name string) *CircuitBreaker {
	breakerMutex.RLock()
	cb, exists := globalBreakers[name]
	breakerMutex.RUnlock()

	if exists {
		return cb
	}

	cb = NewCircuitBreaker(name, 5, 2, 30*time.Second)

	breakerMutex.Lock()
	globalBreakers[name] = cb
	breakerMutex.Unlock()

	return cb
}

// GetAllCircuitBreakers 获取所有熔断器状态
func GetAllCircuitBreakers() map[string]interface{} {
	breakerMutex.RLock()
	defer breakerMutex.RUnlock()

	result := make(map[string]interface{})
	for name, cb := range globalBreakers {
		result[name] = cb.Stats()
	}
	return result
}
