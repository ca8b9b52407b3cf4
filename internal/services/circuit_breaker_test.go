package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 2, time.Minute)
	failing := func() error { return errors.New("boom") }

	for i := 0; i < 3; i++ {
		assert.Error(t, cb.Call(failing))
	}
	assert.Equal(t, BreakerOpen, cb.State())

	// 打开后请求被拒绝
	err := cb.Call(func() error { return nil })
	var openErr *BreakerOpenError
	require.True(t, errors.As(err, &openErr))
	assert.Equal(t, "test", openErr.Name)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 2, time.Minute)

	assert.Error(t, cb.Call(func() error { return errors.New("boom") }))
	assert.Error(t, cb.Call(func() error { return errors.New("boom") }))
	assert.NoError(t, cb.Call(func() error { return nil }))

	// 计数被成功调用清零，再失败两次不应打开
	assert.Error(t, cb.Call(func() error { return errors.New("boom") }))
	assert.Error(t, cb.Call(func() error { return errors.New("boom") }))
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 2, 10*time.Millisecond)

	assert.Error(t, cb.Call(func() error { return errors.New("boom") }))
	assert.Equal(t, BreakerOpen, cb.State())

	time.Sleep(15 * time.Millisecond)

	// 冷却后进入半开，连续成功达到阈值则闭合
	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, BreakerHalfOpen, cb.State())
	assert.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 2, 10*time.Millisecond)

	assert.Error(t, cb.Call(func() error { return errors.New("boom") }))
	time.Sleep(15 * time.Millisecond)

	assert.Error(t, cb.Call(func() error { return errors.New("boom") }))
	assert.Equal(t, BreakerOpen, cb.State())
}

func TestGetCircuitBreaker_Singleton(t *testing.T) {
	a := GetCircuitBreaker("tool:weather-test")
	b := GetCircuitBreaker("tool:weather-test")
	assert.Same(t, a, b)

	stats := GetAllCircuitBreakers()
	assert.Contains(t, stats, "tool:weather-test")
}
