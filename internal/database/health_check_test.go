package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T) (*HealthChecker, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	checker := NewHealthChecker(db, nil, logger)
	return checker, mock, func() { db.Close() }
}

func TestHealthChecker_Basic(t *testing.T) {
	checker, mock, cleanup := newTestChecker(t)
	defer cleanup()

	mock.ExpectPing()

	err := checker.Check(context.Background())
	assert.NoError(t, err)
	assert.True(t, checker.IsHealthy())

	result := checker.GetHealthResult()
	assert.True(t, result.Healthy)
	assert.True(t, result.Database)
	assert.Empty(t, result.LastError)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthChecker_Failure(t *testing.T) {
	checker, mock, cleanup := newTestChecker(t)
	defer cleanup()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err := checker.Check(context.Background())
	assert.Error(t, err)
	assert.False(t, checker.IsHealthy())

	result := checker.GetHealthResult()
	assert.False(t, result.Healthy)
	assert.Contains(t, result.LastError, "connection refused")
}

func TestHealthChecker_Recovery(t *testing.T) {
	checker, mock, cleanup := newTestChecker(t)
	defer cleanup()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()

	require.Error(t, checker.Check(context.Background()))
	assert.False(t, checker.IsHealthy())

	require.NoError(t, checker.Check(context.Background()))
	assert.True(t, checker.IsHealthy())
}

func TestHealthChecker_StartStop(t *testing.T) {
	checker, mock, cleanup := newTestChecker(t)
	defer cleanup()

	// 周期检查会触发若干次ping
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 10; i++ {
		mock.ExpectPing()
	}

	checker.SetCheckInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go checker.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	checker.Stop()
	time.Sleep(20 * time.Millisecond)
}
