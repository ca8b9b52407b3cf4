package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/farmchat/backend-go/internal/errors"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock
}

func TestListConversations(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewConversationService(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "conversations" WHERE user_id = .+ ORDER BY updated_at DESC`).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "language", "created_at", "updated_at"}).
			AddRow("conv-1", 7, "Wheat sowing advice", "en", now, now))

	mock.ExpectQuery(`SELECT count\(\*\) FROM "chat_messages" WHERE conversation_id = .+`).
		WithArgs("conv-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	summaries, err := svc.ListConversations(7)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "conv-1", summaries[0].ID)
	assert.Equal(t, "Wheat sowing advice", summaries[0].Title)
	assert.Equal(t, int64(4), summaries[0].MessageCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHistory_UnknownConversation(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewConversationService(db)

	mock.ExpectQuery(`SELECT \* FROM "conversations" WHERE id = .+ AND user_id = .+`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := svc.GetHistory(7, "missing-conv", 50)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestDeleteConversation(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewConversationService(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "conversations" WHERE id = .+ AND user_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "language", "created_at", "updated_at"}).
			AddRow("conv-1", 7, "t", "en", now, now))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "chat_messages" WHERE conversation_id = .+`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "conversations"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteConversation(7, "conv-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteConversation_AlreadyDeleted(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewConversationService(db)

	mock.ExpectQuery(`SELECT \* FROM "conversations" WHERE id = .+ AND user_id = .+`).
		WillReturnError(gorm.ErrRecordNotFound)

	err := svc.DeleteConversation(7, "conv-1")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode)
}
