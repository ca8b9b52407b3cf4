package services

import (
	"database/sql/driver"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validUTF8Arg 校验传给驱动的字符串是合法UTF-8且不超过指定字符数
type validUTF8Arg struct {
	maxRunes int
}

func (a validUTF8Arg) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && utf8.ValidString(s) && utf8.RuneCountInString(s) <= a.maxRunes
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "hello", truncateRunes("hello", 60))
	assert.Equal(t, "he", truncateRunes("hello", 2))

	// 多字节字符不被从中间切断
	hindi := strings.Repeat("क", 80)
	got := truncateRunes(hindi, 60)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 60, utf8.RuneCountInString(got))

	assert.Equal(t, "", truncateRunes("", 10))
}

func TestEnsureConversation_MultibyteTitle(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewChatService(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "conversations"`).
		WithArgs(sqlmock.AnyArg(), uint(7), validUTF8Arg{maxRunes: 60}, "hi",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	firstMessage := "a " + strings.Repeat("क", 80)
	conv, err := svc.ensureConversation(7, "", firstMessage, "hi")
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(conv.Title))
	assert.Equal(t, 60, utf8.RuneCountInString(conv.Title))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureConversation_ExistingID(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewChatService(db)

	mock.ExpectQuery(`SELECT \* FROM "conversations" WHERE id = .+ AND user_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "language"}).
			AddRow("conv-1", 7, "t", "en"))

	conv, err := svc.ensureConversation(7, "conv-1", "ignored", "en")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", conv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
