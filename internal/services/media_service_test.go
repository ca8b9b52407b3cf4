package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/farmchat/backend-go/internal/errors"
)

func assertAppErrorCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected *AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestMediaValidate_EmptyFile(t *testing.T) {
	svc := NewMediaService(nil)

	_, _, err := svc.validate(&MediaUpload{FileName: "leaf.jpg"})
	assertAppErrorCode(t, err, apperrors.ErrCodeValidationFailed)
}

func TestMediaValidate_ImageTypes(t *testing.T) {
	svc := NewMediaService(nil)

	for _, name := range []string{"leaf.jpg", "leaf.JPEG", "soil.png", "crop.webp", "field.heic"} {
		fileType, mimeType, err := svc.validate(&MediaUpload{FileName: name, Data: []byte("img")})
		require.NoError(t, err, name)
		assert.Equal(t, "image", fileType, name)
		assert.NotEmpty(t, mimeType, name)
	}
}

func TestMediaValidate_ImageTooLarge(t *testing.T) {
	svc := NewMediaService(nil)

	// 默认上限10MB
	_, _, err := svc.validate(&MediaUpload{
		FileName: "leaf.jpg",
		Data:     bytes.Repeat([]byte("x"), 10<<20+1),
	})
	assertAppErrorCode(t, err, apperrors.ErrCodeFileTooLarge)
}

func TestMediaValidate_PDFTooLarge(t *testing.T) {
	svc := NewMediaService(nil)

	// 默认上限5MB
	_, _, err := svc.validate(&MediaUpload{
		FileName: "soil_report.pdf",
		Data:     bytes.Repeat([]byte("x"), 5<<20+1),
	})
	assertAppErrorCode(t, err, apperrors.ErrCodeFileTooLarge)
}

func TestMediaValidate_UnsupportedFormat(t *testing.T) {
	svc := NewMediaService(nil)

	_, _, err := svc.validate(&MediaUpload{FileName: "report.docx", Data: []byte("doc")})
	assertAppErrorCode(t, err, apperrors.ErrCodeInvalidFileFormat)
}

func TestMediaValidate_PDF(t *testing.T) {
	svc := NewMediaService(nil)

	fileType, mimeType, err := svc.validate(&MediaUpload{FileName: "scheme.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, "pdf", fileType)
	assert.Equal(t, "application/pdf", mimeType)
}
