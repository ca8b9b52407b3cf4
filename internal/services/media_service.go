package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/farmchat/backend-go/internal/cerebras"
	"github.com/farmchat/backend-go/internal/config"
	"github.com/farmchat/backend-go/internal/database"
	apperrors "github.com/farmchat/backend-go/internal/errors"
	"github.com/farmchat/backend-go/internal/logger"
	"github.com/farmchat/backend-go/internal/models"
	"github.com/farmchat/backend-go/internal/storage"
	"github.com/farmchat/backend-go/internal/vision"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/unidoc/unipdf/v3/extractor"
	pdfmodel "github.com/unidoc/unipdf/v3/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 图片扩展名 → MIME类型
var imageMimeTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
}

// MediaService 媒体分析服务
type MediaService struct {
	db      *gorm.DB
	metrics *MetricsService
	logger  *zap.Logger
}

// MediaUpload 上传内容
type MediaUpload struct {
	UserID   uint
	FileName string
	Data     []byte
	Prompt   string
	Language string
}

// MediaAnalysisResponse 分析结果
type MediaAnalysisResponse struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	Analysis string `json:"analysis"`
	Language string `json:"language"`
	FileURL  string `json:"file_url,omitempty"`
}

// NewMediaService 创建媒体服务
func NewMediaService(db *gorm.DB) *MediaService {
	if db == nil {
		db = database.DB
	}
	return &MediaService{
		db:      db,
		metrics: NewMetricsService(),
		logger:  logger.GetLogger(),
	}
}

// Analyze 校验并分析上传的图片或PDF。
// 校验失败在任何处理发生之前返回400。
func (s *MediaService) Analyze(ctx context.Context, upload *MediaUpload) (*MediaAnalysisResponse, error) {
	fileType, mimeType, err := s.validate(upload)
	if err != nil {
		return nil, err
	}

	var analysis string
	switch fileType {
	case "image":
		analysis, err = s.analyzeImage(ctx, upload, mimeType)
	case "pdf":
		analysis, err = s.analyzePDF(ctx, upload)
	}
	if err != nil {
		s.metrics.RecordMediaAnalysis(fileType, "failure")
		return nil, err
	}

	record := &models.MediaAnalysis{
		ID:        uuid.NewString(),
		UserID:    upload.UserID,
		FileName:  upload.FileName,
		FileType:  fileType,
		FileSize:  int64(len(upload.Data)),
		Prompt:    upload.Prompt,
		Analysis:  analysis,
		Language:  upload.Language,
		CreatedAt: time.Now(),
	}

	// 对象存储可选：未配置时只保留分析记录
	var fileURL string
	store := storage.GetStore()
	objectName := fmt.Sprintf("media/%d/%s%s", upload.UserID, record.ID, strings.ToLower(filepath.Ext(upload.FileName)))
	if store != nil {
		path, err := store.Upload(ctx, objectName, upload.Data, mimeType)
		if err != nil {
			s.logger.Warn("媒体文件上传对象存储失败", zap.Error(err))
		} else {
			record.StoragePath = path
			if url, err := store.PresignedURL(ctx, objectName, 15*time.Minute); err == nil {
				fileURL = url
			}
		}
	}

	if err := s.db.Create(record).Error; err != nil {
		if store != nil && record.StoragePath != "" {
			if rmErr := store.Remove(ctx, objectName); rmErr != nil {
				s.logger.Warn("清理已上传媒体文件失败", zap.Error(rmErr))
			}
		}
		return nil, fmt.Errorf("failed to persist media analysis: %w", err)
	}

	s.metrics.RecordMediaAnalysis(fileType, "success")
	s.logger.Info("Media analyzed",
		zap.String("id", record.ID),
		zap.String("file_type", fileType),
		zap.Uint("user_id", upload.UserID))

	return &MediaAnalysisResponse{
		ID:       record.ID,
		FileName: record.FileName,
		FileType: fileType,
		Analysis: analysis,
		Language: upload.Language,
		FileURL:  fileURL,
	}, nil
}

// validate 在任何处理之前校验类型与大小
func (s *MediaService) validate(upload *MediaUpload) (fileType, mimeType string, err error) {
	if len(upload.Data) == 0 {
		return "", "", apperrors.NewValidationError("uploaded file is empty")
	}

	cfg := config.AppConfig
	maxImage := int64(10 << 20)
	maxPDF := int64(5 << 20)
	if cfg != nil {
		if cfg.FileUpload.MaxImageSize > 0 {
			maxImage = cfg.FileUpload.MaxImageSize
		}
		if cfg.FileUpload.MaxPDFSize > 0 {
			maxPDF = cfg.FileUpload.MaxPDFSize
		}
	}

	ext := strings.ToLower(filepath.Ext(upload.FileName))
	if mime, ok := imageMimeTypes[ext]; ok {
		if int64(len(upload.Data)) > maxImage {
			return "", "", apperrors.NewFileTooLargeError(fmt.Sprintf("image exceeds %dMB limit", maxImage>>20))
		}
		return "image", mime, nil
	}
	if ext == ".pdf" {
		if int64(len(upload.Data)) > maxPDF {
			return "", "", apperrors.NewFileTooLargeError(fmt.Sprintf("PDF exceeds %dMB limit", maxPDF>>20))
		}
		return "pdf", "application/pdf", nil
	}

	return "", "", apperrors.NewInvalidFileFormatError(
		"unsupported file format, allowed: jpeg, jpg, png, webp, heic, pdf")
}

// analyzeImage 图片走视觉模型
func (s *MediaService) analyzeImage(ctx context.Context, upload *MediaUpload, mimeType string) (string, error) {
	client := vision.GetGlobalClient()
	if client == nil {
		return "", apperrors.NewExternalServiceError("vision", fmt.Errorf("vision service not configured"))
	}

	prompt := upload.Prompt
	if prompt == "" {
		prompt = "You are an agricultural expert. Analyze this image for crop health, pests, diseases or soil condition. Give practical advice for the farmer."
	}

	analysis, err := client.AnalyzeImage(ctx, upload.Data, mimeType, prompt)
	if err != nil {
		return "", apperrors.NewExternalServiceError("vision", err)
	}
	return analysis, nil
}

// analyzePDF 提取PDF文本后交给LLM分析
func (s *MediaService) analyzePDF(ctx context.Context, upload *MediaUpload) (string, error) {
	text, err := extractPDFText(upload.Data)
	if err != nil {
		return "", apperrors.NewValidationError("failed to read PDF: " + err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewValidationError("PDF contains no extractable text")
	}

	// 控制提示词长度
	if len(text) > 8000 {
		text = text[:8000]
	}

	llm := cerebras.GetGlobalService()
	if llm == nil {
		return "", apperrors.NewLLMUnavailableError(fmt.Errorf("cerebras service not configured"))
	}

	prompt := upload.Prompt
	if prompt == "" {
		prompt = "Summarize this agricultural document and extract any recommendations relevant to a farmer."
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPersona},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("%s\n\nDocument content:\n%s", prompt, text)},
	}

	completion, err := llm.ChatCompletion(ctx, messages)
	if err != nil {
		return "", apperrors.NewLLMUnavailableError(err)
	}
	return completion.Content, nil
}

// extractPDFText 逐页提取PDF文本
func extractPDFText(data []byte) (string, error) {
	reader, err := pdfmodel.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			continue
		}
		text, err := ex.ExtractText()
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
