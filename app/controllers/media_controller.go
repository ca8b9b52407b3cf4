package controllers

import (
	"io"
	"net/http"

	"github.com/farmchat/backend-go/internal/services"
)

// MediaController 图片/文档分析
type MediaController struct {
	BaseController
	mediaService *services.MediaService
}

// NewMediaController 创建媒体控制器
func NewMediaController() *MediaController {
	return &MediaController{
		mediaService: services.NewMediaService(nil),
	}
}

// Analyze 接收multipart上传并做AI分析
func (c *MediaController) Analyze() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	file, header, err := c.GetFile("file")
	if err != nil || file == nil {
		c.JSONError(http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSONError(http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	upload := &services.MediaUpload{
		UserID:   claims.UserID,
		FileName: header.Filename,
		Data:     data,
		Prompt:   c.GetString("prompt"),
		Language: c.GetString("language", claims.Language),
	}

	resp, err := c.mediaService.Analyze(c.Ctx.Request.Context(), upload)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(resp)
}
