package controllers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/beego/beego/v2/server/web"
	"go.uber.org/zap"

	"github.com/farmchat/backend-go/internal/auth"
	"github.com/farmchat/backend-go/internal/config"
	apperrors "github.com/farmchat/backend-go/internal/errors"
	"github.com/farmchat/backend-go/internal/logger"
)

// BaseController provides helpers for consistent JSON responses.
type BaseController struct {
	web.Controller
}

var (
	jwtService     *auth.JWTService
	jwtServiceOnce sync.Once
)

// getJWTService 惰性初始化包级JWT服务（路由注册早于控制器实例化）
func getJWTService() *auth.JWTService {
	jwtServiceOnce.Do(func() {
		cfg := config.GetAppConfig()
		jwtService = auth.NewJWTService(
			cfg.JWT.Secret,
			cfg.JWT.Issuer,
			time.Duration(cfg.JWT.ExpiresIn)*time.Hour,
		)
	})
	return jwtService
}

// JSON writes a JSON response with the supplied HTTP status code.
func (c *BaseController) JSON(status int, payload interface{}) {
	c.Ctx.Output.SetStatus(status)
	c.Data["json"] = payload
	c.ServeJSON()
}

// JSONSuccess writes a standard success envelope.
func (c *BaseController) JSONSuccess(data interface{}) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// JSONError writes an error envelope with message.
func (c *BaseController) JSONError(status int, message string) {
	c.JSON(status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// requireAuth 校验Authorization header中的JWT，失败时写出401响应
func (c *BaseController) requireAuth() (*auth.JWTClaims, bool) {
	authHeader := c.Ctx.Input.Header("Authorization")
	token, err := auth.ExtractTokenFromHeader(authHeader)
	if err != nil {
		c.JSONError(http.StatusUnauthorized, "missing or malformed Authorization header")
		return nil, false
	}

	claims, err := getJWTService().ValidateToken(token)
	if err != nil {
		logger.Warn("JWT校验失败",
			zap.String("path", c.Ctx.Request.RequestURI),
			zap.String("ip", c.getClientIP()),
			zap.Error(err))
		c.JSONError(http.StatusUnauthorized, "invalid or expired token")
		return nil, false
	}

	return claims, true
}

// handleServiceError 将服务层错误映射为统一的错误响应
func (c *BaseController) handleServiceError(err error) {
	appErr := apperrors.GetAppError(err)
	apperrors.GetErrorMonitor().RecordError(appErr, c.Ctx.Request.URL.Path)
	if appErr.HTTPCode >= http.StatusInternalServerError {
		logger.Error("请求处理失败",
			zap.String("path", c.Ctx.Request.RequestURI),
			zap.String("code", string(appErr.Code)),
			zap.Error(err))
	}
	c.JSONError(appErr.HTTPCode, appErr.Message)
}

// getClientIP 获取客户端真实IP地址
func (c *BaseController) getClientIP() string {
	xForwardedFor := c.Ctx.Input.Header("X-Forwarded-For")
	if xForwardedFor != "" {
		// X-Forwarded-For可能包含多个IP，取第一个
		ips := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	xRealIP := c.Ctx.Input.Header("X-Real-IP")
	if xRealIP != "" {
		return xRealIP
	}

	return c.Ctx.Input.IP()
}
