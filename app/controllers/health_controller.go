package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/farmchat/backend-go/app/bootstrap"
	"github.com/farmchat/backend-go/internal/cerebras"
	"github.com/farmchat/backend-go/internal/database"
	"github.com/farmchat/backend-go/internal/deepgram"
	apperrors "github.com/farmchat/backend-go/internal/errors"
	"github.com/farmchat/backend-go/internal/mcp"
	"github.com/farmchat/backend-go/internal/services"
	"github.com/farmchat/backend-go/internal/vision"
)

// RootController 根控制器
type RootController struct {
	BaseController
}

func (c *RootController) Index() {
	c.JSONSuccess(map[string]string{"message": "FarmChat Advisory API"})
}

// HealthController 健康检查控制器
type HealthController struct {
	BaseController
}

// Health 聚合各依赖的健康状态：全部OK返回healthy，否则degraded
func (c *HealthController) Health() {
	ctx, cancel := context.WithTimeout(c.Ctx.Request.Context(), 5*time.Second)
	defer cancel()

	components := map[string]string{}
	healthy := true

	if database.DB != nil {
		if sqlDB, err := database.DB.DB(); err == nil && sqlDB.PingContext(ctx) == nil {
			components["database"] = "up"
		} else {
			components["database"] = "down"
			healthy = false
		}
	} else {
		components["database"] = "down"
		healthy = false
	}

	if database.RedisClient != nil && database.RedisClient.Ping(ctx).Err() == nil {
		components["redis"] = "up"
	} else {
		components["redis"] = "down"
		healthy = false
	}

	if mcp.IsGlobalClientReady() && mcp.GetGlobalClient().HealthCheck(ctx) == nil {
		components["mcp_gateway"] = "up"
	} else {
		components["mcp_gateway"] = "down"
		healthy = false
	}

	if cerebras.IsGlobalServiceReady() {
		components["llm"] = "configured"
	} else {
		components["llm"] = "unconfigured"
		healthy = false
	}

	// 语音与视觉为可选能力，不影响整体状态
	if deepgram.IsGlobalClientReady() {
		components["voice"] = "configured"
	} else {
		components["voice"] = "unconfigured"
	}

	if vision.IsGlobalClientReady() {
		components["vision"] = "configured"
	} else {
		components["vision"] = "unconfigured"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	payload := map[string]interface{}{
		"status":     status,
		"components": components,
		"breakers":   services.GetAllCircuitBreakers(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	// 后台探测器的最近一次结果
	if checker := bootstrap.GetApp().HealthChecker(); checker != nil {
		payload["background_check"] = checker.GetHealthResult()
	}

	if stats := apperrors.GetErrorMonitor().GetStats(); len(stats) > 0 {
		payload["errors"] = stats
	}

	c.JSON(httpStatus, payload)
}
