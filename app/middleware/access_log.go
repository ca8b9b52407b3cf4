package middleware

import (
	"strings"
	"time"

	"github.com/beego/beego/v2/server/web/context"
	"go.uber.org/zap"

	"github.com/farmchat/backend-go/internal/logger"
)

const accessLogStartKey = "access_log_start"

// AccessLogBefore 记录请求开始时间
func AccessLogBefore(ctx *context.Context) {
	ctx.Input.SetData(accessLogStartKey, time.Now())
}

// AccessLogAfter 输出结构化访问日志
func AccessLogAfter(ctx *context.Context) {
	// 指标端点刷新频繁，不记日志
	if strings.HasPrefix(ctx.Input.URL(), "/metrics") {
		return
	}

	elapsed := time.Duration(0)
	if start, ok := ctx.Input.GetData(accessLogStartKey).(time.Time); ok {
		elapsed = time.Since(start)
	}

	logger.Info("http request",
		zap.String("method", ctx.Input.Method()),
		zap.String("path", ctx.Input.URL()),
		zap.Int("status", ctx.ResponseWriter.Status),
		zap.Duration("elapsed", elapsed),
		zap.String("ip", ctx.Input.IP()))
}
