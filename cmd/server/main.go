package main

import (
	"log"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"go.uber.org/zap"

	"github.com/farmchat/backend-go/app/bootstrap"
	"github.com/farmchat/backend-go/app/router"
	"github.com/farmchat/backend-go/internal/config"
	"github.com/farmchat/backend-go/internal/logger"
)

func main() {
	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()
	bootstrap.SetGlobalApp(app)

	router.Init()

	web.BConfig.AppName = "FarmChat Advisory API"
	web.BConfig.CopyRequestBody = true
	web.BConfig.MaxMemory = 1 << 26 // 64MB，图片/PDF上传
	if p, err := strconv.Atoi(config.AppConfig.Server.Port); err == nil {
		web.BConfig.Listen.HTTPPort = p
	}

	logger.Info("🚀 Starting FarmChat Advisory API", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
