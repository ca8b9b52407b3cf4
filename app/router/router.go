package router

import (
	"github.com/beego/beego/v2/server/web"

	"github.com/farmchat/backend-go/app/controllers"
	"github.com/farmchat/backend-go/app/middleware"
)

// Init registers all routes. Must be called after config is loaded.
func Init() {
	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", &controllers.HealthController{}, "get:Health")
	web.Router("/api/health", &controllers.HealthController{}, "get:Health")
	web.Router("/metrics", &controllers.MetricsController{}, "get:Metrics")

	web.InsertFilter("/*", web.BeforeRouter, middleware.CORSMiddleware)
	web.InsertFilter("/*", web.BeforeRouter, middleware.AccessLogBefore)
	web.InsertFilter("/*", web.FinishRouter, middleware.AccessLogAfter, web.WithReturnOnOutput(false))

	// 认证
	authController := controllers.NewAuthController()
	web.Router("/api/auth/register", authController, "post:Register")
	web.Router("/api/auth/login", authController, "post:Login")
	web.Router("/api/auth/refresh", authController, "post:Refresh")

	// 对话
	chatController := controllers.NewChatController()
	web.Router("/api/chat", chatController, "post:SendMessage")

	// 会话管理
	conversationController := controllers.NewConversationController()
	web.Router("/api/chat/history", conversationController, "get:ChatHistory")
	web.Router("/api/conversations", conversationController, "get:List")
	web.Router("/api/conversations/:id", conversationController, "get:History;delete:Delete")

	// 工作流
	workflowController := controllers.NewWorkflowController()
	web.Router("/api/workflows/available", workflowController, "get:Available")
	web.Router("/api/workflows/start", workflowController, "post:Start")
	web.Router("/api/workflows/execute-step", workflowController, "post:ExecuteStep")
	web.Router("/api/workflows/user", workflowController, "get:ListMine")

	// 语音
	voiceController := controllers.NewVoiceController()
	web.Router("/api/voice/transcribe", voiceController, "post:Transcribe")
	web.Router("/api/voice/capabilities", voiceController, "get:Capabilities")

	// 媒体分析
	mediaController := controllers.NewMediaController()
	web.Router("/api/media/upload", mediaController, "post:Analyze")

	// 农产品交易
	// 注意：具体路由必须在参数路由之前，否则/buyers会被:id匹配
	marketplaceController := controllers.NewMarketplaceController()
	web.Router("/api/marketplace/listings", marketplaceController, "get:ListMine;post:CreateListing")
	web.Router("/api/marketplace/buyers", marketplaceController, "get:Buyers")
	web.Router("/api/marketplace/match", marketplaceController, "get:MatchBuyers")
	web.Router("/api/marketplace/listings/:id", marketplaceController, "put:UpdateListing;delete:DeleteListing")

	// 政府补贴
	schemeController := controllers.NewSchemeController()
	web.Router("/api/schemes", schemeController, "get:List")
	web.Router("/api/schemes/match", schemeController, "post:Match")
	web.Router("/api/schemes/apply", schemeController, "post:Apply")
	web.Router("/api/schemes/applications", schemeController, "get:Applications")

	// 农场档案
	profileController := controllers.NewProfileController()
	web.Router("/api/profile", profileController, "get:Get;put:Update")
}
