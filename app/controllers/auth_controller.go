package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/farmchat/backend-go/internal/auth"
	"github.com/farmchat/backend-go/internal/services"
)

// AuthController 用户注册与登录
type AuthController struct {
	BaseController
	userService *services.UserService
}

// NewAuthController 创建认证控制器
func NewAuthController() *AuthController {
	return &AuthController{
		userService: services.NewUserService(nil),
	}
}

// Register 注册新用户并签发token
func (c *AuthController) Register() {
	var req services.RegisterRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := c.userService.Register(&req)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    resp,
	})
}

// Login 校验凭证并签发token
func (c *AuthController) Login() {
	var req services.LoginRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := c.userService.Login(&req)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(resp)
}

// Refresh 使用仍然有效的token换发新token
func (c *AuthController) Refresh() {
	tokenString, err := auth.ExtractTokenFromHeader(c.Ctx.Input.Header("Authorization"))
	if err != nil {
		c.JSONError(http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	newToken, err := getJWTService().RefreshToken(tokenString)
	if err != nil {
		c.JSONError(http.StatusUnauthorized, "token is invalid or expired")
		return
	}

	c.JSONSuccess(map[string]string{"token": newToken})
}
