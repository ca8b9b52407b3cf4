package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/farmchat/backend-go/internal/services"
)

// ProfileController 农场档案
type ProfileController struct {
	BaseController
	profileService *services.FarmProfileService
}

// NewProfileController 创建档案控制器
func NewProfileController() *ProfileController {
	return &ProfileController{
		profileService: services.NewFarmProfileService(nil),
	}
}

// Get 获取当前用户的农场档案（不存在时返回空档案）
func (c *ProfileController) Get() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	profile, err := c.profileService.GetOrCreate(claims.UserID)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(profile)
}

// Update 更新农场档案
func (c *ProfileController) Update() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := c.profileService.Update(claims.UserID, &req)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(profile)
}
