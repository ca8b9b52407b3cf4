package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/farmchat/backend-go/internal/services"
)

// SchemeController 政府补贴方案匹配与申请
type SchemeController struct {
	BaseController
	schemeService *services.SchemeService
}

// NewSchemeController 创建补贴控制器
func NewSchemeController() *SchemeController {
	return &SchemeController{
		schemeService: services.NewSchemeService(nil),
	}
}

// List 返回全部补贴方案目录
func (c *SchemeController) List() {
	if _, ok := c.requireAuth(); !ok {
		return
	}

	schemes := c.schemeService.GetAllSchemes()
	c.JSONSuccess(map[string]interface{}{
		"schemes": schemes,
		"total":   len(schemes),
	})
}

// Match 按农户条件匹配可申请的方案
func (c *SchemeController) Match() {
	if _, ok := c.requireAuth(); !ok {
		return
	}

	var details services.FarmerDetails
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &details); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}

	matches := c.schemeService.FindMatchingSchemes(&details)
	c.JSONSuccess(map[string]interface{}{
		"schemes": matches,
		"total":   len(matches),
	})
}

// Apply 提交补贴申请
func (c *SchemeController) Apply() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	var req services.ApplyRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SchemeID == "" {
		req.SchemeID = c.Ctx.Input.Param(":id")
	}

	application, err := c.schemeService.Apply(claims.UserID, &req)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    application,
	})
}

// Applications 列出当前用户的申请记录
func (c *SchemeController) Applications() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	applications, err := c.schemeService.GetUserApplications(claims.UserID)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"applications": applications,
		"total":        len(applications),
	})
}
