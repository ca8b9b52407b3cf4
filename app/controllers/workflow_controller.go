package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/farmchat/backend-go/internal/services"
)

// WorkflowController 多步骤农事规划工作流
type WorkflowController struct {
	BaseController
	workflowService *services.WorkflowService
}

// NewWorkflowController 创建工作流控制器
func NewWorkflowController() *WorkflowController {
	return &WorkflowController{
		workflowService: services.NewWorkflowService(nil),
	}
}

// Available 列出可用的工作流模板
func (c *WorkflowController) Available() {
	if _, ok := c.requireAuth(); !ok {
		return
	}

	defs := c.workflowService.GetAvailableWorkflows()
	c.JSONSuccess(map[string]interface{}{
		"workflows": defs,
	})
}

// Start 启动一个工作流实例
func (c *WorkflowController) Start() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	var req services.StartWorkflowRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := c.workflowService.StartWorkflow(claims.UserID, &req)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    resp,
	})
}

// ExecuteStep 执行或跳过一个步骤
func (c *WorkflowController) ExecuteStep() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	var req services.ExecuteStepRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if req.InstanceID == "" {
		req.InstanceID = c.Ctx.Input.Param(":id")
	}

	resp, err := c.workflowService.ExecuteStep(c.Ctx.Request.Context(), claims.UserID, &req)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(resp)
}

// ListMine 列出当前用户的工作流实例
func (c *WorkflowController) ListMine() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	instances, err := c.workflowService.GetUserWorkflows(claims.UserID)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"workflows": instances,
		"total":     len(instances),
	})
}
