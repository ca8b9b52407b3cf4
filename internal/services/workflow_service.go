package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/farmchat/backend-go/internal/database"
	apperrors "github.com/farmchat/backend-go/internal/errors"
	"github.com/farmchat/backend-go/internal/logger"
	"github.com/farmchat/backend-go/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WorkflowService 工作流引擎服务
type WorkflowService struct {
	db      *gorm.DB
	invoker *ToolInvoker
	metrics *MetricsService
	logger  *zap.Logger
}

// StepState 实例中的步骤状态
type StepState struct {
	StepID        string                 `json:"step_id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	ToolsRequired []string               `json:"tools_required"`
	EstimatedTime int                    `json:"estimated_time"`
	Prerequisites []string               `json:"prerequisites,omitempty"`
	Optional      bool                   `json:"optional"`
	Status        string                 `json:"status"`
	ResultData    map[string]interface{} `json:"result_data,omitempty"`
	CompletedAt   *time.Time             `json:"completed_at,omitempty"`
}

// StartWorkflowRequest 启动工作流请求
type StartWorkflowRequest struct {
	WorkflowID  string                 `json:"workflow_id" validate:"required"`
	InitialData map[string]interface{} `json:"initial_data"`
}

// ExecuteStepRequest 执行步骤请求
type ExecuteStepRequest struct {
	InstanceID string                 `json:"instance_id" validate:"required"`
	StepID     string                 `json:"step_id" validate:"required"`
	StepData   map[string]interface{} `json:"step_data"`
	Skip       bool                   `json:"skip"`
}

// WorkflowInstanceResponse 实例响应
type WorkflowInstanceResponse struct {
	InstanceID   string      `json:"instance_id"`
	WorkflowType string      `json:"workflow_type"`
	Title        string      `json:"title"`
	Status       string      `json:"status"`
	Progress     int         `json:"progress"`
	Steps        []StepState `json:"steps"`
	NextStep     *StepState  `json:"next_step,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewWorkflowService 创建工作流服务
func NewWorkflowService(db *gorm.DB) *WorkflowService {
	if db == nil {
		db = database.DB
	}
	return &WorkflowService{
		db:      db,
		invoker: NewDefaultToolInvoker(),
		metrics: NewMetricsService(),
		logger:  logger.GetLogger(),
	}
}

// GetAvailableWorkflows 返回静态工作流目录
func (s *WorkflowService) GetAvailableWorkflows() []*WorkflowDef {
	return AllWorkflowDefs()
}

// StartWorkflow 创建新实例，所有步骤初始为pending
func (s *WorkflowService) StartWorkflow(userID uint, req *StartWorkflowRequest) (*WorkflowInstanceResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	def, ok := GetWorkflowDef(req.WorkflowID)
	if !ok {
		return nil, apperrors.NewNotFoundError("workflow")
	}

	steps := make([]StepState, 0, len(def.Steps))
	for _, stepDef := range def.Steps {
		steps = append(steps, StepState{
			StepID:        stepDef.StepID,
			Title:         stepDef.Title,
			Description:   stepDef.Description,
			ToolsRequired: stepDef.ToolsRequired,
			EstimatedTime: stepDef.EstimatedTime,
			Prerequisites: stepDef.Prerequisites,
			Optional:      stepDef.Optional,
			Status:        models.StepStatusPending,
		})
	}

	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode steps: %w", err)
	}

	contextJSON := "{}"
	if req.InitialData != nil {
		if data, err := json.Marshal(req.InitialData); err == nil {
			contextJSON = string(data)
		}
	}

	instance := &models.WorkflowInstance{
		ID:           uuid.NewString(),
		UserID:       userID,
		WorkflowType: def.WorkflowID,
		Status:       models.WorkflowStatusPending,
		Progress:     0,
		Steps:        string(stepsJSON),
		Context:      contextJSON,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.db.Create(instance).Error; err != nil {
		return nil, fmt.Errorf("failed to create workflow instance: %w", err)
	}

	s.logger.Info("Workflow started",
		zap.String("instance_id", instance.ID),
		zap.String("workflow_type", def.WorkflowID),
		zap.Uint("user_id", userID))

	return s.toResponse(instance, def, steps), nil
}

// ExecuteStep 执行或跳过一个步骤。
// 状态在内存中完整计算后一次性落库，失败时不留半更新状态。
func (s *WorkflowService) ExecuteStep(ctx context.Context, userID uint, req *ExecuteStepRequest) (*WorkflowInstanceResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	var instance models.WorkflowInstance
	err := s.db.Where("id = ? AND user_id = ?", req.InstanceID, userID).First(&instance).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.NewNotFoundError("workflow instance")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow instance: %w", err)
	}

	def, ok := GetWorkflowDef(instance.WorkflowType)
	if !ok {
		return nil, apperrors.NewNotFoundError("workflow")
	}

	var steps []StepState
	if err := json.Unmarshal([]byte(instance.Steps), &steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}

	stepIndex := -1
	for i := range steps {
		if steps[i].StepID == req.StepID {
			stepIndex = i
			break
		}
	}
	if stepIndex < 0 {
		return nil, apperrors.NewNotFoundError("workflow step")
	}

	step := &steps[stepIndex]
	if step.Status == models.StepStatusCompleted || step.Status == models.StepStatusSkipped {
		s.metrics.RecordWorkflowStep(instance.WorkflowType, "invalid_state")
		return nil, apperrors.NewInvalidStateError(
			fmt.Sprintf("step '%s' has already been %s", step.StepID, step.Status))
	}

	// 前置步骤必须已完成或已跳过
	if missing := unmetPrerequisites(steps, step.Prerequisites); len(missing) > 0 {
		s.metrics.RecordWorkflowStep(instance.WorkflowType, "invalid_state")
		return nil, apperrors.NewInvalidStateError(
			fmt.Sprintf("prerequisites not met for step '%s': %s",
				step.StepID, strings.Join(missing, ", ")))
	}

	now := time.Now()
	if req.Skip {
		// 只有可选步骤允许跳过
		if !step.Optional {
			s.metrics.RecordWorkflowStep(instance.WorkflowType, "invalid_skip")
			return nil, apperrors.NewInvalidStateError(
				fmt.Sprintf("step '%s' is not optional and cannot be skipped", step.StepID))
		}
		step.Status = models.StepStatusSkipped
		step.CompletedAt = &now
	} else {
		// 工具失败容忍：部分结果照常记录
		if len(step.ToolsRequired) > 0 {
			params := map[string]interface{}{"workflow": instance.WorkflowType, "step": step.StepID}
			for k, v := range req.StepData {
				params[k] = v
			}
			toolResults := s.invoker.InvokeAll(ctx, step.ToolsRequired, params)

			resultData := make(map[string]interface{}, len(toolResults))
			for tool, data := range toolResults {
				var parsed interface{}
				if json.Unmarshal(data, &parsed) == nil {
					resultData[tool] = parsed
				}
			}
			step.ResultData = resultData
		}
		step.Status = models.StepStatusCompleted
		step.CompletedAt = &now
	}

	// 重算进度与实例状态
	done := 0
	for _, st := range steps {
		if st.Status == models.StepStatusCompleted || st.Status == models.StepStatusSkipped {
			done++
		}
	}
	progress := int(math.Round(100 * float64(done) / float64(len(steps))))

	status := models.WorkflowStatusInProgress
	var completedAt *time.Time
	if progress >= 100 {
		status = models.WorkflowStatusCompleted
		completedAt = &now
	}

	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode steps: %w", err)
	}

	updates := map[string]interface{}{
		"steps":        string(stepsJSON),
		"status":       status,
		"progress":     progress,
		"current_step": stepIndex,
		"updated_at":   now,
	}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}
	if err := s.db.Model(&instance).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to persist workflow state: %w", err)
	}

	instance.Steps = string(stepsJSON)
	instance.Status = status
	instance.Progress = progress

	result := "completed"
	if req.Skip {
		result = "skipped"
	}
	s.metrics.RecordWorkflowStep(instance.WorkflowType, result)
	s.logger.Info("Workflow step executed",
		zap.String("instance_id", instance.ID),
		zap.String("step_id", req.StepID),
		zap.String("result", result),
		zap.Int("progress", progress))

	return s.toResponse(&instance, def, steps), nil
}

// unmetPrerequisites 返回既未完成也未跳过的前置步骤
func unmetPrerequisites(steps []StepState, prereqs []string) []string {
	if len(prereqs) == 0 {
		return nil
	}
	satisfied := make(map[string]bool, len(steps))
	for _, st := range steps {
		if st.Status == models.StepStatusCompleted || st.Status == models.StepStatusSkipped {
			satisfied[st.StepID] = true
		}
	}
	var missing []string
	for _, p := range prereqs {
		if !satisfied[p] {
			missing = append(missing, p)
		}
	}
	return missing
}

// GetUserWorkflows 列出用户的工作流实例
func (s *WorkflowService) GetUserWorkflows(userID uint) ([]WorkflowInstanceResponse, error) {
	var instances []models.WorkflowInstance
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&instances).Error; err != nil {
		return nil, fmt.Errorf("failed to list workflow instances: %w", err)
	}

	responses := make([]WorkflowInstanceResponse, 0, len(instances))
	for i := range instances {
		def, ok := GetWorkflowDef(instances[i].WorkflowType)
		if !ok {
			continue
		}
		var steps []StepState
		if err := json.Unmarshal([]byte(instances[i].Steps), &steps); err != nil {
			s.logger.Warn("跳过无法解析的工作流实例",
				zap.String("instance_id", instances[i].ID),
				zap.Error(err))
			continue
		}
		responses = append(responses, *s.toResponse(&instances[i], def, steps))
	}
	return responses, nil
}

// toResponse 组装实例响应，next_step为第一个未完成步骤
func (s *WorkflowService) toResponse(instance *models.WorkflowInstance, def *WorkflowDef, steps []StepState) *WorkflowInstanceResponse {
	var nextStep *StepState
	for i := range steps {
		if steps[i].Status == models.StepStatusPending {
			nextStep = &steps[i]
			break
		}
	}

	return &WorkflowInstanceResponse{
		InstanceID:   instance.ID,
		WorkflowType: instance.WorkflowType,
		Title:        def.Title,
		Status:       instance.Status,
		Progress:     instance.Progress,
		Steps:        steps,
		NextStep:     nextStep,
		CreatedAt:    instance.CreatedAt,
	}
}
