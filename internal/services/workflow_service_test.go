package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "github.com/farmchat/backend-go/internal/errors"
	"github.com/farmchat/backend-go/internal/models"
)

func freshSteps(t *testing.T, workflowID string) []StepState {
	t.Helper()
	def, ok := GetWorkflowDef(workflowID)
	require.True(t, ok, "unknown workflow %s", workflowID)

	steps := make([]StepState, 0, len(def.Steps))
	for _, sd := range def.Steps {
		steps = append(steps, StepState{
			StepID:        sd.StepID,
			Title:         sd.Title,
			Description:   sd.Description,
			ToolsRequired: sd.ToolsRequired,
			EstimatedTime: sd.EstimatedTime,
			Prerequisites: sd.Prerequisites,
			Optional:      sd.Optional,
			Status:        models.StepStatusPending,
		})
	}
	return steps
}

func markCompleted(steps []StepState, ids ...string) []StepState {
	now := time.Now()
	for _, id := range ids {
		for i := range steps {
			if steps[i].StepID == id {
				steps[i].Status = models.StepStatusCompleted
				steps[i].CompletedAt = &now
			}
		}
	}
	return steps
}

func expectInstanceQuery(t *testing.T, mock sqlmock.Sqlmock, workflowType string, progress int, steps []StepState) {
	t.Helper()
	data, err := json.Marshal(steps)
	require.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "workflow_instances" WHERE id = .+ AND user_id = .+`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "workflow_type", "status", "current_step",
			"progress", "steps", "context", "created_at", "updated_at",
		}).AddRow("wf-1", 7, workflowType, models.WorkflowStatusInProgress, 0,
			progress, string(data), "{}", now, now))
}

func expectInstanceUpdate(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "workflow_instances" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestStartWorkflow(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewWorkflowService(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "workflow_instances"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := svc.StartWorkflow(7, &StartWorkflowRequest{WorkflowID: "crop_selection"})
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusPending, resp.Status)
	assert.Equal(t, 0, resp.Progress)
	require.Len(t, resp.Steps, 5)
	require.NotNil(t, resp.NextStep)
	assert.Equal(t, "soil_analysis", resp.NextStep.StepID)
	// 前置依赖随实例快照保存
	assert.Equal(t, []string{"soil_analysis", "weather_check", "market_research"},
		resp.Steps[3].Prerequisites)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartWorkflow_UnknownWorkflow(t *testing.T) {
	db, _ := newMockGorm(t)
	svc := NewWorkflowService(db)

	_, err := svc.StartWorkflow(7, &StartWorkflowRequest{WorkflowID: "moon_farming"})
	assertAppErrorCode(t, err, apperrors.ErrCodeResourceNotFound)
}

func TestExecuteStep_PrerequisitesNotMet(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewWorkflowService(db)

	expectInstanceQuery(t, mock, "crop_selection", 0, freshSteps(t, "crop_selection"))

	_, err := svc.ExecuteStep(context.Background(), 7, &ExecuteStepRequest{
		InstanceID: "wf-1",
		StepID:     "crop_recommendation",
	})
	assertAppErrorCode(t, err, apperrors.ErrCodeInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteStep_CompletedStepRejected(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewWorkflowService(db)

	steps := markCompleted(freshSteps(t, "crop_selection"), "soil_analysis")
	expectInstanceQuery(t, mock, "crop_selection", 20, steps)

	_, err := svc.ExecuteStep(context.Background(), 7, &ExecuteStepRequest{
		InstanceID: "wf-1",
		StepID:     "soil_analysis",
	})
	assertAppErrorCode(t, err, apperrors.ErrCodeInvalidState)
	// 没有UPDATE期望：被拒绝的执行不落库，进度保持不变
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteStep_ProgressRounding(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewWorkflowService(db)

	expectInstanceQuery(t, mock, "pest_management", 0, freshSteps(t, "pest_management"))
	expectInstanceUpdate(mock)

	resp, err := svc.ExecuteStep(context.Background(), 7, &ExecuteStepRequest{
		InstanceID: "wf-1",
		StepID:     "pest_identification",
	})
	require.NoError(t, err)
	// 1/6完成，四舍五入到17
	assert.Equal(t, 17, resp.Progress)
	assert.Equal(t, models.WorkflowStatusInProgress, resp.Status)
	require.NotNil(t, resp.NextStep)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteStep_LastStepCompletesWorkflow(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewWorkflowService(db)

	steps := markCompleted(freshSteps(t, "crop_selection"),
		"soil_analysis", "weather_check", "market_research", "crop_recommendation")
	expectInstanceQuery(t, mock, "crop_selection", 80, steps)
	expectInstanceUpdate(mock)

	resp, err := svc.ExecuteStep(context.Background(), 7, &ExecuteStepRequest{
		InstanceID: "wf-1",
		StepID:     "financial_planning",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Progress)
	assert.Equal(t, models.WorkflowStatusCompleted, resp.Status)
	assert.Nil(t, resp.NextStep)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteStep_SkipRequiresOptional(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewWorkflowService(db)

	expectInstanceQuery(t, mock, "crop_selection", 0, freshSteps(t, "crop_selection"))

	_, err := svc.ExecuteStep(context.Background(), 7, &ExecuteStepRequest{
		InstanceID: "wf-1",
		StepID:     "soil_analysis",
		Skip:       true,
	})
	assertAppErrorCode(t, err, apperrors.ErrCodeInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteStep_SkipOptionalStep(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewWorkflowService(db)

	steps := markCompleted(freshSteps(t, "irrigation_planning"),
		"soil_moisture_check", "weather_forecast", "crop_water_needs", "irrigation_schedule")
	expectInstanceQuery(t, mock, "irrigation_planning", 80, steps)
	expectInstanceUpdate(mock)

	resp, err := svc.ExecuteStep(context.Background(), 7, &ExecuteStepRequest{
		InstanceID: "wf-1",
		StepID:     "water_conservation",
		Skip:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Progress)
	assert.Equal(t, models.WorkflowStatusCompleted, resp.Status)
	assert.Equal(t, models.StepStatusSkipped, resp.Steps[4].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteStep_UnknownInstance(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := NewWorkflowService(db)

	mock.ExpectQuery(`SELECT \* FROM "workflow_instances" WHERE id = .+ AND user_id = .+`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := svc.ExecuteStep(context.Background(), 7, &ExecuteStepRequest{
		InstanceID: "wf-missing",
		StepID:     "soil_analysis",
	})
	assertAppErrorCode(t, err, apperrors.ErrCodeResourceNotFound)
}
