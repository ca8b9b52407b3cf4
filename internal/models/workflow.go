package models

import (
	"time"
)

// 工作流状态常量
const (
	WorkflowStatusPending    = "pending"
	WorkflowStatusInProgress = "in_progress"
	WorkflowStatusCompleted  = "completed"
)

// 步骤状态常量
const (
	StepStatusPending   = "pending"
	StepStatusCompleted = "completed"
	StepStatusSkipped   = "skipped"
)

// WorkflowInstance 工作流实例表
type WorkflowInstance struct {
	ID           string     `gorm:"primaryKey;column:id;size:64" json:"id"`
	UserID       uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	WorkflowType string     `gorm:"column:workflow_type;size:50;not null" json:"workflow_type"`
	Status       string     `gorm:"size:20;default:pending;not null;index" json:"status"`
	CurrentStep  int        `gorm:"column:current_step;default:0" json:"current_step"`
	Progress     int        `gorm:"default:0" json:"progress"`
	Steps        string     `gorm:"type:jsonb;not null" json:"steps"` // 步骤状态快照
	Context      string     `gorm:"type:jsonb" json:"context"`        // 用户提交的步骤数据
	CreatedAt    time.Time  `gorm:"column:created_at;not null;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WorkflowInstance) TableName() string {
	return "workflow_instances"
}
