package models

import (
	"time"
)

// MediaAnalysis 媒体分析记录表
type MediaAnalysis struct {
	ID          string    `gorm:"primaryKey;column:id;size:64" json:"id"`
	UserID      uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	FileName    string    `gorm:"column:file_name;size:255" json:"file_name"`
	FileType    string    `gorm:"column:file_type;size:20;not null" json:"file_type"` // image/pdf
	FileSize    int64     `gorm:"column:file_size" json:"file_size"`
	StoragePath string    `gorm:"column:storage_path;size:512" json:"storage_path"`
	Prompt      string    `gorm:"type:text" json:"prompt"`
	Analysis    string    `gorm:"type:text" json:"analysis"`
	Language    string    `gorm:"size:10" json:"language"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (MediaAnalysis) TableName() string {
	return "media_analyses"
}
