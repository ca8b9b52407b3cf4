package models

import (
	"time"
)

// SchemeApplication 补贴申请记录表
type SchemeApplication struct {
	ID         string     `gorm:"primaryKey;column:id;size:64" json:"id"`
	UserID     uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	SchemeID   string     `gorm:"column:scheme_id;size:50;not null" json:"scheme_id"`
	SchemeName string     `gorm:"column:scheme_name;size:255" json:"scheme_name"`
	Status     string     `gorm:"size:20;default:submitted;index" json:"status"` // submitted/under_review/approved/rejected
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
	ReviewedAt *time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (SchemeApplication) TableName() string {
	return "scheme_applications"
}
