package models

import (
	"time"
)

// FarmProfile 农场档案表
type FarmProfile struct {
	ID             uint      `gorm:"primaryKey;column:id" json:"id"`
	UserID         uint      `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	FarmSize       float64   `gorm:"column:farm_size" json:"farm_size"` // 亩数（英亩）
	SoilType       string    `gorm:"column:soil_type;size:50" json:"soil_type"`
	IrrigationType string    `gorm:"column:irrigation_type;size:50" json:"irrigation_type"`
	Crops          string    `gorm:"type:jsonb" json:"crops"` // 当前种植作物列表
	District       string    `gorm:"size:100" json:"district"`
	State          string    `gorm:"size:100" json:"state"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (FarmProfile) TableName() string {
	return "farm_profiles"
}
