package models

import (
	"time"
)

// SurplusListing 农产品余量挂牌表
type SurplusListing struct {
	ID           string     `gorm:"primaryKey;column:id;size:64" json:"id"`
	UserID       uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	CropName     string     `gorm:"column:crop_name;size:100;not null" json:"crop_name"`
	Quantity     float64    `gorm:"not null" json:"quantity"`
	Unit         string     `gorm:"size:20;default:kg" json:"unit"`
	PricePerKg   float64    `gorm:"column:price_per_kg" json:"price_per_kg"`
	QualityGrade string     `gorm:"column:quality_grade;size:5;default:B" json:"quality_grade"` // A/B/C
	ReadyDate    *time.Time `gorm:"column:ready_date" json:"ready_date"`
	District     string     `gorm:"size:100" json:"district"`
	State        string     `gorm:"size:100" json:"state"`
	Description  string     `gorm:"type:text" json:"description"`
	ContactInfo  string     `gorm:"column:contact_info;size:255" json:"contact_info"`
	Status       string     `gorm:"size:20;default:active;index" json:"status"` // active/sold/withdrawn
	CreatedAt    time.Time  `gorm:"column:created_at;not null;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (SurplusListing) TableName() string {
	return "surplus_listings"
}
