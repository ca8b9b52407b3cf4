package models

import (
	"time"
)

// User 用户表
type User struct {
	ID           uint      `gorm:"primaryKey;column:id" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Name         string    `gorm:"size:100" json:"name"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Language     string    `gorm:"size:10;default:en" json:"language"` // 首选语言代码
	District     string    `gorm:"size:100" json:"district"`
	State        string    `gorm:"size:100" json:"state"`
	IsActive     bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
