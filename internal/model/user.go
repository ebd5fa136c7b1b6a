package model

import (
	"time"
)

// swagger:model User
type User struct {
	UUIDBase
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Language  string    `gorm:"size:20;default:'English'" json:"language"` // 课程生成的默认语言
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
