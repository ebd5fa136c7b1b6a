package model

import (
	"time"

	"gorm.io/gorm"
)

// AIEdit 记录一次 AI 辅助改写，作为小节的只追加审计记录
type AIEdit struct {
	ID            string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SectionID     string         `gorm:"type:varchar(36);index;not null" json:"sectionId"`
	SelectedText  string         `gorm:"type:text;not null" json:"selectedText"`  // 用户选中的原文片段
	GeneratedText string         `gorm:"type:longtext;not null" json:"generatedText"` // AI 返回的整段替换内容
	Action        string         `gorm:"type:text;not null" json:"action"`        // 用户的改写指令
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
	Section       *LessonSection `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (e *AIEdit) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = GenerateUUID()
	}
	return
}

func (AIEdit) TableName() string {
	return "ai_edits"
}
