package model

type LessonStatus string

const (
	LessonGenerating LessonStatus = "generating"
	LessonDraft      LessonStatus = "draft"
	LessonFailed     LessonStatus = "failed"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ValidDifficulty 校验难度枚举
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// swagger:model Lesson
type Lesson struct {
	UUIDBase
	UserID      string       `gorm:"type:varchar(36);index;not null" json:"userId"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Topic       string       `gorm:"size:255;not null" json:"topic"`
	Difficulty  Difficulty   `gorm:"type:varchar(20);not null" json:"difficulty"`
	Language    string       `gorm:"size:20;not null;default:'English'" json:"language"`
	Status      LessonStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ErrorReason string       `gorm:"size:500" json:"errorReason,omitempty"` // 生成失败时的展示原因
	User        *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	Sections []LessonSection `gorm:"foreignKey:LessonID" json:"sections,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}
