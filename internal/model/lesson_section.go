package model

// swagger:model LessonSection
type LessonSection struct {
	UUIDBase
	LessonID string  `gorm:"type:varchar(36);index;not null;uniqueIndex:idx_lesson_order" json:"lessonId"`
	Title    string  `gorm:"size:255;not null" json:"title"`
	Content  string  `gorm:"type:longtext;not null" json:"content"` // Markdown 正文
	Order    int     `gorm:"column:sort_order;not null;uniqueIndex:idx_lesson_order" json:"order"`
	Lesson   *Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
}

func (LessonSection) TableName() string {
	return "lesson_sections"
}
