package model

// QuestionLevel 题目/参赛者的学段（SD=小学, SMP=初中）
type QuestionLevel string

const (
	LevelSD  QuestionLevel = "SD"
	LevelSMP QuestionLevel = "SMP"
)

// ContentType 题干或选项的内容形式
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
)

// Question 表示一道 CBT 考试题目，固定携带 4 个选项
// swagger:model Question
type Question struct {
	UUIDBase
	Level        QuestionLevel `gorm:"size:10;index;not null" json:"level"`
	Type         ContentType   `gorm:"size:10;not null" json:"type"`
	QuestionText string        `gorm:"type:text" json:"questionText"`
	QuestionImg  string        `gorm:"size:255" json:"questionImg"`
	Answers      []Answer      `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// ValidLevel reports whether lv belongs to the closed level set.
func ValidLevel(lv QuestionLevel) bool {
	return lv == LevelSD || lv == LevelSMP
}
