package model

// Answer 题目的一个选项，每题恰好有一个 is_correct=true
// swagger:model Answer
type Answer struct {
	UUIDBase
	QuestionID string      `gorm:"type:varchar(36);index;not null" json:"questionId"`
	Type       ContentType `gorm:"size:10;not null" json:"type"`
	AnswerText string      `gorm:"type:text" json:"answerText"`
	AnswerImg  string      `gorm:"size:255" json:"answerImg"`
	IsCorrect  bool        `gorm:"default:false" json:"isCorrect"`
}

func (Answer) TableName() string {
	return "answers"
}
