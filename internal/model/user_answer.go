package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserAnswer 记录用户对某道题的选择，(user_id, question_id) 唯一
// 不使用软删除：取消作答是真正的删除，否则唯一索引会挡住重新作答
// swagger:model UserAnswer
type UserAnswer struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_user_question;not null" json:"userId"`
	QuestionID string    `gorm:"type:varchar(36);uniqueIndex:idx_user_question;not null" json:"questionId"`
	AnswerID   *string   `gorm:"type:varchar(36)" json:"answerId"`
	IsDoubtful bool      `gorm:"default:false" json:"isDoubtful"`
	AnsweredAt time.Time `gorm:"index" json:"answeredAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Answer   *Answer   `gorm:"foreignKey:AnswerID" json:"answer,omitempty"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}

func (ua *UserAnswer) BeforeCreate(tx *gorm.DB) (err error) {
	if ua.ID == "" {
		ua.ID = uuid.New().String()
	}
	return
}
