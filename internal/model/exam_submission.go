package model

import "time"

// ExamSubmission 用户交卷记录，每用户每自然日最多一条
// submission_date 冗余存储 submitted_at 的日期部分，配合唯一索引在存储层
// 关闭 check-then-insert 竞态
// swagger:model ExamSubmission
type ExamSubmission struct {
	BaseModel
	UserID            uint      `gorm:"uniqueIndex:idx_user_submission_day;not null" json:"userId"`
	DurationInMinutes int       `gorm:"not null" json:"durationInMinutes"`
	TotalViolations   int       `gorm:"default:0" json:"totalViolations"`
	IsAutoSubmit      bool      `gorm:"default:false" json:"isAutoSubmit"`
	SubmittedAt       time.Time `gorm:"index" json:"submittedAt"`
	SubmissionDate    string    `gorm:"size:10;uniqueIndex:idx_user_submission_day;not null" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ExamSubmission) TableName() string {
	return "exam_submissions"
}
