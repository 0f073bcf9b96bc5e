package model

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UserStatus 账号状态侧写，由交卷成功后 best-effort 更新
// swagger:model UserStatus
type UserStatus struct {
	BaseModel
	UserID            uint       `gorm:"uniqueIndex;not null" json:"userId"`
	Status            string     `gorm:"size:20;default:'active'" json:"status"`
	Reason            string     `gorm:"size:255" json:"reason"`
	LastCBTSubmission *time.Time `json:"lastCbtSubmission"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (UserStatus) TableName() string {
	return "user_statuses"
}

// CanLogin 账号是否仍可登录考试端
func (s *UserStatus) CanLogin() bool {
	return s.Status == StatusActive
}
