package model

type UserRole string

const (
	Participant UserRole = "participant"
	Admin       UserRole = "admin"
)

// 报名审核状态
const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
)

// CBT 线上赛的赛道标识
const TrackScienceCompetition = "science-competition"

// User 参赛者目录。注册/缴费等流程由外部系统负责，这里只保留
// 计分与榜单需要读取的列
// swagger:model User
type User struct {
	BaseModel
	Name               string        `gorm:"size:100;not null" json:"name"`
	Email              string        `gorm:"size:100;unique;not null" json:"email"`
	Password           string        `gorm:"size:100;not null" json:"-"`
	Role               UserRole      `gorm:"size:20;default:'participant'" json:"role"`
	Jenjang            QuestionLevel `gorm:"size:10;index" json:"jenjang"`
	JenisLomba         string        `gorm:"size:50;index" json:"jenisLomba"`
	AsalSekolah        string        `gorm:"size:150" json:"asalSekolah"`
	Kelas              string        `gorm:"size:20" json:"kelas"`
	RegistrationStatus string        `gorm:"size:20;default:'pending'" json:"registrationStatus"`
}

func (User) TableName() string {
	return "users"
}
