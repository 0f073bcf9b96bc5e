package repository

import (
	"errors"
	"lomba_backend/internal/model"
	"lomba_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 参赛者目录与账号状态的 GORM 适配。用户 CRUD 本身
// 属于外部系统，这里只提供计分、榜单与交卷副作用需要的读写
type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListApproved 榜单的基准人群：报名已审核通过的指定赛道参赛者。
// 没有任何作答/交卷记录的用户也必须出现在结果里
func (r *UserRepository) ListApproved(track string, level model.QuestionLevel) ([]model.User, error) {
	var users []model.User
	query := r.DB.Where("registration_status = ?", model.RegistrationApproved)
	if track != "" {
		query = query.Where("jenis_lomba = ?", track)
	}
	if level != "" {
		query = query.Where("jenjang = ?", level)
	}
	err := query.Order("id asc").Find(&users).Error
	return users, err
}

// UpsertStatus 交卷成功后的状态侧写。调用方按 best-effort 处理：
// 失败只记日志，不回滚交卷
func (r *UserRepository) UpsertStatus(userID uint, status, reason string, submittedAt time.Time) error {
	record := &model.UserStatus{
		UserID:            userID,
		Status:            status,
		Reason:            reason,
		LastCBTSubmission: &submittedAt,
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "reason", "last_cbt_submission", "updated_at",
		}),
	}).Create(record).Error
}

func (r *UserRepository) FindStatus(userID uint) (*model.UserStatus, error) {
	var status model.UserStatus
	err := r.DB.Where("user_id = ?", userID).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}
