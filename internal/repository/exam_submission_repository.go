package repository

import (
	"errors"
	"lomba_backend/internal/model"
	"lomba_backend/internal/util"

	"gorm.io/gorm"
)

type ExamSubmissionRepository struct {
	DB *gorm.DB
}

func NewExamSubmissionRepository(db *gorm.DB) *ExamSubmissionRepository {
	return &ExamSubmissionRepository{DB: db}
}

// Create 依赖 (user_id, submission_date) 唯一索引，冲突翻译为重复交卷。
// 应用层的预检只是提前给出友好报错，真正的防线在这里
func (r *ExamSubmissionRepository) Create(sub *model.ExamSubmission) error {
	err := r.DB.Create(sub).Error
	if util.IsDuplicateKeyError(err) {
		return util.ErrDuplicateSubmission
	}
	return err
}

func (r *ExamSubmissionRepository) FindByID(id uint) (*model.ExamSubmission, error) {
	var sub model.ExamSubmission
	err := r.DB.Preload("User").First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *ExamSubmissionRepository) ExistsForDate(userID uint, date string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ExamSubmission{}).
		Where("user_id = ? AND submission_date = ?", userID, date).
		Count(&count).Error
	return count > 0, err
}

// FindLatestByUser 用户最近一次交卷，没有则返回 nil（不是错误）
func (r *ExamSubmissionRepository) FindLatestByUser(userID uint) (*model.ExamSubmission, error) {
	var sub model.ExamSubmission
	err := r.DB.Where("user_id = ?", userID).
		Order("submitted_at desc").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *ExamSubmissionRepository) ListByUser(userID uint, page, limit int, sortOrder string) ([]model.ExamSubmission, int64, error) {
	var total int64
	query := r.DB.Model(&model.ExamSubmission{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	var subs []model.ExamSubmission
	offset := (page - 1) * limit
	err := r.DB.Where("user_id = ?", userID).
		Order("submitted_at " + sortOrder).
		Offset(offset).Limit(limit).
		Find(&subs).Error
	return subs, total, err
}

var submissionSortColumns = map[string]string{
	"submitted_at": "exam_submissions.submitted_at",
	"duration":     "exam_submissions.duration_in_minutes",
	"violations":   "exam_submissions.total_violations",
}

// List 按存储列排序的交卷列表。派生分数的排序不在这里做，
// 那必须先对全量参与者计分（见 ResultService）
func (r *ExamSubmissionRepository) List(page, limit int, sortBy, sortOrder string, level model.QuestionLevel) ([]model.ExamSubmission, int64, error) {
	query := r.DB.Model(&model.ExamSubmission{}).Preload("User")
	if level != "" {
		query = query.
			Joins("JOIN users ON users.id = exam_submissions.user_id").
			Where("users.jenjang = ?", level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := submissionSortColumns[sortBy]
	if !ok {
		column = "exam_submissions.submitted_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	var subs []model.ExamSubmission
	offset := (page - 1) * limit
	err := query.Order(column + " " + sortOrder).
		Offset(offset).Limit(limit).
		Find(&subs).Error
	return subs, total, err
}

// ListAll 全量交卷记录（榜单用），按用户在内存分组
func (r *ExamSubmissionRepository) ListAll() ([]model.ExamSubmission, error) {
	var subs []model.ExamSubmission
	err := r.DB.Order("submitted_at desc").Find(&subs).Error
	return subs, err
}
