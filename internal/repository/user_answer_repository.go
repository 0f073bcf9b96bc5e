package repository

import (
	"errors"
	"lomba_backend/internal/model"
	"lomba_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserAnswerRepository struct {
	DB *gorm.DB
}

func NewUserAnswerRepository(db *gorm.DB) *UserAnswerRepository {
	return &UserAnswerRepository{DB: db}
}

// Upsert 以 (user_id, question_id) 为冲突键的单语句 upsert，
// 并发的重复提交在存储层收敛为最后一次写入
func (r *UserAnswerRepository) Upsert(ua *model.UserAnswer) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"answer_id", "answered_at", "updated_at",
		}),
	}).Create(ua).Error
}

func (r *UserAnswerRepository) FindByID(id string) (*model.UserAnswer, error) {
	var ua model.UserAnswer
	err := r.DB.First(&ua, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserAnswerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ua, nil
}

func (r *UserAnswerRepository) FindByUserAndQuestion(userID uint, questionID string) (*model.UserAnswer, error) {
	var ua model.UserAnswer
	err := r.DB.Where("user_id = ? AND question_id = ?", userID, questionID).First(&ua).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserAnswerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ua, nil
}

func (r *UserAnswerRepository) Save(ua *model.UserAnswer) error {
	return r.DB.Save(ua).Error
}

func (r *UserAnswerRepository) Delete(id string) error {
	result := r.DB.Delete(&model.UserAnswer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrUserAnswerNotFound
	}
	return nil
}

func (r *UserAnswerRepository) DeleteByUserAndQuestion(userID uint, questionID string) error {
	result := r.DB.Where("user_id = ? AND question_id = ?", userID, questionID).
		Delete(&model.UserAnswer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrUserAnswerNotFound
	}
	return nil
}

// ListByUser 连带题目与所选选项；选项已被删除时 Answer 为 nil，
// 计分端把这种悬空引用当作未作答
func (r *UserAnswerRepository) ListByUser(userID uint) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := r.DB.Preload("Question").Preload("Answer").
		Where("user_id = ?", userID).
		Order("answered_at asc").
		Find(&answers).Error
	return answers, err
}

// ListByUserAndLevel 只取属于指定学段题目的作答记录
func (r *UserAnswerRepository) ListByUserAndLevel(userID uint, level model.QuestionLevel) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	query := r.DB.Preload("Question").Preload("Answer").
		Where("user_id = ?", userID)
	if level != "" {
		query = query.Where(
			"question_id IN (?)",
			r.DB.Model(&model.Question{}).Select("id").Where("level = ?", level),
		)
	}
	err := query.Order("answered_at asc").Find(&answers).Error
	return answers, err
}

// ListByUserInWindow 取作答时间落在 [from, to) 内的记录，用于把答案
// 归属到某次交卷所在的自然日
func (r *UserAnswerRepository) ListByUserInWindow(userID uint, from, to time.Time) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := r.DB.Preload("Question").Preload("Answer").
		Where("user_id = ? AND answered_at >= ? AND answered_at < ?", userID, from, to).
		Order("answered_at asc").
		Find(&answers).Error
	return answers, err
}

// ListAll 一次拉全量作答（榜单用），按用户分组在内存里完成
func (r *UserAnswerRepository) ListAll() ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := r.DB.Preload("Question").Preload("Answer").
		Order("answered_at asc").
		Find(&answers).Error
	return answers, err
}
