package repository

import (
	"errors"
	"lomba_backend/internal/model"
	"lomba_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// List 返回题目及其选项，level 为空则返回全部学段
func (r *QuestionRepository) List(level model.QuestionLevel) ([]model.Question, error) {
	var questions []model.Question
	query := r.DB.Preload("Answers").Order("created_at asc")
	if level != "" {
		query = query.Where("level = ?", level)
	}
	err := query.Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var question model.Question
	err := r.DB.Preload("Answers").First(&question, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) FindAnswerByID(id string) (*model.Answer, error) {
	var answer model.Answer
	err := r.DB.First(&answer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAnswerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// CreateWithAnswers 题目与 4 个选项在同一事务内落库，失败不留孤儿行
func (r *QuestionRepository) CreateWithAnswers(question *model.Question, answers []model.Answer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].QuestionID = question.ID
			if err := tx.Create(&answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateWithAnswers 更新题目本体并按 ID 调和选项：带已知 ID 的原地更新，
// 不带 ID 的新建，剩余旧选项删除。保留选项身份，历史 UserAnswer 不悬空
func (r *QuestionRepository) UpdateWithAnswers(question *model.Question, answers []model.Answer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(question).Error; err != nil {
			return err
		}

		var existing []model.Answer
		if err := tx.Where("question_id = ?", question.ID).Find(&existing).Error; err != nil {
			return err
		}
		existingMap := make(map[string]*model.Answer, len(existing))
		for i := range existing {
			existingMap[existing[i].ID] = &existing[i]
		}

		kept := make(map[string]bool, len(answers))
		for i := range answers {
			answers[i].QuestionID = question.ID
			if answers[i].ID != "" {
				if old, ok := existingMap[answers[i].ID]; ok {
					old.Type = answers[i].Type
					old.AnswerText = answers[i].AnswerText
					old.AnswerImg = answers[i].AnswerImg
					old.IsCorrect = answers[i].IsCorrect
					if err := tx.Save(old).Error; err != nil {
						return err
					}
					kept[old.ID] = true
					continue
				}
				// 未知 ID 当作新选项处理
				answers[i].ID = ""
			}
			if err := tx.Create(&answers[i]).Error; err != nil {
				return err
			}
			kept[answers[i].ID] = true
		}

		for id := range existingMap {
			if !kept[id] {
				if err := tx.Delete(&model.Answer{}, "id = ?", id).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Delete 级联删除选项，不触碰引用这些选项的 UserAnswer（悬空由计分容忍）
func (r *QuestionRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Question{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return util.ErrQuestionNotFound
		}
		return tx.Where("question_id = ?", id).Delete(&model.Answer{}).Error
	})
}

// CountByLevel 各学段题目数，作为百分比的统一分母
func (r *QuestionRepository) CountByLevel() (map[model.QuestionLevel]int, error) {
	type row struct {
		Level model.QuestionLevel
		Cnt   int
	}
	var rows []row
	err := r.DB.Model(&model.Question{}).
		Select("level, COUNT(*) as cnt").
		Group("level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.QuestionLevel]int, len(rows))
	for _, rw := range rows {
		counts[rw.Level] = rw.Cnt
	}
	return counts, nil
}

func (r *QuestionRepository) CountForLevel(level model.QuestionLevel) (int, error) {
	var count int64
	query := r.DB.Model(&model.Question{})
	if level != "" {
		query = query.Where("level = ?", level)
	}
	err := query.Count(&count).Error
	return int(count), err
}
