package service

import (
	"lomba_backend/internal/model"
	"lomba_backend/internal/repository"
	"lomba_backend/internal/util"
	"time"
)

type UserAnswerService struct {
	Repo         *repository.UserAnswerRepository
	QuestionRepo *repository.QuestionRepository
	UserRepo     *repository.UserRepository
}

func NewUserAnswerService(repo *repository.UserAnswerRepository, questionRepo *repository.QuestionRepository, userRepo *repository.UserRepository) *UserAnswerService {
	return &UserAnswerService{Repo: repo, QuestionRepo: questionRepo, UserRepo: userRepo}
}

type SubmitAnswerReq struct {
	UserID     uint   `json:"userId" binding:"required"`
	QuestionID string `json:"questionId" binding:"required"`
	AnswerID   string `json:"answerId" binding:"required"`
}

// Submit 校验选项归属后 upsert。同一 (user, question) 永远只有一行，
// 重复提交只刷新 answer_id 和 answered_at
func (s *UserAnswerService) Submit(req SubmitAnswerReq) (*model.UserAnswer, error) {
	if _, err := s.UserRepo.FindByID(req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.QuestionRepo.FindByID(req.QuestionID); err != nil {
		return nil, err
	}

	answer, err := s.QuestionRepo.FindAnswerByID(req.AnswerID)
	if err != nil {
		return nil, err
	}
	if answer.QuestionID != req.QuestionID {
		return nil, util.ErrAnswerMismatch
	}

	ua := &model.UserAnswer{
		UserID:     req.UserID,
		QuestionID: req.QuestionID,
		AnswerID:   &req.AnswerID,
		AnsweredAt: time.Now(),
	}
	if err := s.Repo.Upsert(ua); err != nil {
		return nil, err
	}

	// upsert 命中已有行时 ua 里的 ID 不是落库的那行，回读拿准确行
	return s.Repo.FindByUserAndQuestion(req.UserID, req.QuestionID)
}

// Remove 取消作答：整行删除，题目回到未作答状态
func (s *UserAnswerService) Remove(id string) error {
	return s.Repo.Delete(id)
}

func (s *UserAnswerService) RemoveByUserAndQuestion(userID uint, questionID string) error {
	return s.Repo.DeleteByUserAndQuestion(userID, questionID)
}

// ToggleDoubt 翻转标记，不影响作答内容与计分
func (s *UserAnswerService) ToggleDoubt(id string) (*model.UserAnswer, error) {
	ua, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	ua.IsDoubtful = !ua.IsDoubtful
	if err := s.Repo.Save(ua); err != nil {
		return nil, err
	}
	return ua, nil
}

func (s *UserAnswerService) UnsetDoubt(id string) (*model.UserAnswer, error) {
	ua, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	ua.IsDoubtful = false
	if err := s.Repo.Save(ua); err != nil {
		return nil, err
	}
	return ua, nil
}

func (s *UserAnswerService) ListByUser(userID uint) ([]model.UserAnswer, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		return nil, err
	}
	return s.Repo.ListByUser(userID)
}
