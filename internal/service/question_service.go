package service

import (
	"lomba_backend/internal/model"
	"lomba_backend/internal/repository"
	"lomba_backend/internal/util"
)

const answersPerQuestion = 4

type QuestionService struct {
	Repo *repository.QuestionRepository
}

func NewQuestionService(repo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{Repo: repo}
}

type QuestionAnswerReq struct {
	ID         string            `json:"id"`
	Type       model.ContentType `json:"type" binding:"required"`
	AnswerText string            `json:"answerText"`
	AnswerImg  string            `json:"answerImg"`
	IsCorrect  bool              `json:"isCorrect"`
}

type QuestionReq struct {
	Level        model.QuestionLevel `json:"level" binding:"required"`
	Type         model.ContentType   `json:"type" binding:"required"`
	QuestionText string              `json:"questionText"`
	QuestionImg  string              `json:"questionImg"`
	Answers      []QuestionAnswerReq `json:"answers" binding:"required"`
}

// validate 恰好 4 个选项、恰好 1 个正确答案，学段必须在闭集内
func (s *QuestionService) validate(req QuestionReq) error {
	if !model.ValidLevel(req.Level) {
		return util.NewValidationError("level", "must be SD or SMP")
	}
	if req.Type != model.ContentText && req.Type != model.ContentImage {
		return util.NewValidationError("type", "must be text or image")
	}
	if len(req.Answers) != answersPerQuestion {
		return util.NewValidationError("answers", "exactly 4 answers are required")
	}
	correct := 0
	for _, a := range req.Answers {
		if a.Type != model.ContentText && a.Type != model.ContentImage {
			return util.NewValidationError("answers.type", "must be text or image")
		}
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return util.NewValidationError("answers", "exactly one answer must be marked correct")
	}
	return nil
}

func (s *QuestionService) List(level model.QuestionLevel) ([]model.Question, error) {
	return s.Repo.List(level)
}

func (s *QuestionService) Get(id string) (*model.Question, error) {
	return s.Repo.FindByID(id)
}

func (s *QuestionService) Create(req QuestionReq) (*model.Question, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	question := &model.Question{
		Level:        req.Level,
		Type:         req.Type,
		QuestionText: req.QuestionText,
		QuestionImg:  req.QuestionImg,
	}
	answers := make([]model.Answer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = model.Answer{
			Type:       a.Type,
			AnswerText: a.AnswerText,
			AnswerImg:  a.AnswerImg,
			IsCorrect:  a.IsCorrect,
		}
	}

	if err := s.Repo.CreateWithAnswers(question, answers); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(question.ID)
}

func (s *QuestionService) Update(id string, req QuestionReq) (*model.Question, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	question, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	question.Level = req.Level
	question.Type = req.Type
	question.QuestionText = req.QuestionText
	question.QuestionImg = req.QuestionImg
	question.Answers = nil

	answers := make([]model.Answer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = model.Answer{
			UUIDBase:   model.UUIDBase{ID: a.ID},
			Type:       a.Type,
			AnswerText: a.AnswerText,
			AnswerImg:  a.AnswerImg,
			IsCorrect:  a.IsCorrect,
		}
	}

	if err := s.Repo.UpdateWithAnswers(question, answers); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(id)
}

func (s *QuestionService) Delete(id string) error {
	return s.Repo.Delete(id)
}
