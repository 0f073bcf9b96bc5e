package service

import (
	"lomba_backend/internal/model"
	"lomba_backend/internal/repository"
	"lomba_backend/internal/util"
	"lomba_backend/pkg/logger"
	"lomba_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

// ExamService 交卷登记：每用户每自然日一条，终态不可回退
type ExamService struct {
	Repo     *repository.ExamSubmissionRepository
	UserRepo *repository.UserRepository

	// 测试里固定时钟用
	now func() time.Time
}

func NewExamService(repo *repository.ExamSubmissionRepository, userRepo *repository.UserRepository) *ExamService {
	return &ExamService{Repo: repo, UserRepo: userRepo, now: time.Now}
}

type ExamSubmitReq struct {
	UserID            uint  `json:"userId" binding:"required"`
	DurationInMinutes *int  `json:"durationInMinutes" binding:"required"`
	TotalViolations   *int  `json:"totalViolations" binding:"required"`
	IsAutoSubmit      *bool `json:"isAutoSubmit" binding:"required"`
}

// Submit 登记一次交卷。重复交卷不产生任何写入；交卷成功后将账号
// 状态置为 inactive（原因 exam completed），该副作用 best-effort
func (s *ExamService) Submit(req ExamSubmitReq) (*model.ExamSubmission, error) {
	if req.DurationInMinutes == nil || *req.DurationInMinutes < 0 {
		return nil, util.NewValidationError("durationInMinutes", "must be a non-negative integer")
	}
	if req.TotalViolations == nil || *req.TotalViolations < 0 {
		return nil, util.NewValidationError("totalViolations", "must be a non-negative integer")
	}
	if req.IsAutoSubmit == nil {
		return nil, util.NewValidationError("isAutoSubmit", "is required")
	}

	user, err := s.UserRepo.FindByID(req.UserID)
	if err != nil {
		return nil, err
	}

	submittedAt := s.now()
	date := submittedAt.Format(util.DateFormat)

	// 预检给出友好报错；并发竞态由唯一索引兜底
	exists, err := s.Repo.ExistsForDate(req.UserID, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrDuplicateSubmission
	}

	sub := &model.ExamSubmission{
		UserID:            req.UserID,
		DurationInMinutes: *req.DurationInMinutes,
		TotalViolations:   *req.TotalViolations,
		IsAutoSubmit:      *req.IsAutoSubmit,
		SubmittedAt:       submittedAt,
		SubmissionDate:    date,
	}
	if err := s.Repo.Create(sub); err != nil {
		return nil, err
	}

	auto := "manual"
	if sub.IsAutoSubmit {
		auto = "auto"
	}
	monitoring.ExamSubmissionCounter.WithLabelValues(string(user.Jenjang), auto).Inc()

	// 交卷写入是权威记录，状态更新失败只记日志
	if err := s.UserRepo.UpsertStatus(req.UserID, model.StatusInactive, "exam completed", submittedAt); err != nil {
		logger.Log.Error("failed to update user status after exam submission",
			zap.Uint("user_id", req.UserID),
			zap.Error(err),
		)
	}

	sub.User = user
	return sub, nil
}

func (s *ExamService) GetByID(id uint) (*model.ExamSubmission, error) {
	return s.Repo.FindByID(id)
}

func (s *ExamService) ListByUser(userID uint, page, limit int, sortOrder string) ([]model.ExamSubmission, int64, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}
	return s.Repo.ListByUser(userID, page, limit, sortOrder)
}

func (s *ExamService) List(page, limit int, sortBy, sortOrder string, level model.QuestionLevel) ([]model.ExamSubmission, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}
	return s.Repo.List(page, limit, sortBy, sortOrder, level)
}

// SubmissionWindow 一次交卷关联作答的时间窗：submitted_at 所在自然日。
// 刻意放宽到整天，最后一次作答与交卷之间的网络延迟不会把答案排除在外
func SubmissionWindow(submittedAt time.Time) (time.Time, time.Time) {
	from := time.Date(submittedAt.Year(), submittedAt.Month(), submittedAt.Day(), 0, 0, 0, 0, submittedAt.Location())
	return from, from.AddDate(0, 0, 1)
}
