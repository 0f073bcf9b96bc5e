package service

import (
	"context"
	"encoding/json"
	"lomba_backend/internal/model"
	"lomba_backend/internal/repository"
	"lomba_backend/pkg/logger"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ResultService 榜单与统计。派生分数不落库，每次请求对全量候选人
// 重算后再排序分页；只读无锁，读到的轻微陈旧可以接受
type ResultService struct {
	UserRepo       *repository.UserRepository
	QuestionRepo   *repository.QuestionRepository
	UserAnswerRepo *repository.UserAnswerRepository
	ExamRepo       *repository.ExamSubmissionRepository
	RDB            *redis.Client

	Workers       int
	StatsCacheTTL time.Duration
}

func NewResultService(
	userRepo *repository.UserRepository,
	questionRepo *repository.QuestionRepository,
	userAnswerRepo *repository.UserAnswerRepository,
	examRepo *repository.ExamSubmissionRepository,
	rdb *redis.Client,
	workers int,
	statsCacheTTL time.Duration,
) *ResultService {
	if workers <= 0 {
		workers = 8
	}
	return &ResultService{
		UserRepo:       userRepo,
		QuestionRepo:   questionRepo,
		UserAnswerRepo: userAnswerRepo,
		ExamRepo:       examRepo,
		RDB:            rdb,
		Workers:        workers,
		StatsCacheTTL:  statsCacheTTL,
	}
}

// SubmissionInfo 交卷元数据，未交卷的参与者此字段为空
type SubmissionInfo struct {
	ID                uint      `json:"id"`
	DurationInMinutes int       `json:"durationInMinutes"`
	TotalViolations   int       `json:"totalViolations"`
	IsAutoSubmit      bool      `json:"isAutoSubmit"`
	SubmittedAt       time.Time `json:"submittedAt"`
}

// ParticipantRow 榜单里的一行。固定字段，所有调用方复用同一形状
type ParticipantRow struct {
	UserID              uint                `json:"userId"`
	Name                string              `json:"name"`
	Email               string              `json:"email"`
	Jenjang             model.QuestionLevel `json:"jenjang"`
	JenisLomba          string              `json:"jenisLomba"`
	AsalSekolah         string              `json:"asalSekolah"`
	Kelas               string              `json:"kelas"`
	HasSubmitted        bool                `json:"hasSubmitted"`
	CalculatedScore     int                 `json:"calculatedScore"`
	CorrectAnswers      int                 `json:"correctAnswers"`
	IncorrectAnswers    int                 `json:"incorrectAnswers"`
	UnansweredQuestions int                 `json:"unansweredQuestions"`
	TotalQuestions      int                 `json:"totalQuestions"`
	Percentage          float64             `json:"percentage"`
	Submission          *SubmissionInfo     `json:"submission,omitempty"`
}

// CohortStats 学段维度的整体统计，基于过滤后的全量人群而非当前页
type CohortStats struct {
	Jenjang        model.QuestionLevel `json:"jenjang"`
	Total          int                 `json:"total"`
	Submitted      int                 `json:"submitted"`
	NotSubmitted   int                 `json:"notSubmitted"`
	SubmissionRate float64             `json:"submissionRate"`
	MinScore       int                 `json:"minScore"`
	MaxScore       int                 `json:"maxScore"`
	AverageScore   float64             `json:"averageScore"`
}

// Pagination 在完整排序后的集合上切页得到的元信息
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	PerPage     int `json:"perPage"`
	Total       int `json:"total"`
	LastPage    int `json:"lastPage"`
	From        int `json:"from"`
	To          int `json:"to"`
}

type ParticipantList struct {
	Data       []ParticipantRow `json:"data"`
	Pagination Pagination       `json:"pagination"`
	Statistics []CohortStats    `json:"statistics"`
}

const (
	StatusFilterAll          = "all"
	StatusFilterSubmitted    = "submitted"
	StatusFilterNotSubmitted = "not_submitted"
)

type ListParticipantsOpts struct {
	PerPage      int
	Page         int
	Level        model.QuestionLevel
	StatusFilter string
	NameSearch   string
	UserID       uint
	SortBy       string // score | submitted_at | duration | violations
	SortOrder    string // asc | desc
}

// ListParticipants 组装榜单：
//  1. 基准人群是报名通过的全部参赛者，从未交卷/作答的也要出现
//  2. 对每个人重算派生分数（有交卷记录则把作答窗到交卷当日）
//  3. 过滤，之后在内存里对全量集合排序，最后才分页——派生分数
//     无法下推到存储层，先分页会把高分截没
func (s *ResultService) ListParticipants(opts ListParticipantsOpts) (*ParticipantList, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = 15
	}
	if opts.StatusFilter == "" {
		opts.StatusFilter = StatusFilterAll
	}

	rows, err := s.buildRows(opts.Level)
	if err != nil {
		return nil, err
	}

	filtered := s.applyFilters(rows, opts)
	s.sortRows(filtered, opts.SortBy, opts.SortOrder)

	stats := buildCohortStats(filtered)
	page, pagination := paginate(filtered, opts.Page, opts.PerPage)

	return &ParticipantList{
		Data:       page,
		Pagination: pagination,
		Statistics: stats,
	}, nil
}

// buildRows 三次全量查询 + 内存分组，然后并发做纯计分。
// O(参与者 × 题目) 的扫描，当前量级（数百到数千人）可接受
func (s *ResultService) buildRows(level model.QuestionLevel) ([]ParticipantRow, error) {
	users, err := s.UserRepo.ListApproved(model.TrackScienceCompetition, level)
	if err != nil {
		return nil, err
	}

	questionCounts, err := s.QuestionRepo.CountByLevel()
	if err != nil {
		return nil, err
	}

	allAnswers, err := s.UserAnswerRepo.ListAll()
	if err != nil {
		return nil, err
	}
	answersByUser := make(map[uint][]model.UserAnswer)
	for _, ua := range allAnswers {
		answersByUser[ua.UserID] = append(answersByUser[ua.UserID], ua)
	}

	submissions, err := s.ExamRepo.ListAll()
	if err != nil {
		return nil, err
	}
	// ListAll 按 submitted_at 降序，首个即最近一次
	latestSubmission := make(map[uint]*model.ExamSubmission)
	for i := range submissions {
		sub := &submissions[i]
		if _, ok := latestSubmission[sub.UserID]; !ok {
			latestSubmission[sub.UserID] = sub
		}
	}

	rows := make([]ParticipantRow, len(users))
	sem := make(chan struct{}, s.Workers)
	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			rows[i] = s.buildRow(&users[i], answersByUser[users[i].ID], latestSubmission[users[i].ID], questionCounts)
		}(i)
	}
	wg.Wait()

	return rows, nil
}

func (s *ResultService) buildRow(user *model.User, answers []model.UserAnswer, sub *model.ExamSubmission, questionCounts map[model.QuestionLevel]int) ParticipantRow {
	// 有交卷记录时只计交卷当日的作答；没有则计全部
	if sub != nil {
		from, to := SubmissionWindow(sub.SubmittedAt)
		windowed := answers[:0:0]
		for _, ua := range answers {
			if !ua.AnsweredAt.Before(from) && ua.AnsweredAt.Before(to) {
				windowed = append(windowed, ua)
			}
		}
		answers = windowed
	}

	// 只统计属于该用户学段的题目
	scoped := answers[:0:0]
	for _, ua := range answers {
		if ua.Question == nil || ua.Question.Level == user.Jenjang {
			scoped = append(scoped, ua)
		}
	}

	breakdown := CalculateScore(scoped, questionCounts[user.Jenjang])

	row := ParticipantRow{
		UserID:              user.ID,
		Name:                user.Name,
		Email:               user.Email,
		Jenjang:             user.Jenjang,
		JenisLomba:          user.JenisLomba,
		AsalSekolah:         user.AsalSekolah,
		Kelas:               user.Kelas,
		HasSubmitted:        len(scoped) > 0,
		CalculatedScore:     breakdown.Score,
		CorrectAnswers:      breakdown.Correct,
		IncorrectAnswers:    breakdown.Wrong,
		UnansweredQuestions: breakdown.Unanswered,
		TotalQuestions:      breakdown.TotalQuestions,
		Percentage:          breakdown.Percentage,
	}
	if sub != nil {
		row.Submission = &SubmissionInfo{
			ID:                sub.ID,
			DurationInMinutes: sub.DurationInMinutes,
			TotalViolations:   sub.TotalViolations,
			IsAutoSubmit:      sub.IsAutoSubmit,
			SubmittedAt:       sub.SubmittedAt,
		}
	}
	return row
}

// applyFilters 计分之后在内存集合上过滤（派生字段无法下推）
func (s *ResultService) applyFilters(rows []ParticipantRow, opts ListParticipantsOpts) []ParticipantRow {
	filtered := make([]ParticipantRow, 0, len(rows))
	search := strings.ToLower(opts.NameSearch)
	for _, row := range rows {
		switch opts.StatusFilter {
		case StatusFilterSubmitted:
			if !row.HasSubmitted {
				continue
			}
		case StatusFilterNotSubmitted:
			if row.HasSubmitted {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(row.Name), search) {
			continue
		}
		if opts.UserID != 0 && row.UserID != opts.UserID {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// sortRows 默认排序：已交卷在前，其次派生分数降序。指定 sortBy 时按
// 该字段排，同值再按分数降序保证稳定可读
func (s *ResultService) sortRows(rows []ParticipantRow, sortBy, sortOrder string) {
	asc := sortOrder == "asc"

	var less func(a, b *ParticipantRow) bool

	switch sortBy {
	case "", "score":
		less = func(a, b *ParticipantRow) bool {
			if a.HasSubmitted != b.HasSubmitted {
				return a.HasSubmitted
			}
			if asc {
				return a.CalculatedScore < b.CalculatedScore
			}
			return a.CalculatedScore > b.CalculatedScore
		}
	case "submitted_at":
		less = func(a, b *ParticipantRow) bool {
			at, bt := submittedAtOf(a), submittedAtOf(b)
			if at.Equal(bt) {
				return a.CalculatedScore > b.CalculatedScore
			}
			if asc {
				return at.Before(bt)
			}
			return at.After(bt)
		}
	case "duration":
		less = func(a, b *ParticipantRow) bool {
			ad, bd := durationOf(a), durationOf(b)
			if ad == bd {
				return a.CalculatedScore > b.CalculatedScore
			}
			if asc {
				return ad < bd
			}
			return ad > bd
		}
	case "violations":
		less = func(a, b *ParticipantRow) bool {
			av, bv := violationsOf(a), violationsOf(b)
			if av == bv {
				return a.CalculatedScore > b.CalculatedScore
			}
			if asc {
				return av < bv
			}
			return av > bv
		}
	default:
		less = func(a, b *ParticipantRow) bool {
			if a.HasSubmitted != b.HasSubmitted {
				return a.HasSubmitted
			}
			return a.CalculatedScore > b.CalculatedScore
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return less(&rows[i], &rows[j])
	})
}

func submittedAtOf(r *ParticipantRow) time.Time {
	if r.Submission == nil {
		return time.Time{}
	}
	return r.Submission.SubmittedAt
}

func durationOf(r *ParticipantRow) int {
	if r.Submission == nil {
		return 0
	}
	return r.Submission.DurationInMinutes
}

func violationsOf(r *ParticipantRow) int {
	if r.Submission == nil {
		return 0
	}
	return r.Submission.TotalViolations
}

// paginate 在完整排序后的切片上取页，元信息来自全量集合
func paginate(rows []ParticipantRow, page, perPage int) ([]ParticipantRow, Pagination) {
	total := len(rows)
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	p := Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	}
	if start < end {
		p.From = start + 1
		p.To = end
	}
	return rows[start:end], p
}

func buildCohortStats(rows []ParticipantRow) []CohortStats {
	byLevel := make(map[model.QuestionLevel][]ParticipantRow)
	for _, row := range rows {
		byLevel[row.Jenjang] = append(byLevel[row.Jenjang], row)
	}

	levels := []model.QuestionLevel{model.LevelSD, model.LevelSMP}
	stats := make([]CohortStats, 0, len(levels))
	for _, lv := range levels {
		cohort := byLevel[lv]
		if len(cohort) == 0 {
			continue
		}
		cs := CohortStats{Jenjang: lv, Total: len(cohort)}
		min, max, sum := math.MaxInt, math.MinInt, 0
		for _, row := range cohort {
			if row.HasSubmitted {
				cs.Submitted++
			}
			if row.CalculatedScore < min {
				min = row.CalculatedScore
			}
			if row.CalculatedScore > max {
				max = row.CalculatedScore
			}
			sum += row.CalculatedScore
		}
		cs.NotSubmitted = cs.Total - cs.Submitted
		cs.SubmissionRate = Percentage(cs.Submitted, cs.Total)
		cs.MinScore = min
		cs.MaxScore = max
		cs.AverageScore = math.Round(float64(sum)/float64(cs.Total)*100) / 100
		stats = append(stats, cs)
	}
	return stats
}

const statsCacheKey = "exam:stats:overview"

// StatisticsOverview 全体参与者的学段统计。计算要扫全量作答，
// 挂在 Redis 后面做短 TTL 缓存；只读幂等，轻微陈旧可接受
func (s *ResultService) StatisticsOverview(ctx context.Context) ([]CohortStats, error) {
	if s.RDB != nil && s.StatsCacheTTL > 0 {
		cached, err := s.RDB.Get(ctx, statsCacheKey).Result()
		if err == nil {
			var stats []CohortStats
			if jsonErr := json.Unmarshal([]byte(cached), &stats); jsonErr == nil {
				return stats, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("stats cache read failed", zap.Error(err))
		}
	}

	rows, err := s.buildRows("")
	if err != nil {
		return nil, err
	}
	stats := buildCohortStats(rows)

	if s.RDB != nil && s.StatsCacheTTL > 0 {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.RDB.Set(ctx, statsCacheKey, payload, s.StatsCacheTTL).Err(); err != nil {
				logger.Log.Warn("stats cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// UserSummary 单个用户的成绩摘要：分母是该学段题库总数。
// 已交卷的用户只计交卷当日的作答，与榜单口径一致
func (s *ResultService) UserSummary(userID uint) (*ScoreBreakdown, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	total, err := s.QuestionRepo.CountForLevel(user.Jenjang)
	if err != nil {
		return nil, err
	}

	sub, err := s.ExamRepo.FindLatestByUser(userID)
	if err != nil {
		return nil, err
	}

	var answers []model.UserAnswer
	if sub != nil {
		from, to := SubmissionWindow(sub.SubmittedAt)
		answers, err = s.UserAnswerRepo.ListByUserInWindow(userID, from, to)
		if err != nil {
			return nil, err
		}
		// 窗口查询不带学段过滤，这里按题目学段收口
		scoped := answers[:0:0]
		for _, ua := range answers {
			if ua.Question == nil || ua.Question.Level == user.Jenjang {
				scoped = append(scoped, ua)
			}
		}
		answers = scoped
	} else {
		answers, err = s.UserAnswerRepo.ListByUserAndLevel(userID, user.Jenjang)
		if err != nil {
			return nil, err
		}
	}

	breakdown := CalculateScore(answers, total)
	return &breakdown, nil
}
