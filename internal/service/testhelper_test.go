package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lomba_backend/internal/model"
	"lomba_backend/internal/repository"
)

// newTestDB 每个测试一个独立的内存库，cache=shared 保证连接池里
// 的多个连接看到同一份数据
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.UserStatus{},
		&model.Question{},
		&model.Answer{},
		&model.UserAnswer{},
		&model.ExamSubmission{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, level model.QuestionLevel) *model.User {
	t.Helper()
	user := &model.User{
		Name:               name,
		Email:              name + "@example.com",
		Password:           "irrelevant",
		Role:               model.Participant,
		Jenjang:            level,
		JenisLomba:         model.TrackScienceCompetition,
		AsalSekolah:        "SDN 1 Testing",
		Kelas:              "6",
		RegistrationStatus: model.RegistrationApproved,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return user
}

// seedQuestion 造一道题带 4 个选项，第一个选项为正确答案
func seedQuestion(t *testing.T, db *gorm.DB, level model.QuestionLevel) *model.Question {
	t.Helper()
	repo := repository.NewQuestionRepository(db)

	question := &model.Question{
		Level:        level,
		Type:         model.ContentText,
		QuestionText: "Berapa hasil 2 + 2?",
	}
	answers := []model.Answer{
		{Type: model.ContentText, AnswerText: "4", IsCorrect: true},
		{Type: model.ContentText, AnswerText: "3"},
		{Type: model.ContentText, AnswerText: "5"},
		{Type: model.ContentText, AnswerText: "22"},
	}
	if err := repo.CreateWithAnswers(question, answers); err != nil {
		t.Fatalf("seed question: %v", err)
	}

	full, err := repo.FindByID(question.ID)
	if err != nil {
		t.Fatalf("reload question: %v", err)
	}
	return full
}

func correctAnswer(t *testing.T, q *model.Question) *model.Answer {
	t.Helper()
	for i := range q.Answers {
		if q.Answers[i].IsCorrect {
			return &q.Answers[i]
		}
	}
	t.Fatalf("question %s has no correct answer", q.ID)
	return nil
}

func wrongAnswer(t *testing.T, q *model.Question) *model.Answer {
	t.Helper()
	for i := range q.Answers {
		if !q.Answers[i].IsCorrect {
			return &q.Answers[i]
		}
	}
	t.Fatalf("question %s has no wrong answer", q.ID)
	return nil
}

// seedAnswerAt 直接写一条作答记录，绕过服务层校验
func seedAnswerAt(t *testing.T, db *gorm.DB, userID uint, q *model.Question, a *model.Answer, at time.Time) {
	t.Helper()
	ua := &model.UserAnswer{
		UserID:     userID,
		QuestionID: q.ID,
		AnsweredAt: at,
	}
	if a != nil {
		ua.AnswerID = &a.ID
	}
	if err := db.Create(ua).Error; err != nil {
		t.Fatalf("seed user answer: %v", err)
	}
}

func seedSubmission(t *testing.T, db *gorm.DB, userID uint, submittedAt time.Time, duration, violations int) *model.ExamSubmission {
	t.Helper()
	sub := &model.ExamSubmission{
		UserID:            userID,
		DurationInMinutes: duration,
		TotalViolations:   violations,
		SubmittedAt:       submittedAt,
		SubmissionDate:    submittedAt.Format("2006-01-02"),
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	return sub
}
