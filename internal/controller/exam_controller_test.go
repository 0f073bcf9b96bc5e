package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lomba_backend/internal/model"
	"lomba_backend/internal/repository"
	"lomba_backend/internal/service"
	"lomba_backend/internal/util"
)

func newControllerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.UserStatus{},
		&model.Question{}, &model.Answer{},
		&model.UserAnswer{}, &model.ExamSubmission{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// asUser 测试用中间件：直接注入 claims，跳过 JWT 解析
func asUser(user *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", &util.Claims{UserID: user.ID, Role: user.Role, Email: user.Email})
		c.Next()
	}
}

func newExamTestRouter(t *testing.T, db *gorm.DB, actor *model.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewExamService(
		repository.NewExamSubmissionRepository(db),
		repository.NewUserRepository(db),
	)
	ctrl := NewExamController(svc)

	r := gin.New()
	r.Use(asUser(actor))
	r.POST("/api/exam/submissions", ctrl.Submit)
	return r
}

func seedParticipant(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	user := &model.User{
		Name:               name,
		Email:              name + "@example.com",
		Password:           "irrelevant",
		Role:               model.Participant,
		Jenjang:            model.LevelSD,
		JenisLomba:         model.TrackScienceCompetition,
		RegistrationStatus: model.RegistrationApproved,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExamSubmitEndpoint(t *testing.T) {
	db := newControllerTestDB(t)
	user := seedParticipant(t, db, "budi")
	r := newExamTestRouter(t, db, user)

	body := gin.H{
		"userId":            user.ID,
		"durationInMinutes": 80,
		"totalViolations":   1,
		"isAutoSubmit":      false,
	}

	w := postJSON(t, r, "/api/exam/submissions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("first submit: status %d, body %s", w.Code, w.Body.String())
	}

	// 当天重复交卷 → 422
	w = postJSON(t, r, "/api/exam/submissions", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate submit: status %d, body %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&model.ExamSubmission{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 submission row, got %d", count)
	}
}

func TestExamSubmitEndpointForbidsOtherUsers(t *testing.T) {
	db := newControllerTestDB(t)
	actor := seedParticipant(t, db, "budi")
	victim := seedParticipant(t, db, "siti")
	r := newExamTestRouter(t, db, actor)

	w := postJSON(t, r, "/api/exam/submissions", gin.H{
		"userId":            victim.ID,
		"durationInMinutes": 80,
		"totalViolations":   0,
		"isAutoSubmit":      false,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-user submit: status %d, body %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&model.ExamSubmission{}).Count(&count)
	if count != 0 {
		t.Errorf("forbidden submit wrote %d rows", count)
	}
}

func TestExamSubmitEndpointRejectsBadPayload(t *testing.T) {
	db := newControllerTestDB(t)
	user := seedParticipant(t, db, "andi")
	r := newExamTestRouter(t, db, user)

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{
			"missing duration",
			gin.H{"userId": user.ID, "totalViolations": 0, "isAutoSubmit": false},
			http.StatusBadRequest,
		},
		{
			"negative violations",
			gin.H{"userId": user.ID, "durationInMinutes": 80, "totalViolations": -2, "isAutoSubmit": false},
			http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/api/exam/submissions", tt.body)
			if w.Code != tt.want {
				t.Errorf("status %d, want %d, body %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
