package service

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"lomba_backend/internal/model"
	"lomba_backend/internal/repository"
	"lomba_backend/internal/util"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func newExamService(db *gorm.DB, clock func() time.Time) *ExamService {
	svc := NewExamService(
		repository.NewExamSubmissionRepository(db),
		repository.NewUserRepository(db),
	)
	if clock != nil {
		svc.now = clock
	}
	return svc
}

func validSubmitReq(userID uint) ExamSubmitReq {
	return ExamSubmitReq{
		UserID:            userID,
		DurationInMinutes: intPtr(85),
		TotalViolations:   intPtr(2),
		IsAutoSubmit:      boolPtr(false),
	}
}

func TestExamSubmit(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "budi", model.LevelSD)

	at := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	svc := newExamService(db, func() time.Time { return at })

	sub, err := svc.Submit(validSubmitReq(user.ID))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.DurationInMinutes != 85 || sub.TotalViolations != 2 || sub.IsAutoSubmit {
		t.Errorf("submission fields not persisted: %+v", sub)
	}
	if sub.SubmissionDate != "2026-03-14" {
		t.Errorf("expected submission date 2026-03-14, got %s", sub.SubmissionDate)
	}
	if !sub.SubmittedAt.Equal(at) {
		t.Errorf("expected submitted at %v, got %v", at, sub.SubmittedAt)
	}
}

func TestExamSubmitDuplicateSameDay(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "siti", model.LevelSMP)

	at := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	svc := newExamService(db, func() time.Time { return at })

	if _, err := svc.Submit(validSubmitReq(user.ID)); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// 当天再交：拒绝且不产生第二行
	at = at.Add(3 * time.Hour)
	if _, err := svc.Submit(validSubmitReq(user.ID)); !errors.Is(err, util.ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}

	var count int64
	db.Model(&model.ExamSubmission{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 submission, got %d", count)
	}

	// 次日允许
	at = at.AddDate(0, 0, 1)
	if _, err := svc.Submit(validSubmitReq(user.ID)); err != nil {
		t.Fatalf("next-day submit: %v", err)
	}
}

func TestExamSubmitValidation(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "andi", model.LevelSD)
	svc := newExamService(db, nil)

	tests := []struct {
		name   string
		mutate func(*ExamSubmitReq)
	}{
		{"nil duration", func(r *ExamSubmitReq) { r.DurationInMinutes = nil }},
		{"negative duration", func(r *ExamSubmitReq) { r.DurationInMinutes = intPtr(-1) }},
		{"nil violations", func(r *ExamSubmitReq) { r.TotalViolations = nil }},
		{"negative violations", func(r *ExamSubmitReq) { r.TotalViolations = intPtr(-5) }},
		{"nil auto flag", func(r *ExamSubmitReq) { r.IsAutoSubmit = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSubmitReq(user.ID)
			tt.mutate(&req)
			_, err := svc.Submit(req)
			if _, ok := util.AsValidationError(err); !ok {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	t.Run("unknown user", func(t *testing.T) {
		if _, err := svc.Submit(validSubmitReq(9999)); !errors.Is(err, util.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestExamSubmitMarksUserInactive(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "rina", model.LevelSD)

	at := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	svc := newExamService(db, func() time.Time { return at })

	if _, err := svc.Submit(validSubmitReq(user.ID)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	status, err := repository.NewUserRepository(db).FindStatus(user.ID)
	if err != nil {
		t.Fatalf("FindStatus: %v", err)
	}
	if status == nil {
		t.Fatal("expected a user status row after submission")
	}
	if status.Status != model.StatusInactive {
		t.Errorf("expected status inactive, got %s", status.Status)
	}
	if status.CanLogin() {
		t.Error("submitted participant should not be able to log in again")
	}
	if status.LastCBTSubmission == nil || !status.LastCBTSubmission.Equal(at) {
		t.Errorf("expected last submission %v, got %v", at, status.LastCBTSubmission)
	}
}

func TestSubmissionWindow(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	at := time.Date(2026, 3, 14, 23, 45, 0, 0, loc)

	from, to := SubmissionWindow(at)

	if !from.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, loc)) {
		t.Errorf("window start = %v", from)
	}
	if !to.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, loc)) {
		t.Errorf("window end = %v", to)
	}

	morning := time.Date(2026, 3, 14, 0, 0, 0, 0, loc)
	if morning.Before(from) || !morning.Before(to) {
		t.Error("start of day should fall inside the window")
	}
	nextDay := time.Date(2026, 3, 15, 0, 0, 0, 0, loc)
	if nextDay.Before(to) {
		t.Error("start of next day should fall outside the window")
	}
}
