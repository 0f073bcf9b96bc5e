package service

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"lomba_backend/internal/model"
	"lomba_backend/internal/repository"
	"lomba_backend/internal/util"
)

func newUserAnswerService(db *gorm.DB) *UserAnswerService {
	return NewUserAnswerService(
		repository.NewUserAnswerRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewUserRepository(db),
	)
}

func TestSubmitAnswerUpsert(t *testing.T) {
	db := newTestDB(t)
	svc := newUserAnswerService(db)

	user := seedUser(t, db, "budi", model.LevelSD)
	q := seedQuestion(t, db, model.LevelSD)
	first := correctAnswer(t, q)
	second := wrongAnswer(t, q)

	ua, err := svc.Submit(SubmitAnswerReq{UserID: user.ID, QuestionID: q.ID, AnswerID: first.ID})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if ua.AnswerID == nil || *ua.AnswerID != first.ID {
		t.Fatalf("expected answer %s, got %v", first.ID, ua.AnswerID)
	}

	// 改答案：同一行被更新，不产生第二行
	changed, err := svc.Submit(SubmitAnswerReq{UserID: user.ID, QuestionID: q.ID, AnswerID: second.ID})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if changed.ID != ua.ID {
		t.Errorf("upsert created a new row: %s != %s", changed.ID, ua.ID)
	}
	if changed.AnswerID == nil || *changed.AnswerID != second.ID {
		t.Errorf("expected answer %s, got %v", second.ID, changed.AnswerID)
	}

	var count int64
	db.Model(&model.UserAnswer{}).
		Where("user_id = ? AND question_id = ?", user.ID, q.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}

func TestSubmitAnswerMismatchWritesNothing(t *testing.T) {
	db := newTestDB(t)
	svc := newUserAnswerService(db)

	user := seedUser(t, db, "siti", model.LevelSD)
	q1 := seedQuestion(t, db, model.LevelSD)
	q2 := seedQuestion(t, db, model.LevelSD)
	foreign := correctAnswer(t, q2)

	_, err := svc.Submit(SubmitAnswerReq{UserID: user.ID, QuestionID: q1.ID, AnswerID: foreign.ID})
	if !errors.Is(err, util.ErrAnswerMismatch) {
		t.Fatalf("expected ErrAnswerMismatch, got %v", err)
	}

	var count int64
	db.Model(&model.UserAnswer{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("mismatch submit wrote %d rows", count)
	}
}

func TestSubmitAnswerUnknownRefs(t *testing.T) {
	db := newTestDB(t)
	svc := newUserAnswerService(db)

	user := seedUser(t, db, "andi", model.LevelSD)
	q := seedQuestion(t, db, model.LevelSD)
	a := correctAnswer(t, q)

	tests := []struct {
		name string
		req  SubmitAnswerReq
		want error
	}{
		{"unknown user", SubmitAnswerReq{UserID: 9999, QuestionID: q.ID, AnswerID: a.ID}, util.ErrUserNotFound},
		{"unknown question", SubmitAnswerReq{UserID: user.ID, QuestionID: model.GenerateUUID(), AnswerID: a.ID}, util.ErrQuestionNotFound},
		{"unknown answer", SubmitAnswerReq{UserID: user.ID, QuestionID: q.ID, AnswerID: model.GenerateUUID()}, util.ErrAnswerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Submit(tt.req); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestToggleDoubt(t *testing.T) {
	db := newTestDB(t)
	svc := newUserAnswerService(db)

	user := seedUser(t, db, "rina", model.LevelSMP)
	q := seedQuestion(t, db, model.LevelSMP)
	a := correctAnswer(t, q)

	ua, err := svc.Submit(SubmitAnswerReq{UserID: user.ID, QuestionID: q.ID, AnswerID: a.ID})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	marked, err := svc.ToggleDoubt(ua.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !marked.IsDoubtful {
		t.Error("expected doubtful after first toggle")
	}
	// 标记不触碰作答内容
	if marked.AnswerID == nil || *marked.AnswerID != a.ID {
		t.Error("toggle changed the selected answer")
	}

	unmarked, err := svc.ToggleDoubt(ua.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if unmarked.IsDoubtful {
		t.Error("expected not doubtful after second toggle")
	}

	cleared, err := svc.UnsetDoubt(ua.ID)
	if err != nil {
		t.Fatalf("unset: %v", err)
	}
	if cleared.IsDoubtful {
		t.Error("expected not doubtful after unset")
	}
}

func TestRemoveAnswerAllowsReanswer(t *testing.T) {
	db := newTestDB(t)
	svc := newUserAnswerService(db)

	user := seedUser(t, db, "dewi", model.LevelSD)
	q := seedQuestion(t, db, model.LevelSD)
	a := correctAnswer(t, q)

	ua, err := svc.Submit(SubmitAnswerReq{UserID: user.ID, QuestionID: q.ID, AnswerID: a.ID})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := svc.Remove(ua.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Remove(ua.ID); !errors.Is(err, util.ErrUserAnswerNotFound) {
		t.Errorf("expected ErrUserAnswerNotFound on double remove, got %v", err)
	}

	// 删除是硬删除，重新作答不会撞唯一索引
	if _, err := svc.Submit(SubmitAnswerReq{UserID: user.ID, QuestionID: q.ID, AnswerID: a.ID}); err != nil {
		t.Fatalf("re-answer after remove: %v", err)
	}
}
