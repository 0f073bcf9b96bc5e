package service

import (
	"errors"
	"testing"

	"lomba_backend/internal/model"
	"lomba_backend/internal/repository"
	"lomba_backend/internal/util"
)

func validQuestionReq() QuestionReq {
	return QuestionReq{
		Level:        model.LevelSD,
		Type:         model.ContentText,
		QuestionText: "Planet terdekat dari matahari?",
		Answers: []QuestionAnswerReq{
			{Type: model.ContentText, AnswerText: "Merkurius", IsCorrect: true},
			{Type: model.ContentText, AnswerText: "Venus"},
			{Type: model.ContentText, AnswerText: "Bumi"},
			{Type: model.ContentText, AnswerText: "Mars"},
		},
	}
}

func TestQuestionCreateValidation(t *testing.T) {
	svc := NewQuestionService(repository.NewQuestionRepository(newTestDB(t)))

	tests := []struct {
		name   string
		mutate func(*QuestionReq)
	}{
		{"unknown level", func(r *QuestionReq) { r.Level = "SMA" }},
		{"unknown content type", func(r *QuestionReq) { r.Type = "video" }},
		{"three answers", func(r *QuestionReq) { r.Answers = r.Answers[:3] }},
		{"five answers", func(r *QuestionReq) {
			r.Answers = append(r.Answers, QuestionAnswerReq{Type: model.ContentText, AnswerText: "Jupiter"})
		}},
		{"no correct answer", func(r *QuestionReq) { r.Answers[0].IsCorrect = false }},
		{"two correct answers", func(r *QuestionReq) { r.Answers[1].IsCorrect = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validQuestionReq()
			tt.mutate(&req)
			_, err := svc.Create(req)
			if _, ok := util.AsValidationError(err); !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestQuestionCreatePersistsAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionService(repository.NewQuestionRepository(db))

	q, err := svc.Create(validQuestionReq())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(q.Answers) != 4 {
		t.Fatalf("expected 4 answers, got %d", len(q.Answers))
	}

	correct := 0
	for _, a := range q.Answers {
		if a.QuestionID != q.ID {
			t.Errorf("answer %s not linked to question", a.ID)
		}
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		t.Errorf("expected exactly 1 correct answer, got %d", correct)
	}
}

func TestQuestionUpdatePreservesAnswerIdentity(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionService(repository.NewQuestionRepository(db))

	q, err := svc.Create(validQuestionReq())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 带回原 ID 更新文本并换正确答案
	req := QuestionReq{
		Level:        q.Level,
		Type:         q.Type,
		QuestionText: "Planet kedua dari matahari?",
		Answers:      make([]QuestionAnswerReq, len(q.Answers)),
	}
	for i, a := range q.Answers {
		req.Answers[i] = QuestionAnswerReq{
			ID:         a.ID,
			Type:       a.Type,
			AnswerText: a.AnswerText + " (edited)",
			IsCorrect:  a.AnswerText == "Venus",
		}
	}

	updated, err := svc.Update(q.ID, req)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	oldIDs := make(map[string]bool, len(q.Answers))
	for _, a := range q.Answers {
		oldIDs[a.ID] = true
	}
	for _, a := range updated.Answers {
		if !oldIDs[a.ID] {
			t.Errorf("answer %s lost its identity on update", a.AnswerText)
		}
	}
	if updated.QuestionText != req.QuestionText {
		t.Errorf("question text not updated: %s", updated.QuestionText)
	}
}

func TestQuestionUpdateReconcilesRemovedAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionService(repository.NewQuestionRepository(db))

	q, err := svc.Create(validQuestionReq())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 保留 3 个旧选项，第 4 个换成不带 ID 的新选项
	req := QuestionReq{
		Level:   q.Level,
		Type:    q.Type,
		Answers: make([]QuestionAnswerReq, 0, 4),
	}
	for _, a := range q.Answers[:3] {
		req.Answers = append(req.Answers, QuestionAnswerReq{
			ID: a.ID, Type: a.Type, AnswerText: a.AnswerText, IsCorrect: a.IsCorrect,
		})
	}
	req.Answers = append(req.Answers, QuestionAnswerReq{
		Type: model.ContentText, AnswerText: "Saturnus",
	})

	updated, err := svc.Update(q.ID, req)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Answers) != 4 {
		t.Fatalf("expected 4 answers after reconcile, got %d", len(updated.Answers))
	}

	removedID := q.Answers[3].ID
	var count int64
	db.Model(&model.Answer{}).Where("id = ?", removedID).Count(&count)
	if count != 0 {
		t.Errorf("replaced answer %s still present", removedID)
	}
}

func TestQuestionDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionService(repository.NewQuestionRepository(db))

	q, err := svc.Create(validQuestionReq())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(q.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := svc.Get(q.ID); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("expected ErrQuestionNotFound after delete, got %v", err)
	}

	var count int64
	db.Unscoped().Model(&model.Answer{}).
		Where("question_id = ? AND deleted_at IS NULL", q.ID).
		Count(&count)
	if count != 0 {
		t.Errorf("expected answers deleted with question, %d remain", count)
	}

	if err := svc.Delete(q.ID); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("expected ErrQuestionNotFound on double delete, got %v", err)
	}
}
