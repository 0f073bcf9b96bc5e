package service

import (
	"testing"

	"lomba_backend/internal/model"
)

func answered(correct bool) model.UserAnswer {
	id := model.GenerateUUID()
	return model.UserAnswer{
		AnswerID: &id,
		Answer:   &model.Answer{IsCorrect: correct},
	}
}

func TestCalculateScore(t *testing.T) {
	dangling := model.GenerateUUID()

	tests := []struct {
		name           string
		answers        []model.UserAnswer
		totalQuestions int
		want           ScoreBreakdown
	}{
		{
			name: "mixed results",
			answers: []model.UserAnswer{
				answered(true), answered(true), answered(true),
				answered(false), answered(false),
			},
			totalQuestions: 6,
			want: ScoreBreakdown{
				TotalQuestions: 6, Answered: 5, Correct: 3, Wrong: 2,
				Unanswered: 1, Score: 10, Percentage: 50,
			},
		},
		{
			name:           "no answers at all",
			answers:        nil,
			totalQuestions: 4,
			want: ScoreBreakdown{
				TotalQuestions: 4, Unanswered: 4, Score: 0, Percentage: 0,
			},
		},
		{
			name: "all wrong goes negative",
			answers: []model.UserAnswer{
				answered(false), answered(false), answered(false),
			},
			totalQuestions: 5,
			want: ScoreBreakdown{
				TotalQuestions: 5, Answered: 3, Wrong: 3,
				Unanswered: 2, Score: -3, Percentage: 0,
			},
		},
		{
			name: "dangling answer reference counts as unanswered",
			answers: []model.UserAnswer{
				answered(true),
				{AnswerID: &dangling, Answer: nil},
			},
			totalQuestions: 2,
			want: ScoreBreakdown{
				TotalQuestions: 2, Answered: 1, Correct: 1,
				Unanswered: 1, Score: 4, Percentage: 50,
			},
		},
		{
			name: "nil answer id counts as unanswered but keeps doubt mark",
			answers: []model.UserAnswer{
				{AnswerID: nil, IsDoubtful: true},
				answered(true),
			},
			totalQuestions: 2,
			want: ScoreBreakdown{
				TotalQuestions: 2, Answered: 1, Correct: 1,
				Unanswered: 1, Marked: 1, Score: 4, Percentage: 50,
			},
		},
		{
			name: "more answers than questions clamps unanswered at zero",
			answers: []model.UserAnswer{
				answered(true), answered(true), answered(false),
			},
			totalQuestions: 2,
			want: ScoreBreakdown{
				TotalQuestions: 2, Answered: 3, Correct: 2, Wrong: 1,
				Unanswered: 0, Score: 7, Percentage: 100,
			},
		},
		{
			name:           "zero questions",
			answers:        []model.UserAnswer{answered(true)},
			totalQuestions: 0,
			want: ScoreBreakdown{
				TotalQuestions: 0, Answered: 1, Correct: 1,
				Unanswered: 0, Score: 4, Percentage: 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateScore(tt.answers, tt.totalQuestions)
			if got != tt.want {
				t.Errorf("CalculateScore() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPercentageRounding(t *testing.T) {
	tests := []struct {
		correct, total int
		want           float64
	}{
		{1, 3, 33.33},
		{2, 3, 66.67},
		{3, 6, 50},
		{0, 10, 0},
		{10, 10, 100},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := Percentage(tt.correct, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %v, want %v", tt.correct, tt.total, got, tt.want)
		}
	}
}
