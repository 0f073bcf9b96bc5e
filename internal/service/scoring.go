package service

import (
	"lomba_backend/internal/model"
	"math"
)

// 计分规则：答对 +4，答错 -1，未作答 0。总分可以为负
const (
	PointsCorrect    = 4
	PointsIncorrect  = -1
	PointsUnanswered = 0
)

// ScoreBreakdown 一次考试的派生成绩。不落库，每次读取时重算，
// 保证分数永远反映当前存储的作答
type ScoreBreakdown struct {
	TotalQuestions int     `json:"totalQuestions"`
	Answered       int     `json:"answered"`
	Correct        int     `json:"correct"`
	Wrong          int     `json:"wrong"`
	Unanswered     int     `json:"unanswered"`
	Marked         int     `json:"marked"`
	Score          int     `json:"score"`
	Percentage     float64 `json:"percentage"`
}

// CalculateScore 对一组作答记录计分。纯函数，无副作用。
//
// totalQuestions 是该用户学段的题库总数，作为百分比的分母统一使用；
// 未作答数由分母减去有效作答数得出，因此从未写入 user_answers 的题
// 也计为未作答。
//
// 分类规则：
//   - answer_id 为空，或关联选项已被删除（悬空引用）→ 未作答，0 分
//   - 选项 is_correct → 答对，+4
//   - 其余 → 答错，-1
func CalculateScore(userAnswers []model.UserAnswer, totalQuestions int) ScoreBreakdown {
	b := ScoreBreakdown{TotalQuestions: totalQuestions}

	for i := range userAnswers {
		ua := &userAnswers[i]
		if ua.IsDoubtful {
			b.Marked++
		}
		if ua.AnswerID == nil || ua.Answer == nil {
			continue
		}
		if ua.Answer.IsCorrect {
			b.Correct++
		} else {
			b.Wrong++
		}
	}

	b.Answered = b.Correct + b.Wrong
	b.Unanswered = b.TotalQuestions - b.Answered
	if b.Unanswered < 0 {
		// 题库被删到比作答数还少时不报负数
		b.Unanswered = 0
	}

	b.Score = b.Correct*PointsCorrect + b.Wrong*PointsIncorrect
	b.Percentage = Percentage(b.Correct, b.TotalQuestions)
	return b
}

// Percentage 四舍五入到两位小数，total 为 0 时返回 0
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}
