package service

import (
	"assessment_backend/internal/model"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AttemptSummary 历史记录中的单次尝试。EssayScore 与 FinalScore 为 nil 表示待批改。
type AttemptSummary struct {
	AttemptID       uint                `json:"attemptId"`
	AttemptNumber   int                 `json:"attemptNumber"`
	Status          model.AttemptStatus `json:"status"`
	StartedAt       time.Time           `json:"startedAt"`
	SubmittedAt     *time.Time          `json:"submittedAt,omitempty"`
	DurationMinutes int                 `json:"durationMinutes"`

	McqTotal   int              `json:"mcqTotal"`
	McqCorrect int              `json:"mcqCorrect"`
	McqScore   decimal.Decimal  `json:"mcqScore"`
	McqMax     decimal.Decimal  `json:"mcqMax"`
	EssayScore *decimal.Decimal `json:"essayScore"`
	EssayMax   decimal.Decimal  `json:"essayMax"`
	FinalScore *decimal.Decimal `json:"finalScore"`
	FinalMax   decimal.Decimal  `json:"finalMax"`
}

type AttemptHistory struct {
	AssignmentID    uint             `json:"assignmentId"`
	AssignmentTitle string           `json:"assignmentTitle"`
	WindowStatus    string           `json:"windowStatus"`
	MaxAttempts     int              `json:"maxAttempts"`
	AttemptsUsed    int              `json:"attemptsUsed"`
	Attempts        []AttemptSummary `json:"attempts"`
}

// BuildHistory 只读地汇总一个用户在某作业下的全部尝试，按提交时间（无则开始时间）倒序。
// 不依赖 AutoScore / IsCorrect 是否已落库，兼容旧数据。
func BuildHistory(a *model.Assignment, attempts []model.Attempt) []AttemptSummary {
	var mcqQs, essayQs []*model.Question
	for i := range a.Questions {
		switch a.Questions[i].Kind {
		case model.QuestionMcq:
			mcqQs = append(mcqQs, &a.Questions[i])
		case model.QuestionEssay:
			essayQs = append(essayQs, &a.Questions[i])
		}
	}

	mcqMax, essayMax := decimal.Zero, decimal.Zero
	points := make(map[uint]decimal.Decimal, len(mcqQs))
	correctChoice := make(map[uint]uint, len(mcqQs))
	for _, q := range mcqQs {
		mcqMax = mcqMax.Add(q.Points)
		points[q.ID] = q.Points
		if cid, ok := q.CorrectChoiceID(); ok {
			correctChoice[q.ID] = cid
		}
	}
	for _, q := range essayQs {
		essayMax = essayMax.Add(q.Points)
	}

	summaries := make([]AttemptSummary, 0, len(attempts))
	for i := range attempts {
		t := &attempts[i]

		correct := 0
		recomputed := decimal.Zero
		for _, ans := range t.Answers {
			p, isMcq := points[ans.QuestionID]
			if !isMcq || !answerCorrect(ans, correctChoice) {
				continue
			}
			correct++
			recomputed = recomputed.Add(p)
		}

		mcqScore := recomputed
		if t.AutoScore != nil {
			mcqScore = *t.AutoScore
		}

		var essayScore, finalScore *decimal.Decimal
		switch {
		case t.Status == model.AttemptInProgress:
			// not scored yet
		case t.RequiresManualGrading:
			if t.FinalScore != nil {
				v := clamp(t.FinalScore.Sub(mcqScore), decimal.Zero, essayMax)
				essayScore = &v
				f := *t.FinalScore
				finalScore = &f
			}
		default:
			zero := decimal.Zero
			essayScore = &zero
			f := mcqScore
			if t.FinalScore != nil {
				f = *t.FinalScore
			}
			finalScore = &f
		}

		summaries = append(summaries, AttemptSummary{
			AttemptID:       t.ID,
			AttemptNumber:   t.AttemptNumber,
			Status:          t.Status,
			StartedAt:       t.StartedAt,
			SubmittedAt:     t.SubmittedAt,
			DurationMinutes: t.DurationMinutes,
			McqTotal:        len(mcqQs),
			McqCorrect:      correct,
			McqScore:        mcqScore,
			McqMax:          mcqMax,
			EssayScore:      essayScore,
			EssayMax:        essayMax,
			FinalScore:      finalScore,
			FinalMax:        mcqMax.Add(essayMax),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		ti, tj := sortKey(summaries[i]), sortKey(summaries[j])
		if ti.Equal(tj) {
			return summaries[i].AttemptNumber > summaries[j].AttemptNumber
		}
		return ti.After(tj)
	})
	return summaries
}

// answerCorrect prefers the outcome stored at finalization and falls back to
// the question's current correct choice.
func answerCorrect(ans model.Answer, correctChoice map[uint]uint) bool {
	if ans.IsCorrect != nil {
		return *ans.IsCorrect
	}
	if ans.SelectedChoiceID == nil {
		return false
	}
	cid, ok := correctChoice[ans.QuestionID]
	return ok && cid == *ans.SelectedChoiceID
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

func sortKey(s AttemptSummary) time.Time {
	if s.SubmittedAt != nil {
		return *s.SubmittedAt
	}
	return s.StartedAt
}
