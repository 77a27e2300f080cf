package service

import (
	"assessment_backend/internal/model"

	"github.com/shopspring/decimal"
)

type ScoreResult struct {
	AutoScore decimal.Decimal
	// Outcomes 仅包含选择题，键为题目 ID
	Outcomes map[uint]bool
}

// ScoreAnswers 计算客观题得分：选中正确选项得满分，否则零分；问答题不计入。
// 纯函数，对相同输入重复调用结果一致。
func ScoreAnswers(questions []model.Question, answers []model.Answer) ScoreResult {
	byQuestion := make(map[uint]*model.Answer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	res := ScoreResult{AutoScore: decimal.Zero, Outcomes: make(map[uint]bool)}
	for i := range questions {
		q := &questions[i]
		if q.Kind != model.QuestionMcq {
			continue
		}
		correct := false
		if ans, ok := byQuestion[q.ID]; ok && ans.SelectedChoiceID != nil {
			if cid, ok := q.CorrectChoiceID(); ok && cid == *ans.SelectedChoiceID {
				correct = true
			}
		}
		res.Outcomes[q.ID] = correct
		if correct {
			res.AutoScore = res.AutoScore.Add(q.Points)
		}
	}
	return res
}

// applyOutcomes writes the per-question outcome onto the matching answers.
// Answers to essay questions keep IsCorrect nil.
func applyOutcomes(answers []model.Answer, outcomes map[uint]bool) []int {
	var changed []int
	for i := range answers {
		ok, scored := outcomes[answers[i].QuestionID]
		if !scored {
			continue
		}
		if answers[i].IsCorrect != nil && *answers[i].IsCorrect == ok {
			continue
		}
		v := ok
		answers[i].IsCorrect = &v
		changed = append(changed, i)
	}
	return changed
}
