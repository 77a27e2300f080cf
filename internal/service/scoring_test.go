package service

import (
	"assessment_backend/internal/model"
	"testing"
)

func scoringQuestions() []model.Question {
	q1 := mcq(1, "1.5", 0)
	q1.ID = 1
	q1.Choices[0].ID, q1.Choices[1].ID, q1.Choices[2].ID = 11, 12, 13
	q2 := mcq(2, "0.25", 2)
	q2.ID = 2
	q2.Choices[0].ID, q2.Choices[1].ID, q2.Choices[2].ID = 21, 22, 23
	q3 := essay(3, "5")
	q3.ID = 3
	return []model.Question{q1, q2, q3}
}

func TestScoreAnswers(t *testing.T) {
	c11, c22, c23 := uint(11), uint(22), uint(23)

	tests := []struct {
		name     string
		answers  []model.Answer
		want     string
		outcomes map[uint]bool
	}{
		{
			name:     "all correct, essay ignored",
			answers:  []model.Answer{{QuestionID: 1, SelectedChoiceID: &c11}, {QuestionID: 2, SelectedChoiceID: &c23}, {QuestionID: 3, TextAnswer: strPtr("long text")}},
			want:     "1.75",
			outcomes: map[uint]bool{1: true, 2: true},
		},
		{
			name:     "one wrong",
			answers:  []model.Answer{{QuestionID: 1, SelectedChoiceID: &c11}, {QuestionID: 2, SelectedChoiceID: &c22}},
			want:     "1.5",
			outcomes: map[uint]bool{1: true, 2: false},
		},
		{
			name:     "unanswered",
			answers:  []model.Answer{{QuestionID: 1}, {QuestionID: 2, TextAnswer: strPtr("")}},
			want:     "0",
			outcomes: map[uint]bool{1: false, 2: false},
		},
		{
			name:     "missing answer rows",
			want:     "0",
			outcomes: map[uint]bool{1: false, 2: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreAnswers(scoringQuestions(), tt.answers)
			if !got.AutoScore.Equal(dec(tt.want)) {
				t.Fatalf("auto score = %s, want %s", got.AutoScore, tt.want)
			}
			if len(got.Outcomes) != len(tt.outcomes) {
				t.Fatalf("outcomes = %v, want %v", got.Outcomes, tt.outcomes)
			}
			for id, ok := range tt.outcomes {
				if got.Outcomes[id] != ok {
					t.Fatalf("outcome[%d] = %v, want %v", id, got.Outcomes[id], ok)
				}
			}
		})
	}
}

func TestScoreAnswersIdempotent(t *testing.T) {
	c11 := uint(11)
	answers := []model.Answer{{QuestionID: 1, SelectedChoiceID: &c11}}
	qs := scoringQuestions()

	first := ScoreAnswers(qs, answers)
	second := ScoreAnswers(qs, answers)
	if !first.AutoScore.Equal(second.AutoScore) {
		t.Fatalf("scores differ: %s vs %s", first.AutoScore, second.AutoScore)
	}
}

func TestScoreAnswersExactDecimal(t *testing.T) {
	// 0.1 * 3 drifts in float64
	var qs []model.Question
	var answers []model.Answer
	for i := 1; i <= 3; i++ {
		q := mcq(i, "0.1", 0)
		q.ID = uint(i)
		q.Choices[0].ID = uint(100 + i)
		qs = append(qs, q)
		cid := uint(100 + i)
		answers = append(answers, model.Answer{QuestionID: uint(i), SelectedChoiceID: &cid})
	}
	got := ScoreAnswers(qs, answers)
	if got.AutoScore.String() != "0.3" {
		t.Fatalf("auto score = %s, want 0.3", got.AutoScore)
	}
}

func TestApplyOutcomes(t *testing.T) {
	stale := true
	answers := []model.Answer{
		{QuestionID: 1, IsCorrect: &stale},
		{QuestionID: 2},
		{QuestionID: 3},
	}
	changed := applyOutcomes(answers, map[uint]bool{1: true, 2: false})
	if len(changed) != 1 || changed[0] != 1 {
		t.Fatalf("changed = %v, want [1]", changed)
	}
	if answers[1].IsCorrect == nil || *answers[1].IsCorrect {
		t.Fatal("question 2 outcome not recorded")
	}
	if answers[2].IsCorrect != nil {
		t.Fatal("essay answer must keep nil outcome")
	}
}
