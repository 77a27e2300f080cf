package service

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/util"
	"context"
	"errors"
	"testing"
	"time"
)

func TestSetFinalScoreRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.assignment(t, 3, 30, mcq(1, "1", 0), essay(2, "2"))

	attempt, _ := f.attempts.StartOrResumeAttempt(ctx, a.ID, 7)

	if _, err := f.grading.SetFinalScore(ctx, attempt.ID, 99, dec("1")); !errors.Is(err, util.ErrNotAwaitingGrading) {
		t.Fatalf("grading in-progress attempt err = %v", err)
	}

	if _, err := f.attempts.FinishAttempt(ctx, attempt.ID, 7); err != nil {
		t.Fatal(err)
	}

	for _, bad := range []string{"-0.5", "3.01"} {
		if _, err := f.grading.SetFinalScore(ctx, attempt.ID, 99, dec(bad)); !errors.Is(err, util.ErrInvalidScore) {
			t.Fatalf("score %s err = %v, want invalid score", bad, err)
		}
	}

	graded, err := f.grading.SetFinalScore(ctx, attempt.ID, 99, dec("3"))
	if err != nil {
		t.Fatal(err)
	}
	if graded.GradedAt == nil || !graded.GradedAt.Equal(f.clock.Now()) {
		t.Fatalf("graded at = %v", graded.GradedAt)
	}

	if _, err := f.grading.SetFinalScore(ctx, attempt.ID, 99, dec("2")); !errors.Is(err, util.ErrNotAwaitingGrading) {
		t.Fatalf("regrading a graded attempt err = %v", err)
	}
	if _, err := f.grading.SetFinalScore(ctx, 12345, 99, dec("2")); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("unknown attempt err = %v", err)
	}
}

func TestListPendingGrading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.assignment(t, 3, 30, essay(1, "2"))

	for _, user := range []uint{7, 8, 9} {
		attempt, err := f.attempts.StartOrResumeAttempt(ctx, a.ID, user)
		if err != nil {
			t.Fatal(err)
		}
		if user != 9 {
			if _, err := f.attempts.FinishAttempt(ctx, attempt.ID, user); err != nil {
				t.Fatal(err)
			}
			f.clock.Advance(time.Second)
		}
	}

	pending, err := f.grading.ListPendingGrading(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 || pending[0].UserID != 7 || pending[1].UserID != 8 {
		t.Fatalf("pending = %+v", pending)
	}

	if _, err := f.grading.ListPendingGrading(ctx, 404); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("unknown assignment err = %v", err)
	}
}

func TestRegradeAfterKeyChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.assignment(t, 1, 30, mcq(1, "2", 0))
	q := a.Questions[0]

	attempt, _ := f.attempts.StartOrResumeAttempt(ctx, a.ID, 7)
	if err := f.attempts.RecordAnswer(ctx, attempt.ID, 7, q.ID, AnswerInput{ChoiceID: wrongChoice(q)}); err != nil {
		t.Fatal(err)
	}
	done, _ := f.attempts.FinishAttempt(ctx, attempt.ID, 7)
	if !done.FinalScore.IsZero() {
		t.Fatalf("final = %s, want 0", done.FinalScore)
	}

	// the author fixes the answer key to the choice the student picked
	edited, _ := f.store.FindAssignment(ctx, a.ID)
	picked := *wrongChoice(q)
	for i := range edited.Questions[0].Choices {
		edited.Questions[0].Choices[i].IsCorrect = edited.Questions[0].Choices[i].ID == picked
	}
	if err := f.store.UpdateAssignment(edited); err != nil {
		t.Fatal(err)
	}

	first, err := f.grading.Regrade(ctx, attempt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !first.AutoScore.Equal(dec("2")) || !first.FinalScore.Equal(dec("2")) {
		t.Fatalf("after regrade auto=%s final=%s", first.AutoScore, first.FinalScore)
	}
	if first.Answers[0].IsCorrect == nil || !*first.Answers[0].IsCorrect {
		t.Fatal("answer outcome not rewritten")
	}

	second, err := f.grading.Regrade(ctx, attempt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !second.AutoScore.Equal(*first.AutoScore) {
		t.Fatalf("regrade not idempotent: %s vs %s", first.AutoScore, second.AutoScore)
	}
}

func TestRegradeKeepsManualFinalScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.assignment(t, 1, 30, mcq(1, "1", 0), essay(2, "4"))

	attempt, _ := f.attempts.StartOrResumeAttempt(ctx, a.ID, 7)
	_, _ = f.attempts.FinishAttempt(ctx, attempt.ID, 7)
	if _, err := f.grading.SetFinalScore(ctx, attempt.ID, 99, dec("3.5")); err != nil {
		t.Fatal(err)
	}

	got, err := f.grading.Regrade(ctx, attempt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.FinalScore.Equal(dec("3.5")) || got.Status != model.AttemptGraded {
		t.Fatalf("manual grade lost: %+v", got)
	}
}

func TestRegradeThrottleAndInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grading.SetRegradeCooldown(time.Minute)
	a := f.assignment(t, 1, 30, mcq(1, "1", 0))

	attempt, _ := f.attempts.StartOrResumeAttempt(ctx, a.ID, 7)
	if _, err := f.grading.Regrade(ctx, attempt.ID); !errors.Is(err, util.ErrAttemptInProgress) {
		t.Fatalf("regrade in-progress err = %v", err)
	}

	_, _ = f.attempts.FinishAttempt(ctx, attempt.ID, 7)
	if _, err := f.grading.Regrade(ctx, attempt.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.grading.Regrade(ctx, attempt.ID); !errors.Is(err, util.ErrThrottled) {
		t.Fatalf("second regrade err = %v, want throttled", err)
	}

	f.clock.Advance(time.Minute + time.Second)
	if _, err := f.grading.Regrade(ctx, attempt.ID); err != nil {
		t.Fatalf("regrade after cooldown: %v", err)
	}
}

type unavailableAssignments struct{}

func (unavailableAssignments) FindAssignment(context.Context, uint) (*model.Assignment, error) {
	return nil, errors.New("connection refused")
}

func TestRegradeFailureKeepsCooldownFree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grading.SetRegradeCooldown(time.Minute)
	a := f.assignment(t, 1, 30, mcq(1, "1", 0))

	attempt, _ := f.attempts.StartOrResumeAttempt(ctx, a.ID, 7)
	_, _ = f.attempts.FinishAttempt(ctx, attempt.ID, 7)

	f.grading.Assignments = unavailableAssignments{}
	if _, err := f.grading.Regrade(ctx, attempt.ID); err == nil || errors.Is(err, util.ErrThrottled) {
		t.Fatalf("regrade with store down err = %v", err)
	}

	f.grading.Assignments = f.store
	if _, err := f.grading.Regrade(ctx, attempt.ID); err != nil {
		t.Fatalf("regrade after failed attempt: %v", err)
	}
	if _, err := f.grading.Regrade(ctx, attempt.ID); !errors.Is(err, util.ErrThrottled) {
		t.Fatalf("third regrade err = %v, want throttled", err)
	}
}
