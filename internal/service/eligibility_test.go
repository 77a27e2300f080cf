package service

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/util"
	"errors"
	"testing"
	"time"
)

func TestEvaluateEligibility(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name          string
		openAt        *time.Time
		closeAt       *time.Time
		maxAttempts   int
		prior         int64
		hasInProgress bool
		want          EligibilityStatus
	}{
		{name: "no window, unused", maxAttempts: 1, want: Eligible},
		{name: "open window", openAt: &past, closeAt: &future, maxAttempts: 2, prior: 1, want: Eligible},
		{name: "not yet open", openAt: &future, maxAttempts: 1, want: NotYetOpen},
		{name: "closed", closeAt: &past, maxAttempts: 1, want: Closed},
		{name: "closed but in progress", closeAt: &past, maxAttempts: 3, prior: 1, hasInProgress: true, want: Eligible},
		{name: "exhausted", maxAttempts: 2, prior: 2, want: AttemptsExhausted},
		{name: "closed wins over exhausted", closeAt: &past, maxAttempts: 1, prior: 1, want: Closed},
		{name: "not open wins over exhausted", openAt: &future, maxAttempts: 1, prior: 5, want: NotYetOpen},
		{name: "unlimited", maxAttempts: 0, prior: 100, want: Eligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &model.Assignment{OpenAt: tt.openAt, CloseAt: tt.closeAt, MaxAttempts: tt.maxAttempts}
			got := EvaluateEligibility(a, now, tt.prior, tt.hasInProgress)
			if got.Status != tt.want {
				t.Fatalf("status = %s, want %s", got.Status, tt.want)
			}
			if tt.want == Eligible {
				if got.Err() != nil {
					t.Fatalf("Err() = %v, want nil", got.Err())
				}
				return
			}
			err := got.Err()
			if !errors.Is(err, util.ErrNotEligible) {
				t.Fatalf("Err() = %v, want ErrNotEligible", err)
			}
			var ee *util.EligibilityError
			if !errors.As(err, &ee) || ee.Reason != string(tt.want) || ee.Message == "" {
				t.Fatalf("eligibility error = %+v", ee)
			}
		})
	}
}

func TestEligibilityExhaustedMessage(t *testing.T) {
	a := &model.Assignment{MaxAttempts: 1}
	got := EvaluateEligibility(a, time.Now(), 1, false)
	if got.Message != "You have reached the attempt limit (1 / 1)." {
		t.Fatalf("message = %q", got.Message)
	}
}
