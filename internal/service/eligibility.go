package service

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/util"
	"fmt"
	"time"
)

type EligibilityStatus string

const (
	Eligible          EligibilityStatus = "eligible"
	NotYetOpen        EligibilityStatus = "not_yet_open"
	Closed            EligibilityStatus = "closed"
	AttemptsExhausted EligibilityStatus = "attempts_exhausted"
)

type Eligibility struct {
	Status  EligibilityStatus `json:"status"`
	Message string            `json:"message,omitempty"`
}

// EvaluateEligibility 判断用户能否开始新的尝试。
// 时间窗口的原因优先于次数用尽；已有进行中的尝试时关闭不影响继续作答。
func EvaluateEligibility(a *model.Assignment, now time.Time, priorAttempts int64, hasInProgress bool) Eligibility {
	if a.OpenAt != nil && now.Before(*a.OpenAt) {
		return Eligibility{Status: NotYetOpen, Message: "This assignment is not open yet."}
	}
	if a.CloseAt != nil && now.After(*a.CloseAt) && !hasInProgress {
		return Eligibility{Status: Closed, Message: "This assignment is closed. You cannot start a new attempt."}
	}
	if a.MaxAttempts > 0 && priorAttempts >= int64(a.MaxAttempts) {
		return Eligibility{
			Status:  AttemptsExhausted,
			Message: fmt.Sprintf("You have reached the attempt limit (%d / %d).", priorAttempts, a.MaxAttempts),
		}
	}
	return Eligibility{Status: Eligible}
}

// Err returns nil when eligible, otherwise an *util.EligibilityError.
func (e Eligibility) Err() error {
	if e.Status == Eligible {
		return nil
	}
	return &util.EligibilityError{Reason: string(e.Status), Message: e.Message}
}
