package util

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrNotEligible        = errors.New("not eligible to start attempt")
	ErrAlreadyFinalized   = errors.New("attempt already finalized")
	ErrTimeExpired        = errors.New("time is over")
	ErrConflict           = errors.New("concurrent attempt creation")
	ErrAttemptInProgress  = errors.New("attempt still in progress")
	ErrNotAwaitingGrading = errors.New("attempt is not awaiting manual grading")
	ErrInvalidScore       = errors.New("score out of range")
	ErrThrottled          = errors.New("too many requests, try again later")
)

// EligibilityError 描述拒绝创建新尝试的原因
type EligibilityError struct {
	Reason  string
	Message string
}

func (e *EligibilityError) Error() string {
	return e.Message
}

func (e *EligibilityError) Is(target error) bool {
	return target == ErrNotEligible
}
