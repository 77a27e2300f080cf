package repository

import (
	"assessment_backend/internal/model"
	"context"
)

// AssignmentReader 只读访问作业、题目与选项；引擎从不写入出题数据
type AssignmentReader interface {
	// FindAssignment loads the assignment with questions and choices ordered
	// by display order. Returns util.ErrNotFound when it does not exist.
	FindAssignment(ctx context.Context, id uint) (*model.Assignment, error)
}

// AttemptStore persists attempts and their answers. Every method is a single
// atomic unit against the store.
type AttemptStore interface {
	// FindInProgress returns util.ErrNotFound when the user has no open attempt.
	FindInProgress(ctx context.Context, userID, assignmentID uint) (*model.Attempt, error)
	CountAttempts(ctx context.Context, userID, assignmentID uint) (int64, error)
	// CreateAttempt inserts the attempt together with attempt.Answers. It
	// returns util.ErrConflict when another in-progress attempt already holds
	// the same in-progress key or attempt number.
	CreateAttempt(ctx context.Context, attempt *model.Attempt) error
	FindAttempt(ctx context.Context, id uint) (*model.Attempt, error)
	ListAttempts(ctx context.Context, userID, assignmentID uint) ([]model.Attempt, error)
	ListByStatus(ctx context.Context, assignmentID uint, status model.AttemptStatus) ([]model.Attempt, error)
	// WithAttemptLock runs fn with the attempt row locked. Writes made through
	// tx are committed only if fn returns nil.
	WithAttemptLock(ctx context.Context, attemptID uint, fn func(tx AttemptTx, attempt *model.Attempt) error) error
}

type AttemptTx interface {
	ListAnswers(attemptID uint) ([]model.Answer, error)
	FindAnswer(attemptID, questionID uint) (*model.Answer, error)
	// SaveAnswer writes the whole row in one statement.
	SaveAnswer(answer *model.Answer) error
	SaveAttempt(attempt *model.Attempt) error
}
