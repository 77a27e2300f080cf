package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptGraded     AttemptStatus = "graded"
)

// swagger:model Attempt
type Attempt struct {
	BaseModel

	AssignmentID  uint `gorm:"index;uniqueIndex:idx_attempt_number,priority:2;type:bigint unsigned" json:"assignmentId"`
	UserID        uint `gorm:"index;uniqueIndex:idx_attempt_number,priority:1;type:bigint unsigned" json:"userId"`
	AttemptNumber int  `gorm:"uniqueIndex:idx_attempt_number,priority:3" json:"attemptNumber"`

	StartedAt   time.Time  `json:"startedAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`

	// 创建时的快照，作业后续修改不影响进行中的尝试
	DurationMinutes       int             `json:"durationMinutes"`
	RequiresManualGrading bool            `gorm:"default:false" json:"requiresManualGrading"`
	MaxScore              decimal.Decimal `gorm:"type:decimal(8,2)" json:"maxScore"`

	AutoScore  *decimal.Decimal `gorm:"type:decimal(8,2)" json:"autoScore"`
	FinalScore *decimal.Decimal `gorm:"type:decimal(8,2)" json:"finalScore"`
	Status     AttemptStatus    `gorm:"size:20;index;default:'in_progress'" json:"status"`

	// Set only while in progress; the unique index allows a single open attempt per user and assignment.
	InProgressKey *string `gorm:"size:64;uniqueIndex" json:"-"`

	GradedBy *uint      `gorm:"type:bigint unsigned" json:"gradedBy,omitempty"`
	GradedAt *time.Time `json:"gradedAt,omitempty"`

	Answers []Answer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
}

func (Attempt) TableName() string {
	return "assignment_attempts"
}

// swagger:model Answer
type Answer struct {
	BaseModel
	AttemptID        uint    `gorm:"uniqueIndex:idx_answer_attempt_question,priority:1;type:bigint unsigned" json:"attemptId"`
	QuestionID       uint    `gorm:"uniqueIndex:idx_answer_attempt_question,priority:2;type:bigint unsigned" json:"questionId"`
	SelectedChoiceID *uint   `gorm:"type:bigint unsigned" json:"selectedChoiceId"`
	TextAnswer       *string `gorm:"size:8000" json:"textAnswer"`
	// 定稿时写入，历史回放不依赖选项当前的正确标记
	IsCorrect *bool `json:"isCorrect,omitempty"`
}

func (Answer) TableName() string {
	return "assignment_answers"
}

func InProgressKeyFor(userID, assignmentID uint) string {
	return fmt.Sprintf("%d:%d", userID, assignmentID)
}

func (a *Attempt) DueAt() time.Time {
	return a.StartedAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// IsExpired reports whether now is past the attempt's snapshot duration.
func (a *Attempt) IsExpired(now time.Time) bool {
	return now.After(a.DueAt())
}

func (a *Attempt) IsInProgress() bool {
	return a.Status == AttemptInProgress
}

// Clone returns a copy that shares no mutable state with a.
func (a *Attempt) Clone() *Attempt {
	c := *a
	c.SubmittedAt = cloneTime(a.SubmittedAt)
	c.GradedAt = cloneTime(a.GradedAt)
	c.AutoScore = cloneDecimal(a.AutoScore)
	c.FinalScore = cloneDecimal(a.FinalScore)
	if a.InProgressKey != nil {
		k := *a.InProgressKey
		c.InProgressKey = &k
	}
	if a.GradedBy != nil {
		g := *a.GradedBy
		c.GradedBy = &g
	}
	if a.Answers != nil {
		c.Answers = make([]Answer, len(a.Answers))
		for i := range a.Answers {
			c.Answers[i] = a.Answers[i].Clone()
		}
	}
	return &c
}

func (a Answer) Clone() Answer {
	c := a
	if a.SelectedChoiceID != nil {
		v := *a.SelectedChoiceID
		c.SelectedChoiceID = &v
	}
	if a.TextAnswer != nil {
		v := *a.TextAnswer
		c.TextAnswer = &v
	}
	if a.IsCorrect != nil {
		v := *a.IsCorrect
		c.IsCorrect = &v
	}
	return c
}

// IsAnswered treats whitespace-only essay text as unanswered.
func (a *Answer) IsAnswered() bool {
	if a.SelectedChoiceID != nil {
		return true
	}
	return a.TextAnswer != nil && strings.TrimSpace(*a.TextAnswer) != ""
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
