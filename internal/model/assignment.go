package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AssignmentKind string

const (
	AssignmentMcq   AssignmentKind = "mcq"
	AssignmentEssay AssignmentKind = "essay"
	AssignmentMixed AssignmentKind = "mixed"
)

type QuestionKind string

const (
	QuestionMcq   QuestionKind = "mcq"
	QuestionEssay QuestionKind = "essay"
)

// swagger:model Assignment
type Assignment struct {
	BaseModel
	ClassroomID     uint           `gorm:"index;type:bigint unsigned" json:"classroomId"`
	CreatorID       uint           `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Title           string         `gorm:"size:160;not null" json:"title"`
	Description     string         `gorm:"size:400" json:"description"`
	Kind            AssignmentKind `gorm:"size:10" json:"kind"`
	DurationMinutes int            `gorm:"default:30" json:"durationMinutes"`
	MaxAttempts     int            `gorm:"default:1" json:"maxAttempts"`
	OpenAt          *time.Time     `json:"openAt,omitempty"`
	CloseAt         *time.Time     `json:"closeAt,omitempty"`
	Questions       []Question     `gorm:"foreignKey:AssignmentID" json:"questions,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// swagger:model Question
type Question struct {
	BaseModel
	AssignmentID uint            `gorm:"index;uniqueIndex:idx_question_order,priority:1;type:bigint unsigned" json:"assignmentId"`
	Kind         QuestionKind    `gorm:"size:10;not null" json:"kind"`
	Prompt       string          `gorm:"size:1000;not null" json:"prompt"`
	Points       decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"points"`
	Order        int             `gorm:"uniqueIndex:idx_question_order,priority:2" json:"order"`
	Choices      []Choice        `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "assignment_questions"
}

// swagger:model Choice
type Choice struct {
	BaseModel
	QuestionID uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	Text       string `gorm:"size:400;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Order      int    `gorm:"default:0" json:"order"`
}

func (Choice) TableName() string {
	return "assignment_choices"
}

// CorrectChoiceID returns the id of the choice marked correct.
func (q *Question) CorrectChoiceID() (uint, bool) {
	for _, c := range q.Choices {
		if c.IsCorrect {
			return c.ID, true
		}
	}
	return 0, false
}

func (q *Question) HasChoice(choiceID uint) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

// DeriveKind 由题目组成推导作业类型，作者不能直接设置
func (a *Assignment) DeriveKind() AssignmentKind {
	hasMcq, hasEssay := false, false
	for _, q := range a.Questions {
		switch q.Kind {
		case QuestionMcq:
			hasMcq = true
		case QuestionEssay:
			hasEssay = true
		}
	}
	switch {
	case hasMcq && hasEssay:
		return AssignmentMixed
	case hasMcq:
		return AssignmentMcq
	default:
		return AssignmentEssay
	}
}

func (a *Assignment) HasEssay() bool {
	for _, q := range a.Questions {
		if q.Kind == QuestionEssay {
			return true
		}
	}
	return false
}

func (a *Assignment) TotalPoints() decimal.Decimal {
	total := decimal.Zero
	for _, q := range a.Questions {
		total = total.Add(q.Points)
	}
	return total
}

// WindowStatus reports "not_open", "closed" or "open" for the given instant.
func (a *Assignment) WindowStatus(now time.Time) string {
	if a.OpenAt != nil && now.Before(*a.OpenAt) {
		return "not_open"
	}
	if a.CloseAt != nil && now.After(*a.CloseAt) {
		return "closed"
	}
	return "open"
}

// Validate checks the invariants the attempt engine relies on. Authoring
// tools are expected to call it before an assignment is published.
func (a *Assignment) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return errors.New("title is required")
	}
	if a.DurationMinutes < 1 {
		return errors.New("duration must be at least 1 minute")
	}
	if a.MaxAttempts < 1 {
		return errors.New("max attempts must be at least 1")
	}
	if a.OpenAt != nil && a.CloseAt != nil && !a.CloseAt.After(*a.OpenAt) {
		return errors.New("close time must be after open time")
	}
	if len(a.Questions) == 0 {
		return errors.New("at least one question is required")
	}

	orders := make(map[int]bool, len(a.Questions))
	for i, q := range a.Questions {
		if orders[q.Order] {
			return fmt.Errorf("questions[%d]: duplicate order %d", i, q.Order)
		}
		orders[q.Order] = true

		if q.Points.IsNegative() {
			return fmt.Errorf("questions[%d]: points must not be negative", i)
		}
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("questions[%d]: prompt is required", i)
		}

		switch q.Kind {
		case QuestionMcq:
			if len(q.Choices) < 2 {
				return fmt.Errorf("questions[%d]: mcq must have at least 2 choices", i)
			}
			correct := 0
			for _, c := range q.Choices {
				if c.IsCorrect {
					correct++
				}
			}
			if correct != 1 {
				return fmt.Errorf("questions[%d]: mcq must have exactly one correct choice", i)
			}
		case QuestionEssay:
			if len(q.Choices) != 0 {
				return fmt.Errorf("questions[%d]: essay must not have choices", i)
			}
		default:
			return fmt.Errorf("questions[%d]: unknown kind %q", i, q.Kind)
		}
	}
	return nil
}
