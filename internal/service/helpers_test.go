package service

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/repository"
	"assessment_backend/pkg/throttle"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mcq(order int, points string, correct int) model.Question {
	q := model.Question{Kind: model.QuestionMcq, Prompt: "mcq", Points: dec(points), Order: order}
	for i := 0; i < 3; i++ {
		q.Choices = append(q.Choices, model.Choice{Text: "choice", Order: i, IsCorrect: i == correct})
	}
	return q
}

func essay(order int, points string) model.Question {
	return model.Question{Kind: model.QuestionEssay, Prompt: "essay", Points: dec(points), Order: order}
}

type fixture struct {
	store    *repository.MemoryStore
	clock    *fakeClock
	attempts *AttemptService
	grading  *GradingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	clock := newFakeClock()
	return &fixture{
		store:    store,
		clock:    clock,
		attempts: NewAttemptService(store, store, clock),
		grading:  NewGradingService(store, store, throttle.NewMemoryStoreWithClock(clock.Now), clock, 0),
	}
}

func (f *fixture) assignment(t *testing.T, maxAttempts, duration int, questions ...model.Question) *model.Assignment {
	t.Helper()
	a := &model.Assignment{
		Title:           "Unit quiz",
		DurationMinutes: duration,
		MaxAttempts:     maxAttempts,
		Questions:       questions,
	}
	if err := f.store.CreateAssignment(context.Background(), a); err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	return a
}

func correctChoice(q model.Question) *uint {
	id, _ := q.CorrectChoiceID()
	return &id
}

func wrongChoice(q model.Question) *uint {
	for _, c := range q.Choices {
		if !c.IsCorrect {
			id := c.ID
			return &id
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }
