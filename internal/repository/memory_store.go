package repository

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/util"
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore 内存实现，用于本地联调（engine.store=memory）与单元测试。
// 作业与尝试使用两把独立的锁，持有尝试锁时可以读取作业。
type MemoryStore struct {
	amu              sync.RWMutex
	assignments      map[uint]*model.Assignment
	nextAssignmentID uint
	nextQuestionID   uint
	nextChoiceID     uint

	mu            sync.Mutex
	attempts      map[uint]*model.Attempt
	nextAttemptID uint
	nextAnswerID  uint

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assignments: make(map[uint]*model.Assignment),
		attempts:    make(map[uint]*model.Attempt),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateAssignment assigns ids to the assignment, its questions and choices.
func (s *MemoryStore) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.Kind = a.DeriveKind()

	s.amu.Lock()
	defer s.amu.Unlock()

	now := s.now()
	s.nextAssignmentID++
	a.ID = s.nextAssignmentID
	a.CreatedAt, a.UpdatedAt = now, now
	for i := range a.Questions {
		q := &a.Questions[i]
		s.nextQuestionID++
		q.ID = s.nextQuestionID
		q.AssignmentID = a.ID
		q.CreatedAt, q.UpdatedAt = now, now
		for j := range q.Choices {
			c := &q.Choices[j]
			s.nextChoiceID++
			c.ID = s.nextChoiceID
			c.QuestionID = q.ID
			c.CreatedAt, c.UpdatedAt = now, now
		}
	}
	s.assignments[a.ID] = cloneAssignment(a)
	return nil
}

// UpdateAssignment replaces a stored assignment in place, as an author
// editing a published assignment would.
func (s *MemoryStore) UpdateAssignment(a *model.Assignment) error {
	s.amu.Lock()
	defer s.amu.Unlock()
	if _, ok := s.assignments[a.ID]; !ok {
		return util.ErrNotFound
	}
	a.Kind = a.DeriveKind()
	s.assignments[a.ID] = cloneAssignment(a)
	return nil
}

func (s *MemoryStore) FindAssignment(ctx context.Context, id uint) (*model.Assignment, error) {
	s.amu.RLock()
	defer s.amu.RUnlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	c := cloneAssignment(a)
	sort.SliceStable(c.Questions, func(i, j int) bool { return c.Questions[i].Order < c.Questions[j].Order })
	for i := range c.Questions {
		ch := c.Questions[i].Choices
		sort.SliceStable(ch, func(x, y int) bool { return ch[x].Order < ch[y].Order })
	}
	return c, nil
}

func (s *MemoryStore) FindInProgress(ctx context.Context, userID, assignmentID uint) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.UserID == userID && a.AssignmentID == assignmentID && a.Status == model.AttemptInProgress {
			return a.Clone(), nil
		}
	}
	return nil, util.ErrNotFound
}

func (s *MemoryStore) CountAttempts(ctx context.Context, userID, assignmentID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, a := range s.attempts {
		if a.UserID == userID && a.AssignmentID == assignmentID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CreateAttempt(ctx context.Context, attempt *model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.attempts {
		if attempt.InProgressKey != nil && a.InProgressKey != nil && *a.InProgressKey == *attempt.InProgressKey {
			return util.ErrConflict
		}
		if a.UserID == attempt.UserID && a.AssignmentID == attempt.AssignmentID && a.AttemptNumber == attempt.AttemptNumber {
			return util.ErrConflict
		}
	}

	now := s.now()
	s.nextAttemptID++
	attempt.ID = s.nextAttemptID
	attempt.CreatedAt, attempt.UpdatedAt = now, now
	for i := range attempt.Answers {
		s.nextAnswerID++
		ans := &attempt.Answers[i]
		ans.ID = s.nextAnswerID
		ans.AttemptID = attempt.ID
		ans.CreatedAt, ans.UpdatedAt = now, now
	}
	s.attempts[attempt.ID] = attempt.Clone()
	return nil
}

func (s *MemoryStore) FindAttempt(ctx context.Context, id uint) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *MemoryStore) ListAttempts(ctx context.Context, userID, assignmentID uint) ([]model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Attempt
	for _, a := range s.attempts {
		if a.UserID == userID && a.AssignmentID == assignmentID {
			out = append(out, *a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber > out[j].AttemptNumber })
	return out, nil
}

func (s *MemoryStore) ListByStatus(ctx context.Context, assignmentID uint, status model.AttemptStatus) ([]model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Attempt
	for _, a := range s.attempts {
		if a.AssignmentID == assignmentID && a.Status == status {
			c := a.Clone()
			c.Answers = nil
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return submittedOrZero(out[i]).Before(submittedOrZero(out[j]))
	})
	return out, nil
}

// WithAttemptLock stages every write on a copy of the attempt and swaps it in
// only when fn succeeds.
func (s *MemoryStore) WithAttemptLock(ctx context.Context, attemptID uint, fn func(tx AttemptTx, attempt *model.Attempt) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.attempts[attemptID]
	if !ok {
		return util.ErrNotFound
	}
	staged := stored.Clone()
	view := staged.Clone()
	view.Answers = nil

	tx := &memoryAttemptTx{staged: staged, now: s.now}
	if err := fn(tx, view); err != nil {
		return err
	}
	s.attempts[attemptID] = staged
	return nil
}

type memoryAttemptTx struct {
	staged *model.Attempt
	now    func() time.Time
}

func (t *memoryAttemptTx) ListAnswers(attemptID uint) ([]model.Answer, error) {
	if attemptID != t.staged.ID {
		return nil, nil
	}
	out := make([]model.Answer, len(t.staged.Answers))
	for i := range t.staged.Answers {
		out[i] = t.staged.Answers[i].Clone()
	}
	return out, nil
}

func (t *memoryAttemptTx) FindAnswer(attemptID, questionID uint) (*model.Answer, error) {
	if attemptID != t.staged.ID {
		return nil, util.ErrNotFound
	}
	for i := range t.staged.Answers {
		if t.staged.Answers[i].QuestionID == questionID {
			c := t.staged.Answers[i].Clone()
			return &c, nil
		}
	}
	return nil, util.ErrNotFound
}

func (t *memoryAttemptTx) SaveAnswer(answer *model.Answer) error {
	for i := range t.staged.Answers {
		if t.staged.Answers[i].ID == answer.ID {
			answer.UpdatedAt = t.now()
			t.staged.Answers[i] = answer.Clone()
			return nil
		}
	}
	return util.ErrNotFound
}

func (t *memoryAttemptTx) SaveAttempt(attempt *model.Attempt) error {
	if attempt.ID != t.staged.ID {
		return util.ErrNotFound
	}
	answers := t.staged.Answers
	attempt.UpdatedAt = t.now()
	c := attempt.Clone()
	c.Answers = answers
	*t.staged = *c
	return nil
}

func submittedOrZero(a model.Attempt) time.Time {
	if a.SubmittedAt == nil {
		return time.Time{}
	}
	return *a.SubmittedAt
}

func cloneAssignment(a *model.Assignment) *model.Assignment {
	c := *a
	if a.OpenAt != nil {
		t := *a.OpenAt
		c.OpenAt = &t
	}
	if a.CloseAt != nil {
		t := *a.CloseAt
		c.CloseAt = &t
	}
	c.Questions = make([]model.Question, len(a.Questions))
	for i, q := range a.Questions {
		q.Choices = append([]model.Choice(nil), q.Choices...)
		c.Questions[i] = q
	}
	return &c
}
