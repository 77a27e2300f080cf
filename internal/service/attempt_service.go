package service

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/repository"
	"assessment_backend/internal/util"
	"assessment_backend/pkg/logger"
	"assessment_backend/pkg/monitoring"
	"assessment_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// 并发开始时输给唯一约束的一方最多重试的次数
const maxStartRetries = 3

type AttemptService struct {
	Assignments repository.AssignmentReader
	Attempts    repository.AttemptStore
	Clock       Clock
}

func NewAttemptService(assignments repository.AssignmentReader, attempts repository.AttemptStore, clock Clock) *AttemptService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AttemptService{Assignments: assignments, Attempts: attempts, Clock: clock}
}

// AnswerInput 一次作答写入。字段为 nil 表示本次不涉及；Text 为空串表示清空作答。
type AnswerInput struct {
	ChoiceID *uint   `json:"selectedChoiceId"`
	Text     *string `json:"textAnswer"`
}

type ChoiceView struct {
	ID    uint   `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type QuestionView struct {
	QuestionID       uint               `json:"questionId"`
	Kind             model.QuestionKind `json:"kind"`
	Prompt           string             `json:"prompt"`
	Points           decimal.Decimal    `json:"points"`
	Order            int                `json:"order"`
	Choices          []ChoiceView       `json:"choices,omitempty"`
	SelectedChoiceID *uint              `json:"selectedChoiceId"`
	TextAnswer       *string            `json:"textAnswer"`
	Answered         bool               `json:"answered"`
}

// AttemptView 学生视角的尝试详情，不暴露正确答案
type AttemptView struct {
	ID               uint                `json:"id"`
	AssignmentID     uint                `json:"assignmentId"`
	AssignmentTitle  string              `json:"assignmentTitle"`
	AttemptNumber    int                 `json:"attemptNumber"`
	Status           model.AttemptStatus `json:"status"`
	StartedAt        time.Time           `json:"startedAt"`
	DueAt            time.Time           `json:"dueAt"`
	SubmittedAt      *time.Time          `json:"submittedAt,omitempty"`
	RemainingSeconds int64               `json:"remainingSeconds"`
	QuestionCount    int                 `json:"questionCount"`
	AnsweredCount    int                 `json:"answeredCount"`
	MaxScore         decimal.Decimal     `json:"maxScore"`
	AutoScore        *decimal.Decimal    `json:"autoScore"`
	FinalScore       *decimal.Decimal    `json:"finalScore"`
	Questions        []QuestionView      `json:"questions"`
}

// StartOrResumeAttempt 返回用户在该作业下进行中的尝试；没有则在资格校验通过后新建。
// 恢复已有尝试不受开放时间与次数限制。
func (s *AttemptService) StartOrResumeAttempt(ctx context.Context, assignmentID, userID uint) (*model.Attempt, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AttemptService.StartOrResumeAttempt", trace.WithAttributes(
		attribute.Int64("assignment.id", int64(assignmentID)),
		attribute.Int64("user.id", int64(userID)),
	))
	defer span.End()
	log := logger.FromContext(ctx).With(zap.Uint("assignment_id", assignmentID), zap.Uint("user_id", userID))

	var assignment *model.Assignment
	for i := 0; i < maxStartRetries; i++ {
		existing, err := s.Attempts.FindInProgress(ctx, userID, assignmentID)
		if err == nil {
			monitoring.AttemptsStarted.WithLabelValues("resumed").Inc()
			log.Debug("attempt resumed", zap.Uint("attempt_id", existing.ID))
			return existing, nil
		}
		if !errors.Is(err, util.ErrNotFound) {
			return nil, traceErr(span, fmt.Errorf("find in-progress attempt: %w", err))
		}

		if assignment == nil {
			assignment, err = s.Assignments.FindAssignment(ctx, assignmentID)
			if err != nil {
				return nil, traceErr(span, err)
			}
		}

		prior, err := s.Attempts.CountAttempts(ctx, userID, assignmentID)
		if err != nil {
			return nil, traceErr(span, fmt.Errorf("count attempts: %w", err))
		}

		now := s.Clock.Now()
		if err := EvaluateEligibility(assignment, now, prior, false).Err(); err != nil {
			monitoring.AttemptsStarted.WithLabelValues("rejected").Inc()
			log.Info("attempt start rejected", zap.Error(err))
			return nil, err
		}

		attempt := newAttempt(assignment, userID, int(prior)+1, now)
		err = s.Attempts.CreateAttempt(ctx, attempt)
		if err == nil {
			monitoring.AttemptsStarted.WithLabelValues("created").Inc()
			log.Info("attempt created",
				zap.Uint("attempt_id", attempt.ID),
				zap.Int("attempt_number", attempt.AttemptNumber))
			return attempt, nil
		}
		if !errors.Is(err, util.ErrConflict) {
			return nil, traceErr(span, fmt.Errorf("create attempt: %w", err))
		}
		log.Debug("attempt creation raced, resuming winner", zap.Int("retry", i+1))
	}
	return nil, traceErr(span, util.ErrConflict)
}

// newAttempt snapshots duration, max score and the manual-grading flag, and
// seeds one empty answer per question in display order.
func newAttempt(a *model.Assignment, userID uint, number int, now time.Time) *model.Attempt {
	key := model.InProgressKeyFor(userID, a.ID)
	answers := make([]model.Answer, 0, len(a.Questions))
	for _, q := range a.Questions {
		answers = append(answers, model.Answer{QuestionID: q.ID})
	}
	return &model.Attempt{
		AssignmentID:          a.ID,
		UserID:                userID,
		AttemptNumber:         number,
		StartedAt:             now,
		DurationMinutes:       a.DurationMinutes,
		RequiresManualGrading: a.HasEssay(),
		MaxScore:              a.TotalPoints(),
		Status:                model.AttemptInProgress,
		InProgressKey:         &key,
		Answers:               answers,
	}
}

// RecordAnswer 写入单题作答。选项与文本互斥，同时给出时文本生效。
func (s *AttemptService) RecordAnswer(ctx context.Context, attemptID, userID, questionID uint, in AnswerInput) error {
	ctx, span := tracing.Tracer.Start(ctx, "AttemptService.RecordAnswer", trace.WithAttributes(
		attribute.Int64("attempt.id", int64(attemptID)),
		attribute.Int64("question.id", int64(questionID)),
	))
	defer span.End()

	attempt, err := s.ownedAttempt(ctx, attemptID, userID)
	if err != nil {
		return traceErr(span, err)
	}

	if in.ChoiceID != nil {
		assignment, err := s.Assignments.FindAssignment(ctx, attempt.AssignmentID)
		if err != nil {
			return traceErr(span, err)
		}
		if !choiceBelongsTo(assignment, questionID, *in.ChoiceID) {
			monitoring.AnswerRejections.WithLabelValues("invalid_choice").Inc()
			return util.ErrNotFound
		}
	}

	err = s.Attempts.WithAttemptLock(ctx, attemptID, func(tx repository.AttemptTx, locked *model.Attempt) error {
		if !locked.IsInProgress() {
			monitoring.AnswerRejections.WithLabelValues("finalized").Inc()
			return util.ErrAlreadyFinalized
		}
		if locked.IsExpired(s.Clock.Now()) {
			monitoring.AnswerRejections.WithLabelValues("expired").Inc()
			return util.ErrTimeExpired
		}
		ans, err := tx.FindAnswer(locked.ID, questionID)
		if err != nil {
			return err
		}
		if in.ChoiceID == nil && in.Text == nil {
			return nil
		}
		if in.ChoiceID != nil {
			v := *in.ChoiceID
			ans.SelectedChoiceID = &v
			ans.TextAnswer = nil
		}
		if in.Text != nil {
			v := *in.Text
			ans.TextAnswer = &v
			ans.SelectedChoiceID = nil
		}
		return tx.SaveAnswer(ans)
	})
	if err != nil {
		return traceErr(span, err)
	}
	return nil
}

// FinishAttempt 交卷并评分。对非进行中的尝试不做修改直接返回，重复提交是安全的。
func (s *AttemptService) FinishAttempt(ctx context.Context, attemptID, userID uint) (*model.Attempt, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AttemptService.FinishAttempt", trace.WithAttributes(
		attribute.Int64("attempt.id", int64(attemptID)),
	))
	defer span.End()
	log := logger.FromContext(ctx).With(zap.Uint("attempt_id", attemptID), zap.Uint("user_id", userID))

	attempt, err := s.ownedAttempt(ctx, attemptID, userID)
	if err != nil {
		return nil, traceErr(span, err)
	}
	if !attempt.IsInProgress() {
		log.Debug("finish ignored, attempt already finalized", zap.String("status", string(attempt.Status)))
		return attempt, nil
	}

	assignment, err := s.Assignments.FindAssignment(ctx, attempt.AssignmentID)
	if err != nil {
		return nil, traceErr(span, err)
	}

	var finished *model.Attempt
	err = s.Attempts.WithAttemptLock(ctx, attemptID, func(tx repository.AttemptTx, locked *model.Attempt) error {
		if !locked.IsInProgress() {
			return nil
		}
		answers, err := tx.ListAnswers(locked.ID)
		if err != nil {
			return err
		}
		res := ScoreAnswers(assignment.Questions, answers)
		for _, i := range applyOutcomes(answers, res.Outcomes) {
			if err := tx.SaveAnswer(&answers[i]); err != nil {
				return err
			}
		}

		now := s.Clock.Now()
		auto := res.AutoScore
		locked.AutoScore = &auto
		locked.SubmittedAt = &now
		locked.InProgressKey = nil
		if locked.RequiresManualGrading {
			locked.Status = model.AttemptSubmitted
			locked.FinalScore = nil
		} else {
			locked.Status = model.AttemptGraded
			final := auto
			locked.FinalScore = &final
		}
		if err := tx.SaveAttempt(locked); err != nil {
			return err
		}
		locked.Answers = answers
		finished = locked
		return nil
	})
	if err != nil {
		return nil, traceErr(span, fmt.Errorf("finish attempt: %w", err))
	}

	if finished == nil {
		// 并发的另一次交卷已完成
		return s.Attempts.FindAttempt(ctx, attemptID)
	}
	monitoring.AttemptsFinished.WithLabelValues(string(finished.Status)).Inc()
	log.Info("attempt finished",
		zap.String("status", string(finished.Status)),
		zap.String("auto_score", finished.AutoScore.String()))
	return finished, nil
}

func (s *AttemptService) GetAttempt(ctx context.Context, attemptID, userID uint) (*AttemptView, error) {
	attempt, err := s.ownedAttempt(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}
	return s.DescribeAttempt(ctx, attempt)
}

// DescribeAttempt builds the student-facing view of an attempt.
func (s *AttemptService) DescribeAttempt(ctx context.Context, attempt *model.Attempt) (*AttemptView, error) {
	assignment, err := s.Assignments.FindAssignment(ctx, attempt.AssignmentID)
	if err != nil {
		return nil, err
	}
	return buildAttemptView(assignment, attempt, s.Clock.Now()), nil
}

func buildAttemptView(a *model.Assignment, t *model.Attempt, now time.Time) *AttemptView {
	byQuestion := make(map[uint]*model.Answer, len(t.Answers))
	for i := range t.Answers {
		byQuestion[t.Answers[i].QuestionID] = &t.Answers[i]
	}

	v := &AttemptView{
		ID:              t.ID,
		AssignmentID:    a.ID,
		AssignmentTitle: a.Title,
		AttemptNumber:   t.AttemptNumber,
		Status:          t.Status,
		StartedAt:       t.StartedAt,
		DueAt:           t.DueAt(),
		SubmittedAt:     t.SubmittedAt,
		MaxScore:        t.MaxScore,
		AutoScore:       t.AutoScore,
		FinalScore:      t.FinalScore,
	}
	if t.IsInProgress() {
		if remaining := t.DueAt().Sub(now); remaining > 0 {
			v.RemainingSeconds = int64(remaining / time.Second)
		}
	}

	for _, q := range a.Questions {
		qv := QuestionView{
			QuestionID: q.ID,
			Kind:       q.Kind,
			Prompt:     q.Prompt,
			Points:     q.Points,
			Order:      q.Order,
		}
		for _, c := range q.Choices {
			qv.Choices = append(qv.Choices, ChoiceView{ID: c.ID, Text: c.Text, Order: c.Order})
		}
		if ans, ok := byQuestion[q.ID]; ok {
			qv.SelectedChoiceID = ans.SelectedChoiceID
			qv.TextAnswer = ans.TextAnswer
			qv.Answered = ans.IsAnswered()
		}
		if qv.Answered {
			v.AnsweredCount++
		}
		v.Questions = append(v.Questions, qv)
	}
	v.QuestionCount = len(v.Questions)
	return v
}

func (s *AttemptService) GetHistory(ctx context.Context, assignmentID, userID uint) (*AttemptHistory, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AttemptService.GetHistory")
	defer span.End()

	assignment, err := s.Assignments.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, traceErr(span, err)
	}
	attempts, err := s.Attempts.ListAttempts(ctx, userID, assignmentID)
	if err != nil {
		return nil, traceErr(span, fmt.Errorf("list attempts: %w", err))
	}
	return &AttemptHistory{
		AssignmentID:    assignment.ID,
		AssignmentTitle: assignment.Title,
		WindowStatus:    assignment.WindowStatus(s.Clock.Now()),
		MaxAttempts:     assignment.MaxAttempts,
		AttemptsUsed:    len(attempts),
		Attempts:        BuildHistory(assignment, attempts),
	}, nil
}

// ownedAttempt 非本人的尝试按不存在处理
func (s *AttemptService) ownedAttempt(ctx context.Context, attemptID, userID uint) (*model.Attempt, error) {
	attempt, err := s.Attempts.FindAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrNotFound
	}
	return attempt, nil
}

func choiceBelongsTo(a *model.Assignment, questionID, choiceID uint) bool {
	for i := range a.Questions {
		if a.Questions[i].ID == questionID {
			return a.Questions[i].HasChoice(choiceID)
		}
	}
	return false
}

// traceErr marks the span failed for unexpected errors and returns err.
func traceErr(span trace.Span, err error) error {
	if isExpected(err) {
		return err
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func isExpected(err error) bool {
	for _, target := range []error{
		util.ErrNotFound, util.ErrNotEligible, util.ErrAlreadyFinalized, util.ErrTimeExpired,
		util.ErrAttemptInProgress, util.ErrNotAwaitingGrading, util.ErrInvalidScore, util.ErrThrottled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
