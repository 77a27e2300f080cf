package service

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/repository"
	"assessment_backend/internal/util"
	"assessment_backend/pkg/logger"
	"assessment_backend/pkg/monitoring"
	"assessment_backend/pkg/throttle"
	"assessment_backend/pkg/tracing"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// GradingService 人工评分与管理员重新评分
type GradingService struct {
	Assignments repository.AssignmentReader
	Attempts    repository.AttemptStore
	Throttle    throttle.Store
	Clock       Clock

	// 纳秒，配置热更新时原子替换
	regradeCooldown atomic.Int64
}

func NewGradingService(assignments repository.AssignmentReader, attempts repository.AttemptStore, store throttle.Store, clock Clock, cooldown time.Duration) *GradingService {
	if clock == nil {
		clock = SystemClock{}
	}
	s := &GradingService{Assignments: assignments, Attempts: attempts, Throttle: store, Clock: clock}
	s.SetRegradeCooldown(cooldown)
	return s
}

func (s *GradingService) SetRegradeCooldown(d time.Duration) {
	s.regradeCooldown.Store(int64(d))
}

func (s *GradingService) RegradeCooldown() time.Duration {
	return time.Duration(s.regradeCooldown.Load())
}

// ListPendingGrading 列出已提交、等待人工评分的尝试
func (s *GradingService) ListPendingGrading(ctx context.Context, assignmentID uint) ([]model.Attempt, error) {
	if _, err := s.Assignments.FindAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	attempts, err := s.Attempts.ListByStatus(ctx, assignmentID, model.AttemptSubmitted)
	if err != nil {
		return nil, fmt.Errorf("list pending attempts: %w", err)
	}
	return attempts, nil
}

// SetFinalScore 是最终成绩唯一的人工写入点：仅限 Submitted，成功后转为 Graded。
func (s *GradingService) SetFinalScore(ctx context.Context, attemptID, graderID uint, score decimal.Decimal) (*model.Attempt, error) {
	ctx, span := tracing.Tracer.Start(ctx, "GradingService.SetFinalScore", trace.WithAttributes(
		attribute.Int64("attempt.id", int64(attemptID)),
	))
	defer span.End()

	var graded *model.Attempt
	err := s.Attempts.WithAttemptLock(ctx, attemptID, func(tx repository.AttemptTx, locked *model.Attempt) error {
		if locked.Status != model.AttemptSubmitted {
			return util.ErrNotAwaitingGrading
		}
		if score.IsNegative() || score.GreaterThan(locked.MaxScore) {
			return util.ErrInvalidScore
		}
		now := s.Clock.Now()
		final := score
		grader := graderID
		locked.FinalScore = &final
		locked.Status = model.AttemptGraded
		locked.GradedBy = &grader
		locked.GradedAt = &now
		if err := tx.SaveAttempt(locked); err != nil {
			return err
		}
		graded = locked
		return nil
	})
	if err != nil {
		return nil, traceErr(span, err)
	}

	logger.FromContext(ctx).Info("final score set",
		zap.Uint("attempt_id", attemptID),
		zap.Uint("grader_id", graderID),
		zap.String("final_score", score.String()))
	return graded, nil
}

// Regrade 按当前题目重新计算已定稿尝试的客观分，同一尝试在冷却期内只执行一次。
func (s *GradingService) Regrade(ctx context.Context, attemptID uint) (*model.Attempt, error) {
	ctx, span := tracing.Tracer.Start(ctx, "GradingService.Regrade", trace.WithAttributes(
		attribute.Int64("attempt.id", int64(attemptID)),
	))
	defer span.End()

	attempt, err := s.Attempts.FindAttempt(ctx, attemptID)
	if err != nil {
		return nil, traceErr(span, err)
	}
	if attempt.IsInProgress() {
		return nil, util.ErrAttemptInProgress
	}

	assignment, err := s.Assignments.FindAssignment(ctx, attempt.AssignmentID)
	if err != nil {
		return nil, traceErr(span, err)
	}

	var regraded *model.Attempt
	err = s.Attempts.WithAttemptLock(ctx, attemptID, func(tx repository.AttemptTx, locked *model.Attempt) error {
		if locked.IsInProgress() {
			return util.ErrAttemptInProgress
		}
		// 冷却名额只在确认可以重评后占用
		ok, err := s.Throttle.Acquire(ctx, fmt.Sprintf("regrade:%d", attemptID), s.RegradeCooldown())
		if err != nil {
			return fmt.Errorf("acquire regrade throttle: %w", err)
		}
		if !ok {
			return util.ErrThrottled
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
		auto := res.AutoScore
		locked.AutoScore = &auto
		if !locked.RequiresManualGrading {
			final := auto
			locked.FinalScore = &final
		}
		if err := tx.SaveAttempt(locked); err != nil {
			return err
		}
		locked.Answers = answers
		regraded = locked
		return nil
	})
	if err != nil {
		return nil, traceErr(span, fmt.Errorf("regrade attempt: %w", err))
	}

	monitoring.Regrades.Inc()
	logger.FromContext(ctx).Info("attempt regraded",
		zap.Uint("attempt_id", attemptID),
		zap.String("auto_score", regraded.AutoScore.String()))
	return regraded, nil
}
