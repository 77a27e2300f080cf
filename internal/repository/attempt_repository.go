package repository

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/util"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) FindInProgress(ctx context.Context, userID, assignmentID uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.WithContext(ctx).
		Preload("Answers").
		Where("user_id = ? AND assignment_id = ? AND status = ?", userID, assignmentID, model.AttemptInProgress).
		Order("started_at desc").
		First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *AttemptRepository) CountAttempts(ctx context.Context, userID, assignmentID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Attempt{}).
		Where("user_id = ? AND assignment_id = ?", userID, assignmentID).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) CreateAttempt(ctx context.Context, attempt *model.Attempt) error {
	answers := attempt.Answers
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(attempt).Error; err != nil {
			return err
		}
		if len(answers) == 0 {
			return nil
		}
		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		return tx.Create(&answers).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrConflict
	}
	if err != nil {
		return err
	}
	attempt.Answers = answers
	return nil
}

func (r *AttemptRepository) FindAttempt(ctx context.Context, id uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.WithContext(ctx).Preload("Answers").First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *AttemptRepository) ListAttempts(ctx context.Context, userID, assignmentID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.WithContext(ctx).
		Preload("Answers").
		Where("user_id = ? AND assignment_id = ?", userID, assignmentID).
		Order("attempt_number desc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByStatus(ctx context.Context, assignmentID uint, status model.AttemptStatus) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.WithContext(ctx).
		Where("assignment_id = ? AND status = ?", assignmentID, status).
		Order("submitted_at asc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) WithAttemptLock(ctx context.Context, attemptID uint, fn func(tx AttemptTx, attempt *model.Attempt) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attempt model.Attempt
		// SELECT ... FOR UPDATE：与同一尝试上的作答、交卷串行化
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&attempt, attemptID).Error
		if err != nil {
			return notFound(err)
		}
		return fn(&gormAttemptTx{tx: tx}, &attempt)
	})
}

type gormAttemptTx struct {
	tx *gorm.DB
}

func (t *gormAttemptTx) ListAnswers(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := t.tx.Where("attempt_id = ?", attemptID).Order("id asc").Find(&answers).Error
	return answers, err
}

func (t *gormAttemptTx) FindAnswer(attemptID, questionID uint) (*model.Answer, error) {
	var ans model.Answer
	err := t.tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&ans).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ans, nil
}

func (t *gormAttemptTx) SaveAnswer(answer *model.Answer) error {
	return t.tx.Select("selected_choice_id", "text_answer", "is_correct", "updated_at").
		Updates(answer).Error
}

func (t *gormAttemptTx) SaveAttempt(attempt *model.Attempt) error {
	return t.tx.Omit(clause.Associations).Save(attempt).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotFound
	}
	return err
}
