package repository

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/util"
	"context"
	"errors"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) FindAssignment(ctx context.Context, id uint) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc, id asc")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc, id asc")
		}).
		First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAssignment 供出题流程与数据初始化使用
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.Kind = a.DeriveKind()
	return r.DB.WithContext(ctx).Create(a).Error
}
