package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadilmartias/form-evaluator/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEvaluationNotFound = errors.New("evaluation not found")

type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db}
}

// Create assigns an id when the evaluation has none.
func (r *EvaluationRepository) Create(ctx context.Context, eval *model.FormEvaluation) error {
	if eval.EvalID == uuid.Nil {
		eval.EvalID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(eval).Error
}

func (r *EvaluationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FormEvaluation, error) {
	var eval model.FormEvaluation
	err := r.db.WithContext(ctx).First(&eval, "eval_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEvaluationNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &eval, nil
}

// ListByForm returns one page (1-based) of a form's evaluations, newest
// first, and the total count.
func (r *EvaluationRepository) ListByForm(ctx context.Context, formID string, page, pageSize int) ([]model.FormEvaluation, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&model.FormEvaluation{}).Scopes(byForm(formID))
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var evals []model.FormEvaluation
	err := r.db.WithContext(ctx).
		Scopes(byForm(formID), newestFirst, paginate(page, pageSize)).
		Find(&evals).Error
	if err != nil {
		return nil, 0, err
	}
	return evals, total, nil
}

func byForm(formID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("form_id = ?", formID)
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("eval_id")
}

func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
