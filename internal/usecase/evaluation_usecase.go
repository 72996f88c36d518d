package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fadilmartias/form-evaluator/internal/dto"
	"github.com/fadilmartias/form-evaluator/internal/evaluator"
	"github.com/fadilmartias/form-evaluator/internal/formconfig"
	"github.com/fadilmartias/form-evaluator/internal/model"
	"github.com/fadilmartias/form-evaluator/internal/response"
	"github.com/google/uuid"
)

var (
	ErrJudgeDisabled = errors.New("semantic judge is disabled")
	ErrInvalidID     = errors.New("invalid evaluation id")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// EvaluationStore persists evaluations.
type EvaluationStore interface {
	Create(ctx context.Context, eval *model.FormEvaluation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FormEvaluation, error)
	ListByForm(ctx context.Context, formID string, page, pageSize int) ([]model.FormEvaluation, int64, error)
}

type ScoringOptions struct {
	DefaultMode  evaluator.Mode
	DynamicTypes []evaluator.FieldType
	Concurrency  int
	JudgeTimeout time.Duration
}

type EvaluationUsecase struct {
	store       EvaluationStore
	catalog     *formconfig.Catalog
	judge       evaluator.Judge
	scorers     map[evaluator.Mode]*evaluator.Scorer
	defaultMode evaluator.Mode
}

// NewEvaluationUsecase wires a scorer per mode. judge may be nil, in which
// case dynamic fields score 0 and EvaluateField is unavailable.
func NewEvaluationUsecase(store EvaluationStore, catalog *formconfig.Catalog, judge evaluator.Judge, opts ScoringOptions) *EvaluationUsecase {
	dynamic := opts.DynamicTypes
	if len(dynamic) == 0 {
		dynamic = evaluator.DefaultDynamicTypes
	}
	common := []evaluator.Option{
		evaluator.WithJudge(judge),
		evaluator.WithConcurrency(opts.Concurrency),
		evaluator.WithJudgeTimeout(opts.JudgeTimeout),
	}
	mode := opts.DefaultMode
	if mode == "" {
		mode = evaluator.ModeRequiredOptional
	}
	return &EvaluationUsecase{
		store:   store,
		catalog: catalog,
		judge:   judge,
		scorers: map[evaluator.Mode]*evaluator.Scorer{
			evaluator.ModeRequiredOptional: evaluator.NewScorer(append(common, evaluator.WithClassifier(evaluator.RequiredClassifier{}))...),
			evaluator.ModeFixedDynamic:     evaluator.NewScorer(append(common, evaluator.WithClassifier(evaluator.NewTypeClassifier(dynamic...)))...),
		},
		defaultMode: mode,
	}
}

// EvaluationOutcome is a scored submission. EvalID is nil for dry runs.
type EvaluationOutcome struct {
	EvalID *uuid.UUID                  `json:"eval_id,omitempty"`
	FormID string                      `json:"form_id"`
	Result *evaluator.ComparisonResult `json:"result"`
}

func (uc *EvaluationUsecase) Evaluate(ctx context.Context, req dto.EvaluateRequest) (*EvaluationOutcome, error) {
	scorer, err := uc.scorer(req.Mode)
	if err != nil {
		return nil, err
	}
	def, err := uc.catalog.Get(req.FormID)
	if err != nil {
		return nil, err
	}
	expected, err := def.Expected()
	if err != nil {
		return nil, err
	}
	submission, err := evaluator.ValuesFromMap(req.Submission)
	if err != nil {
		return nil, fmt.Errorf("submission: %w", err)
	}

	result, err := scorer.Score(ctx, submission, expected, def.Schema())
	if err != nil {
		return nil, err
	}
	out := &EvaluationOutcome{FormID: def.ID, Result: result}
	if req.DryRun {
		return out, nil
	}

	record, err := newFormEvaluation(def, req.Layout, result)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("save evaluation: %w", err)
	}
	log.Printf("Evaluation %s saved for form %s: accuracy %.2f%%", record.EvalID, def.ID, result.Accuracy)
	out.EvalID = &record.EvalID
	return out, nil
}

// EvaluateField runs a single judge call.
func (uc *EvaluationUsecase) EvaluateField(ctx context.Context, req dto.EvaluateFieldRequest) (evaluator.Verdict, error) {
	if uc.judge == nil {
		return evaluator.Verdict{}, ErrJudgeDisabled
	}
	v, err := uc.judge.Judge(ctx, evaluator.JudgeRequest{
		Expected:   req.Expected,
		Actual:     req.Actual,
		FieldLabel: req.FieldLabel,
	})
	if err != nil {
		return evaluator.Verdict{}, err
	}
	v.Score = evaluator.ClampScore(v.Score)
	return v, nil
}

// SaveEvaluation persists an evaluation scored by the client. A field counts
// as correct when it matched or reached the judge threshold.
func (uc *EvaluationUsecase) SaveEvaluation(ctx context.Context, req dto.SaveEvaluationRequest) (uuid.UUID, error) {
	record := &model.FormEvaluation{
		FormID:             req.FormID,
		Title:              req.Title,
		Description:        req.Description,
		Type:               req.Type,
		Layout:             req.Layout,
		InputToLLM:         req.InputToLLM,
		Mode:               string(evaluator.ModeRequiredOptional),
		FieldEval:          make(model.FieldEvals, len(req.FieldEval)),
		FixedFieldScore:    req.FixedFieldScore,
		DynamicFieldScore:  req.DynamicFieldScore,
		RequiredFieldScore: req.RequiredFieldScore,
		OptionalFieldScore: req.OptionalFieldScore,
		OverallAccuracy:    req.OverallAccuracy,
		TotalFields:        len(req.FieldEval),
		CreatedAt:          time.Now(),
	}
	if req.FixedFieldScore != nil || req.DynamicFieldScore != nil {
		record.Mode = string(evaluator.ModeFixedDynamic)
	}
	for id, fe := range req.FieldEval {
		fe.Match = fe.Match || fe.Score >= evaluator.JudgeMatchThreshold
		if fe.Match {
			record.CorrectFields++
		}
		record.FieldEval[id] = model.FieldEval(fe)
	}
	if err := uc.store.Create(ctx, record); err != nil {
		return uuid.Nil, fmt.Errorf("save evaluation: %w", err)
	}
	return record.EvalID, nil
}

func (uc *EvaluationUsecase) GetResult(ctx context.Context, id string) (*model.FormEvaluation, error) {
	evalID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return uc.store.FindByID(ctx, evalID)
}

func (uc *EvaluationUsecase) ListByForm(ctx context.Context, formID string, page, pageSize int) ([]model.FormEvaluation, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	evals, total, err := uc.store.ListByForm(ctx, formID, page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	return evals, response.NewPagination(page, pageSize, total), nil
}

func (uc *EvaluationUsecase) ListForms() ([]*formconfig.FormDefinition, error) {
	return uc.catalog.List()
}

func (uc *EvaluationUsecase) GetForm(id string) (*formconfig.FormDefinition, error) {
	return uc.catalog.Get(id)
}

// ReloadForms optionally switches the catalogue source, then re-reads it.
func (uc *EvaluationUsecase) ReloadForms(ctx context.Context, source string) (formconfig.Source, error) {
	if source != "" {
		src, err := formconfig.ParseSource(source)
		if err != nil {
			return "", err
		}
		if err := uc.catalog.Use(src); err != nil {
			return "", err
		}
	}
	if err := uc.catalog.Reload(ctx); err != nil {
		return "", err
	}
	return uc.catalog.Active(), nil
}

func (uc *EvaluationUsecase) scorer(mode string) (*evaluator.Scorer, error) {
	m := uc.defaultMode
	if mode != "" {
		parsed, err := evaluator.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		m = parsed
	}
	return uc.scorers[m], nil
}

func newFormEvaluation(def *formconfig.FormDefinition, layout string, result *evaluator.ComparisonResult) (*model.FormEvaluation, error) {
	fields := make(model.FieldEvals, len(result.FieldResults))
	for id, fr := range result.FieldResults {
		expected, err := json.Marshal(fr.Expected)
		if err != nil {
			return nil, fmt.Errorf("field %q expected: %w", id, err)
		}
		submitted, err := json.Marshal(fr.Actual)
		if err != nil {
			return nil, fmt.Errorf("field %q submitted: %w", id, err)
		}
		fields[id] = model.FieldEval{
			Expected:  expected,
			Submitted: submitted,
			Score:     fr.Score,
			Match:     fr.Match,
			Required:  fr.Required,
			Dynamic:   fr.Class == evaluator.ClassDynamic,
			InputType: string(fr.FieldType),
			Feedback:  fr.Feedback,
		}
	}

	record := &model.FormEvaluation{
		FormID:          def.ID,
		Title:           def.Title,
		Description:     def.Description,
		Type:            string(def.Type),
		Layout:          layout,
		InputToLLM:      def.InputToLLM,
		Mode:            string(result.Mode),
		FieldEval:       fields,
		OverallAccuracy: result.Accuracy,
		TotalFields:     result.TotalFields,
		CorrectFields:   result.CorrectFields,
		CreatedAt:       time.Now(),
	}
	primary, secondary := result.Primary(), result.Secondary()
	if result.Mode == evaluator.ModeFixedDynamic {
		record.FixedFieldScore, record.DynamicFieldScore = &primary, &secondary
	} else {
		record.RequiredFieldScore, record.OptionalFieldScore = &primary, &secondary
	}
	return record, nil
}
