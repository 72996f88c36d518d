package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/fadilmartias/form-evaluator/internal/dto"
	"github.com/fadilmartias/form-evaluator/internal/evaluator"
	"github.com/fadilmartias/form-evaluator/internal/formconfig"
	"github.com/fadilmartias/form-evaluator/internal/model"
	"github.com/fadilmartias/form-evaluator/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu    sync.Mutex
	evals map[uuid.UUID]*model.FormEvaluation
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{evals: map[uuid.UUID]*model.FormEvaluation{}}
}

func (s *memoryStore) Create(_ context.Context, e *model.FormEvaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if e.EvalID == uuid.Nil {
		e.EvalID = uuid.New()
	}
	s.evals[e.EvalID] = e
	return nil
}

func (s *memoryStore) FindByID(_ context.Context, id uuid.UUID) (*model.FormEvaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.evals[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrEvaluationNotFound, id)
	}
	return e, nil
}

func (s *memoryStore) ListByForm(_ context.Context, formID string, page, pageSize int) ([]model.FormEvaluation, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.FormEvaluation
	for _, e := range s.evals {
		if e.FormID == formID {
			all = append(all, *e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].EvalID.String() < all[j].EvalID.String() })
	start := min((page-1)*pageSize, len(all))
	end := min(start+pageSize, len(all))
	return all[start:end], int64(len(all)), nil
}

func field(id string, t evaluator.FieldType, required bool) formconfig.Field {
	return formconfig.Field{FieldDescriptor: evaluator.FieldDescriptor{ID: id, Type: t, Label: id, Required: required}}
}

func profileCatalog() *formconfig.Catalog {
	return formconfig.NewStaticCatalog(map[string]*formconfig.FormDefinition{
		"profile": {
			ID:         "profile",
			Title:      "Profile",
			Type:       formconfig.FormSinglePage,
			InputToLLM: "Jane, born 1990-05-01, likes hiking",
			Pages: []formconfig.Page{{PageNumber: 1, Fields: []formconfig.Field{
				field("name", evaluator.TypeText, true),
				field("birth_date", evaluator.TypeDate, true),
				field("bio", evaluator.TypeTextarea, false),
			}}},
			GroundTruth: map[string]any{"name": "Jane", "birth_date": "1990-05-01", "bio": "Loves hiking"},
		},
		"chunks": {
			ID:          "chunks",
			Type:        formconfig.FormSinglePage,
			Pages:       []formconfig.Page{{PageNumber: 1}},
			GroundTruth: map[string]any{"rows": []any{map[string]any{"a": 1}}},
		},
	})
}

func fixedJudge(score float64) evaluator.Judge {
	return evaluator.JudgeFunc(func(context.Context, evaluator.JudgeRequest) (evaluator.Verdict, error) {
		return evaluator.Verdict{Score: score, Feedback: "judged"}, nil
	})
}

func TestEvaluatePersistsRequiredOptional(t *testing.T) {
	store := newMemoryStore()
	uc := NewEvaluationUsecase(store, profileCatalog(), fixedJudge(0.9), ScoringOptions{})

	out, err := uc.Evaluate(context.Background(), dto.EvaluateRequest{
		FormID:     "profile",
		Submission: map[string]any{"name": "jane", "birth_date": "05/01/1990", "bio": "hiking fan", "extra": 1},
		Layout:     "two-column",
	})
	require.NoError(t, err)
	require.NotNil(t, out.EvalID)

	res := out.Result
	assert.Equal(t, evaluator.ModeRequiredOptional, res.Mode)
	assert.Equal(t, 3, res.TotalFields)
	assert.Equal(t, 3, res.CorrectFields)
	assert.Equal(t, []string{"extra"}, res.ExtraFields)

	saved, err := uc.GetResult(context.Background(), out.EvalID.String())
	require.NoError(t, err)
	assert.Equal(t, "profile", saved.FormID)
	assert.Equal(t, "two-column", saved.Layout)
	assert.Equal(t, "Jane, born 1990-05-01, likes hiking", saved.InputToLLM)
	require.NotNil(t, saved.RequiredFieldScore)
	assert.Equal(t, 100.0, *saved.RequiredFieldScore)
	assert.Nil(t, saved.FixedFieldScore)
	assert.Equal(t, json.RawMessage(`"05/01/1990"`), saved.FieldEval["birth_date"].Submitted)
	assert.Equal(t, "date", saved.FieldEval["birth_date"].InputType)
}

func TestEvaluateFixedDynamicUsesJudge(t *testing.T) {
	store := newMemoryStore()
	uc := NewEvaluationUsecase(store, profileCatalog(), fixedJudge(0.5), ScoringOptions{})

	out, err := uc.Evaluate(context.Background(), dto.EvaluateRequest{
		FormID:     "profile",
		Submission: map[string]any{"name": "Jane", "birth_date": "1990-05-01", "bio": "likes walking"},
		Mode:       "fixed-dynamic",
	})
	require.NoError(t, err)

	res := out.Result
	assert.Equal(t, evaluator.ModeFixedDynamic, res.Mode)
	assert.Equal(t, 100.0, res.SubScore(evaluator.ClassFixed))
	assert.Equal(t, 50.0, res.SubScore(evaluator.ClassDynamic))
	assert.Equal(t, "judged", res.FieldResults["bio"].Feedback)

	saved := store.evals[*out.EvalID]
	require.NotNil(t, saved.DynamicFieldScore)
	assert.Equal(t, 50.0, *saved.DynamicFieldScore)
	assert.True(t, saved.FieldEval["bio"].Dynamic)
	assert.True(t, saved.FieldEval["name"].Dynamic)
	assert.False(t, saved.FieldEval["birth_date"].Dynamic)
}

func TestEvaluateDryRunSkipsStore(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("db down")
	uc := NewEvaluationUsecase(store, profileCatalog(), nil, ScoringOptions{})

	out, err := uc.Evaluate(context.Background(), dto.EvaluateRequest{
		FormID:     "profile",
		Submission: map[string]any{},
		DryRun:     true,
	})
	require.NoError(t, err)
	assert.Nil(t, out.EvalID)
	assert.Equal(t, 3, out.Result.IncorrectFields)

	_, err = uc.Evaluate(context.Background(), dto.EvaluateRequest{FormID: "profile", Submission: map[string]any{}})
	assert.ErrorContains(t, err, "db down")
}

func TestEvaluateErrors(t *testing.T) {
	uc := NewEvaluationUsecase(newMemoryStore(), profileCatalog(), nil, ScoringOptions{})
	ctx := context.Background()

	_, err := uc.Evaluate(ctx, dto.EvaluateRequest{FormID: "nope", Submission: map[string]any{}})
	assert.ErrorIs(t, err, formconfig.ErrFormNotFound)

	_, err = uc.Evaluate(ctx, dto.EvaluateRequest{FormID: "profile", Submission: map[string]any{}, Mode: "strict"})
	assert.Error(t, err)

	_, err = uc.Evaluate(ctx, dto.EvaluateRequest{FormID: "chunks", Submission: map[string]any{}})
	assert.ErrorIs(t, err, evaluator.ErrUnsupportedShape)

	_, err = uc.Evaluate(ctx, dto.EvaluateRequest{FormID: "profile", Submission: map[string]any{"name": map[string]any{"first": "J"}}})
	assert.ErrorIs(t, err, evaluator.ErrUnsupportedShape)
}

func TestEvaluateField(t *testing.T) {
	uc := NewEvaluationUsecase(newMemoryStore(), profileCatalog(), fixedJudge(1.4), ScoringOptions{})
	v, err := uc.EvaluateField(context.Background(), dto.EvaluateFieldRequest{Expected: "a", Actual: "b"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.Score)

	uc = NewEvaluationUsecase(newMemoryStore(), profileCatalog(), nil, ScoringOptions{})
	_, err = uc.EvaluateField(context.Background(), dto.EvaluateFieldRequest{Expected: "a", Actual: "b"})
	assert.ErrorIs(t, err, ErrJudgeDisabled)
}

func TestSaveEvaluation(t *testing.T) {
	store := newMemoryStore()
	uc := NewEvaluationUsecase(store, profileCatalog(), nil, ScoringOptions{})
	fixed, dynamic := 100.0, 85.0

	id, err := uc.SaveEvaluation(context.Background(), dto.SaveEvaluationRequest{
		FormID: "profile",
		FieldEval: map[string]dto.FieldEvalDTO{
			"name":       {Expected: json.RawMessage(`"Jane"`), Submitted: json.RawMessage(`"Jane"`), Score: 1, InputType: "text"},
			"bio":        {Score: 0.85, Dynamic: true, InputType: "textarea", Feedback: "close"},
			"birth_date": {Score: 0, InputType: "date"},
		},
		FixedFieldScore:   &fixed,
		DynamicFieldScore: &dynamic,
		OverallAccuracy:   61.67,
	})
	require.NoError(t, err)

	saved := store.evals[id]
	require.NotNil(t, saved)
	assert.Equal(t, string(evaluator.ModeFixedDynamic), saved.Mode)
	assert.Equal(t, 3, saved.TotalFields)
	assert.Equal(t, 2, saved.CorrectFields)
	assert.True(t, saved.FieldEval["bio"].Match)
	assert.False(t, saved.FieldEval["birth_date"].Match)
}

func TestGetResultInvalidID(t *testing.T) {
	uc := NewEvaluationUsecase(newMemoryStore(), profileCatalog(), nil, ScoringOptions{})
	_, err := uc.GetResult(context.Background(), "42")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = uc.GetResult(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrEvaluationNotFound)
}

func TestListByFormPaginates(t *testing.T) {
	store := newMemoryStore()
	uc := NewEvaluationUsecase(store, profileCatalog(), nil, ScoringOptions{})
	for i := 0; i < 5; i++ {
		_, err := uc.Evaluate(context.Background(), dto.EvaluateRequest{FormID: "profile", Submission: map[string]any{}})
		require.NoError(t, err)
	}

	evals, page, err := uc.ListByForm(context.Background(), "profile", 2, 2)
	require.NoError(t, err)
	assert.Len(t, evals, 2)
	assert.Equal(t, int64(5), page.TotalItems)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.True(t, page.HasMore)

	_, page, err = uc.ListByForm(context.Background(), "profile", 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.PageSize)
	assert.Equal(t, 1, page.Page)
}

func TestFormsAndReload(t *testing.T) {
	uc := NewEvaluationUsecase(newMemoryStore(), profileCatalog(), nil, ScoringOptions{})

	forms, err := uc.ListForms()
	require.NoError(t, err)
	assert.Len(t, forms, 2)

	def, err := uc.GetForm("profile")
	require.NoError(t, err)
	assert.Equal(t, "Profile", def.Title)

	src, err := uc.ReloadForms(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, formconfig.SourceManual, src)

	_, err = uc.ReloadForms(context.Background(), "somewhere")
	assert.ErrorIs(t, err, formconfig.ErrUnknownSource)
}
