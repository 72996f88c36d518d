package dto

import (
	"encoding/json"
	"time"

	"github.com/fadilmartias/form-evaluator/internal/model"
	"github.com/google/uuid"
)

// EvaluateRequest scores a submission against a catalogue form.
type EvaluateRequest struct {
	FormID     string         `json:"form_id" validate:"required"`
	Submission map[string]any `json:"submission" validate:"required"`
	Mode       string         `json:"mode" validate:"omitempty,oneof=required-optional fixed-dynamic"`
	Layout     string         `json:"layout" validate:"omitempty,oneof=single-column two-column split-screen wizard-style website-style"`
	// DryRun skips persisting the result.
	DryRun bool `json:"dry_run"`
}

type EvaluateFieldRequest struct {
	Expected   string `json:"expected" validate:"required"`
	Actual     string `json:"actual" validate:"required"`
	FieldLabel string `json:"fieldLabel"`
}

type EvaluateFieldResponse struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// FieldEvalDTO is one field of a client-computed evaluation.
type FieldEvalDTO struct {
	Expected  json.RawMessage `json:"expected"`
	Submitted json.RawMessage `json:"submitted"`
	Score     float64         `json:"score" validate:"gte=0,lte=1"`
	Match     bool            `json:"match"`
	Required  bool            `json:"required"`
	Dynamic   bool            `json:"dynamic"`
	InputType string          `json:"inputType" validate:"required,fieldtype"`
	Feedback  string          `json:"feedback,omitempty"`
}

// SaveEvaluationRequest persists an evaluation computed elsewhere.
type SaveEvaluationRequest struct {
	FormID             string                  `json:"form_id" validate:"required"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	Type               string                  `json:"type" validate:"omitempty,oneof=single-page multipage"`
	Layout             string                  `json:"layout" validate:"omitempty,oneof=single-column two-column split-screen wizard-style website-style"`
	InputToLLM         string                  `json:"inputToLLM"`
	FieldEval          map[string]FieldEvalDTO `json:"field_eval" validate:"required,dive"`
	FixedFieldScore    *float64                `json:"fixed_field_score" validate:"omitempty,gte=0,lte=100"`
	DynamicFieldScore  *float64                `json:"dynamic_field_score" validate:"omitempty,gte=0,lte=100"`
	RequiredFieldScore *float64                `json:"required_field_score" validate:"omitempty,gte=0,lte=100"`
	OptionalFieldScore *float64                `json:"optional_field_score" validate:"omitempty,gte=0,lte=100"`
	OverallAccuracy    float64                 `json:"overall_accuracy" validate:"gte=0,lte=100"`
}

type EvaluationDTO struct {
	EvalID             uuid.UUID               `json:"eval_id"`
	FormID             string                  `json:"form_id"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	Type               string                  `json:"type"`
	Layout             string                  `json:"layout,omitempty"`
	InputToLLM         string                  `json:"inputToLLM"`
	Mode               string                  `json:"mode,omitempty"`
	FieldEval          map[string]FieldEvalDTO `json:"field_eval"`
	FixedFieldScore    *float64                `json:"fixed_field_score"`
	DynamicFieldScore  *float64                `json:"dynamic_field_score"`
	RequiredFieldScore *float64                `json:"required_field_score"`
	OptionalFieldScore *float64                `json:"optional_field_score"`
	OverallAccuracy    float64                 `json:"overall_accuracy"`
	TotalFields        int                     `json:"total_fields"`
	CorrectFields      int                     `json:"correct_fields"`
	CreatedAt          time.Time               `json:"created_at"`
}

func NewEvaluationDTO(e *model.FormEvaluation) EvaluationDTO {
	fields := make(map[string]FieldEvalDTO, len(e.FieldEval))
	for id, fe := range e.FieldEval {
		fields[id] = FieldEvalDTO(fe)
	}
	return EvaluationDTO{
		EvalID:             e.EvalID,
		FormID:             e.FormID,
		Title:              e.Title,
		Description:        e.Description,
		Type:               e.Type,
		Layout:             e.Layout,
		InputToLLM:         e.InputToLLM,
		Mode:               e.Mode,
		FieldEval:          fields,
		FixedFieldScore:    e.FixedFieldScore,
		DynamicFieldScore:  e.DynamicFieldScore,
		RequiredFieldScore: e.RequiredFieldScore,
		OptionalFieldScore: e.OptionalFieldScore,
		OverallAccuracy:    e.OverallAccuracy,
		TotalFields:        e.TotalFields,
		CorrectFields:      e.CorrectFields,
		CreatedAt:          e.CreatedAt,
	}
}
