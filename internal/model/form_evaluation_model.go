package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FieldEval is the stored projection of one field result.
type FieldEval struct {
	Expected  json.RawMessage `json:"expected"`
	Submitted json.RawMessage `json:"submitted"`
	Score     float64         `json:"score"`
	Match     bool            `json:"match"`
	Required  bool            `json:"required"`
	Dynamic   bool            `json:"dynamic"`
	InputType string          `json:"inputType"`
	Feedback  string          `json:"feedback,omitempty"`
}

// FieldEvals is persisted as a jsonb object keyed by field id.
type FieldEvals map[string]FieldEval

func (f FieldEvals) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *FieldEvals) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*f = FieldEvals{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan field evals: unsupported type %T", src)
	}
	out := FieldEvals{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan field evals: %w", err)
	}
	*f = out
	return nil
}

type FormEvaluation struct {
	EvalID             uuid.UUID  `gorm:"column:eval_id;type:uuid;primaryKey" json:"eval_id"`
	FormID             string     `gorm:"type:varchar(255);index;not null" json:"form_id"`
	Title              string     `gorm:"type:text" json:"title"`
	Description        string     `gorm:"type:text" json:"description"`
	Type               string     `gorm:"type:varchar(50)" json:"type"`
	Layout             string     `gorm:"type:varchar(50)" json:"layout"`
	InputToLLM         string     `gorm:"column:input_to_llm;type:text" json:"input_to_llm"`
	Mode               string     `gorm:"type:varchar(50)" json:"mode"`
	FieldEval          FieldEvals `gorm:"type:jsonb" json:"field_eval"`
	FixedFieldScore    *float64   `gorm:"type:float" json:"fixed_field_score"`
	DynamicFieldScore  *float64   `gorm:"type:float" json:"dynamic_field_score"`
	RequiredFieldScore *float64   `gorm:"type:float" json:"required_field_score"`
	OptionalFieldScore *float64   `gorm:"type:float" json:"optional_field_score"`
	OverallAccuracy    float64    `gorm:"type:float" json:"overall_accuracy"`
	TotalFields        int        `json:"total_fields"`
	CorrectFields      int        `json:"correct_fields"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
}

func (e *FormEvaluation) TableName() string {
	return "form_evaluations"
}
