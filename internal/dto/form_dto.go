package dto

import "github.com/fadilmartias/form-evaluator/internal/formconfig"

// FormSummaryDTO is a catalogue entry without its pages or answers.
type FormSummaryDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	PageCount   int    `json:"page_count"`
	FieldCount  int    `json:"field_count"`
}

// FormDTO is a form as shown to a filler. The ground truth is never sent.
type FormDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Type        string            `json:"type"`
	Pages       []formconfig.Page `json:"pages"`
	InputToLLM  string            `json:"inputToLLM"`
}

func NewFormSummaryDTO(def *formconfig.FormDefinition) FormSummaryDTO {
	return FormSummaryDTO{
		ID:          def.ID,
		Title:       def.Title,
		Description: def.Description,
		Type:        string(def.Type),
		PageCount:   len(def.Pages),
		FieldCount:  def.FieldCount(),
	}
}

func NewFormDTO(def *formconfig.FormDefinition) FormDTO {
	return FormDTO{
		ID:          def.ID,
		Title:       def.Title,
		Description: def.Description,
		Type:        string(def.Type),
		Pages:       def.Pages,
		InputToLLM:  def.InputToLLM,
	}
}
