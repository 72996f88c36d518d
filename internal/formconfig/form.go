package formconfig

import (
	"fmt"

	"github.com/fadilmartias/form-evaluator/internal/evaluator"
)

type FormType string

const (
	FormSinglePage FormType = "single-page"
	FormMultipage  FormType = "multipage"
)

// Field is a rendered form field. Only the embedded descriptor matters to
// scoring; the rest are presentation hints kept for clients.
type Field struct {
	evaluator.FieldDescriptor `yaml:",inline"`

	Placeholder  string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options      []string `json:"options,omitempty" yaml:"options,omitempty"`
	Min          *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Step         *float64 `json:"step,omitempty" yaml:"step,omitempty"`
	DefaultValue *float64 `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Accept       string   `json:"accept,omitempty" yaml:"accept,omitempty"`
	MaxLength    int      `json:"maxLength,omitempty" yaml:"maxLength,omitempty" validate:"gte=0"`
	Currency     string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	MaxStars     int      `json:"maxStars,omitempty" yaml:"maxStars,omitempty" validate:"gte=0"`
	// Allowed restricts date pickers to past ("before") or future ("after") dates.
	Allowed     string  `json:"allowed,omitempty" yaml:"allowed,omitempty" validate:"omitempty,oneof=before after"`
	ChunkFields []Field `json:"chunkFields,omitempty" yaml:"chunkFields,omitempty" validate:"dive"`
}

type Page struct {
	PageNumber int     `json:"pageNumber" yaml:"pageNumber" validate:"gte=1"`
	Fields     []Field `json:"fields" yaml:"fields" validate:"required,dive"`
}

// FormDefinition is one catalogue entry: the form layout, the prompt handed
// to the model filling it and the expected answers.
type FormDefinition struct {
	ID          string         `json:"id" yaml:"id" validate:"required"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Type        FormType       `json:"type" yaml:"type" validate:"required,oneof=single-page multipage"`
	Pages       []Page         `json:"pages" yaml:"pages" validate:"required,min=1,dive"`
	InputToLLM  string         `json:"inputToLLM" yaml:"inputToLLM"`
	GroundTruth map[string]any `json:"groundTruth" yaml:"groundTruth"`
}

// Schema flattens the pages into the scorer's schema.
func (d *FormDefinition) Schema() evaluator.Schema {
	pages := make([]evaluator.Page, 0, len(d.Pages))
	for _, p := range d.Pages {
		fields := make([]evaluator.FieldDescriptor, 0, len(p.Fields))
		for _, f := range p.Fields {
			fields = append(fields, f.FieldDescriptor)
		}
		pages = append(pages, evaluator.Page{PageNumber: p.PageNumber, Fields: fields})
	}
	return evaluator.NewSchema(pages...)
}

// Expected converts the ground truth. Values the scorer cannot represent,
// such as reactive-chunk rows, fail with evaluator.ErrUnsupportedShape.
func (d *FormDefinition) Expected() (evaluator.Values, error) {
	values, err := evaluator.ValuesFromMap(d.GroundTruth)
	if err != nil {
		return nil, fmt.Errorf("form %q ground truth: %w", d.ID, err)
	}
	return values, nil
}

func (d *FormDefinition) FieldCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Fields)
	}
	return n
}
