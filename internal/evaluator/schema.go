package evaluator

// FieldType is the input kind a form field is rendered with.
type FieldType string

const (
	TypeText                  FieldType = "text"
	TypeTextarea              FieldType = "textarea"
	TypePhone                 FieldType = "phone"
	TypeEmail                 FieldType = "email"
	TypeURL                   FieldType = "url"
	TypeFile                  FieldType = "file"
	TypeCheckbox              FieldType = "checkbox"
	TypeSwitch                FieldType = "switch"
	TypeSelect                FieldType = "select"
	TypeRadio                 FieldType = "radio"
	TypeMultiselect           FieldType = "multiselect"
	TypeSearchableMultiselect FieldType = "searchable-multiselect"
	TypeDate                  FieldType = "date"
	TypeTime                  FieldType = "time"
	TypeDateRange             FieldType = "date-range"
	TypeNumber                FieldType = "number"
	TypeSlider                FieldType = "slider"
	TypeColor                 FieldType = "color"
	TypeCurrency              FieldType = "currency"
	TypeStarRating            FieldType = "star-rating"
	TypeAddress               FieldType = "address"
	TypeHomeAddress           FieldType = "home-address"
	TypeCountry               FieldType = "country"
	TypeState                 FieldType = "state"
	TypeZip                   FieldType = "zip"
	TypeCreditCard            FieldType = "credit-card"
	TypeExpirationDate        FieldType = "expiration-date"
	TypeCVV                   FieldType = "cvv"
	TypeReactiveChunks        FieldType = "reactive-chunks"
)

// FieldTypes lists every supported field type.
var FieldTypes = []FieldType{
	TypeText, TypeTextarea, TypePhone, TypeEmail, TypeURL, TypeFile,
	TypeCheckbox, TypeSwitch, TypeSelect, TypeRadio, TypeMultiselect,
	TypeSearchableMultiselect, TypeDate, TypeTime, TypeDateRange, TypeNumber,
	TypeSlider, TypeColor, TypeCurrency, TypeStarRating, TypeAddress,
	TypeHomeAddress, TypeCountry, TypeState, TypeZip, TypeCreditCard,
	TypeExpirationDate, TypeCVV, TypeReactiveChunks,
}

// FieldDescriptor is the part of a form field the scorer reads.
type FieldDescriptor struct {
	ID       string       `json:"id" yaml:"id" validate:"required"`
	Type     FieldType    `json:"type" yaml:"type" validate:"required,fieldtype"`
	Label    string       `json:"label" yaml:"label"`
	Required bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Semantic SemanticKind `json:"semanticKind,omitempty" yaml:"semanticKind,omitempty" validate:"omitempty,semantickind"`
}

// Kind is the explicit semantic kind, or the one inferred from the id.
func (f FieldDescriptor) Kind() SemanticKind {
	if f.Semantic != SemanticUnset {
		return f.Semantic
	}
	return InferKind(f.ID)
}

// DisplayLabel falls back to the id when the field has no label.
func (f FieldDescriptor) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}

// Page groups the fields shown together.
type Page struct {
	PageNumber int               `json:"pageNumber" yaml:"pageNumber"`
	Fields     []FieldDescriptor `json:"fields" yaml:"fields" validate:"dive"`
}

// Schema is the ordered set of descriptors for one form.
type Schema struct {
	fields []FieldDescriptor
	index  map[string]int
}

// NewSchema flattens pages in order. A repeated id keeps its first descriptor.
func NewSchema(pages ...Page) Schema {
	s := Schema{index: make(map[string]int)}
	for _, p := range pages {
		for _, f := range p.Fields {
			if _, dup := s.index[f.ID]; dup {
				continue
			}
			s.index[f.ID] = len(s.fields)
			s.fields = append(s.fields, f)
		}
	}
	return s
}

// SchemaOf builds a single-page schema.
func SchemaOf(fields ...FieldDescriptor) Schema {
	return NewSchema(Page{PageNumber: 1, Fields: fields})
}

// Lookup returns the descriptor for id.
func (s Schema) Lookup(id string) (FieldDescriptor, bool) {
	i, ok := s.index[id]
	if !ok {
		return FieldDescriptor{}, false
	}
	return s.fields[i], true
}

// Fields returns the descriptors in page order.
func (s Schema) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s Schema) Len() int { return len(s.fields) }

// fallbackDescriptor is used for ground-truth ids the schema does not know.
func fallbackDescriptor(id string) FieldDescriptor {
	return FieldDescriptor{ID: id, Type: TypeText, Label: id, Required: true}
}
