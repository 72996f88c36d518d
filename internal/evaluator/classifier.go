package evaluator

import "fmt"

// Mode names a partition of the fields into two scoring buckets.
type Mode string

const (
	ModeRequiredOptional Mode = "required-optional"
	ModeFixedDynamic     Mode = "fixed-dynamic"
)

// ParseMode accepts the mode names; the empty string selects the default
// required/optional mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRequiredOptional:
		return ModeRequiredOptional, nil
	case ModeFixedDynamic:
		return ModeFixedDynamic, nil
	}
	return "", fmt.Errorf("unknown scoring mode %q", s)
}

// Classes returns the two buckets of the mode, primary first.
func (m Mode) Classes() [2]Class {
	if m == ModeFixedDynamic {
		return [2]Class{ClassFixed, ClassDynamic}
	}
	return [2]Class{ClassRequired, ClassOptional}
}

// Class decides how a field is scored.
type Class string

const (
	// ClassRequired fields score 1 on a comparator match.
	ClassRequired Class = "required"
	// ClassOptional fields score 1 when any value is present.
	ClassOptional Class = "optional"
	// ClassFixed fields score 1 on a comparator match.
	ClassFixed Class = "fixed"
	// ClassDynamic fields are scored by the semantic judge.
	ClassDynamic Class = "dynamic"
)

// FieldClassifier assigns every ground-truth field to a class. known is false
// when the field was missing from the schema and f is a fallback descriptor.
type FieldClassifier interface {
	Mode() Mode
	Classify(f FieldDescriptor, known bool) Class
}

// RequiredClassifier splits fields by their required flag.
type RequiredClassifier struct{}

func (RequiredClassifier) Mode() Mode { return ModeRequiredOptional }

func (RequiredClassifier) Classify(f FieldDescriptor, _ bool) Class {
	if f.Required {
		return ClassRequired
	}
	return ClassOptional
}

// DefaultDynamicTypes are the free-text types a judge has to score.
var DefaultDynamicTypes = []FieldType{TypeText, TypeTextarea, TypeAddress}

// TypeClassifier marks free-text field types dynamic and the rest fixed.
type TypeClassifier struct {
	dynamic map[FieldType]struct{}
}

// NewTypeClassifier uses DefaultDynamicTypes when no types are given.
func NewTypeClassifier(dynamicTypes ...FieldType) TypeClassifier {
	if len(dynamicTypes) == 0 {
		dynamicTypes = DefaultDynamicTypes
	}
	c := TypeClassifier{dynamic: make(map[FieldType]struct{}, len(dynamicTypes))}
	for _, t := range dynamicTypes {
		c.dynamic[t] = struct{}{}
	}
	return c
}

func (TypeClassifier) Mode() Mode { return ModeFixedDynamic }

func (c TypeClassifier) Classify(f FieldDescriptor, known bool) Class {
	if !known {
		return ClassFixed
	}
	if _, ok := c.dynamic[f.Type]; ok {
		return ClassDynamic
	}
	return ClassFixed
}

// ClassifierFor returns the built-in classifier of a mode.
func ClassifierFor(m Mode) FieldClassifier {
	if m == ModeFixedDynamic {
		return NewTypeClassifier()
	}
	return RequiredClassifier{}
}
