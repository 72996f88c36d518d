package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/fadilmartias/form-evaluator/internal/evaluator"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the form tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "fieldtype", func(fl validator.FieldLevel) bool {
			t := evaluator.FieldType(fl.Field().String())
			for _, known := range evaluator.FieldTypes {
				if t == known {
					return true
				}
			}
			return false
		})
		mustRegister(v, "semantickind", func(fl validator.FieldLevel) bool {
			return evaluator.SemanticKind(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// ValidateStruct runs the shared validator and turns failures into a
// *FormError keyed by the JSON path of each field.
func ValidateStruct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = validationMessage(fe)
	}
	return NewFormError("validation failed", fields)
}

// fieldPath drops the root struct name and embedded descriptors from the
// namespace.
func fieldPath(fe validator.FieldError) string {
	ns := strings.ReplaceAll(fe.Namespace(), ".FieldDescriptor", "")
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "fieldtype":
		return fmt.Sprintf("unsupported field type %q", fe.Value())
	case "semantickind":
		return fmt.Sprintf("unknown semantic kind %q", fe.Value())
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "uuid", "uuid4":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
