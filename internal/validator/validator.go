package validator

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

// Field messages shared with the dashboard frontend
const (
	MsgRequired     = "This field is required"
	MsgInvalidEmail = "Please enter a valid email address"
	MsgInvalidURL   = "Please enter a valid URL"
)

var (
	once     sync.Once
	validate *validator.Validate
	masker   = utils.NewSensitiveDataMasker()
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Fields validates v against its struct tags and returns one FieldError per
// failing field, in declaration order. A nil result means v is valid.
func Fields(v any) []apperrors.FieldError {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return []apperrors.FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe)
		value := fe.Value()
		if masker.IsSensitiveField(fe.Field()) {
			value = utils.MaskedValue
		}
		out = append(out, apperrors.FieldError{
			Field:   field,
			Message: message(field, fe),
			Value:   value,
		})
	}
	return out
}

// Struct validates v and wraps any failures in a 400 validation error
func Struct(v any) error {
	fields := Fields(v)
	if len(fields) == 0 {
		return nil
	}
	return apperrors.NewValidationError(apperrors.MsgValidation, fields, 0)
}

// fieldPath drops the root struct name from the namespace, leaving json
// paths like "source.name"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(field string, fe validator.FieldError) string {
	label := label(field)
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return MsgInvalidEmail
	case "url":
		return MsgInvalidURL
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("Cannot have more than %s %s", fe.Param(), field)
		}
		return fmt.Sprintf("%s cannot exceed %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s is invalid", label)
}

// label turns "source.name" into "Name"
func label(field string) string {
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	if field == "" {
		return "Value"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
