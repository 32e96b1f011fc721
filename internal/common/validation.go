package common

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MaxContentLength is the longest caption any connected platform accepts.
const MaxContentLength = 63206

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the planner's custom rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("post_status", func(fl validator.FieldLevel) bool {
			return PostStatus(fl.Field().String()).IsValid()
		})
		_ = validate.RegisterValidation("decision", func(fl validator.FieldLevel) bool {
			d := Decision(fl.Field().String())
			return d == DecisionApprove || d == DecisionReject
		})
	})
	return validate
}

// ValidateStruct runs struct tags and reports the first failure as a ValidationError.
func ValidateStruct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:   lowerFirst(fe.Field()),
			Message: describeTag(fe),
		}
	}
	return err
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
