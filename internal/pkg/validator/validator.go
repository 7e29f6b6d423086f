package validator

import (
	"fmt"
	"strings"
	"sync"

	gpvalidator "github.com/go-playground/validator/v10"
)

var (
	v    *gpvalidator.Validate
	once sync.Once
)

func instance() *gpvalidator.Validate {
	once.Do(func() {
		v = gpvalidator.New()
	})
	return v
}

// Struct validates a struct using its `validate` tags
func Struct(s interface{}) error {
	return instance().Struct(s)
}

// Describe converts a validation error to a human-readable message
// for the first failing field
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var verrs gpvalidator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); !ok || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func asValidationErrors(err error, target *gpvalidator.ValidationErrors) bool {
	verrs, ok := err.(gpvalidator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}
