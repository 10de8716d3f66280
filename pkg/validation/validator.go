// Package validation checks struct tags on imported rows and request input.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError describes one failed field constraint.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks data against its validate tags. It returns nil when data
// is valid.
func Validate(data interface{}) []ValidationError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Message: err.Error()}}
	}

	errs := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("field must satisfy %s constraint", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("field must satisfy %s=%s constraint", fe.Tag(), fe.Param())
		}
		errs = append(errs, ValidationError{Field: fe.Field(), Message: msg})
	}
	return errs
}

// Summary joins validation errors into one line.
func Summary(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Field == "" {
			parts = append(parts, e.Message)
			continue
		}
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}
