package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quillmind/quillmind/server/internal/model"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct checks the `validate` tags on s. Failures wrap model.ErrValidation
// and name every offending field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, fieldMessage(f))
	}
	return fmt.Errorf("%w: %s", model.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(f validator.FieldError) string {
	switch f.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", f.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f.Field(), f.Param())
	case "max":
		return fmt.Sprintf("%s exceeds %s characters", f.Field(), f.Param())
	default:
		return fmt.Sprintf("%s failed %s", f.Field(), f.Tag())
	}
}
