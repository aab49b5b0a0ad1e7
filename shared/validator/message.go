package validator

import (
	"errors"
	"fmt"

	val "github.com/go-playground/validator/v10"
)

type describe func(field, param string) string

func bound(op string) describe {
	return func(field, param string) string {
		return fmt.Sprintf("%s must be %s %s", field, op, param)
	}
}

func fixed(text string) describe {
	return func(field, _ string) string {
		return field + " " + text
	}
}

var messages = map[string]describe{
	"required":     fixed("is required"),
	"email":        fixed("must be a valid email address"),
	"uuid":         fixed("must be a valid identifier"),
	"calendardate": fixed("must be a date (YYYY-MM-DD)"),
	"gt":           bound("greater than"),
	"gte":          bound("greater than or equal to"),
	"min":          bound("greater than or equal to"),
	"lte":          bound("less than or equal to"),
	"max":          bound("less than or equal to"),
	"oneof":        bound("one of"),
	"mimetypes":    bound("one of"),
	"maxfilesize": func(field, param string) string {
		return fmt.Sprintf("%s must not exceed %s MB", field, param)
	},
}

// message describes the first failed rule that has a readable form.
func message(err error) string {
	var fieldErrors val.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	for _, fe := range fieldErrors {
		if fn, ok := messages[fe.Tag()]; ok {
			return fn(fe.Field(), fe.Param())
		}
	}

	return fieldErrors.Error()
}
