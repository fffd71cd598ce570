// Package validation checks request bodies and reports failures as a
// field-keyed set of human-readable messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"go-api-template/pkg/apierror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their json names so error keys match the payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Struct validates a request payload. On failure it returns a 422 APIError
// whose Errors map is keyed by json field path.
func Struct(payload any) *apierror.APIError {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierror.BadRequest("Validation error")
	}

	formatted := make(map[string][]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		formatted[fe.Field()] = append(formatted[fe.Field()], message(fe))
	}

	return apierror.Validation(formatted)
}

func message(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return "Invalid email"
	case "min":
		unit := "characters"
		if fe.Param() == "1" {
			unit = "character"
		}
		return fmt.Sprintf("%s must be at least %s %s long", label, fe.Param(), unit)
	case "eqfield":
		return "Passwords do not match"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// fieldLabel turns a json field name into a sentence label:
// "confirmPassword" becomes "Confirm password".
func fieldLabel(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
