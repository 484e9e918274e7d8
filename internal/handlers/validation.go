package handlers

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/axioniz/axioniz-api/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators installs the consultation-specific tags on gin's
// validator and makes field errors report JSON names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("service", func(fl validator.FieldLevel) bool { //nolint:errcheck
			return models.IsKnownService(fl.Field().String())
		})
		_ = v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool { //nolint:errcheck
			return models.IsValidTimeSlot(fl.Field().String())
		})
	})
}

// ParseValidationErrors converts binding errors to user-friendly field errors.
// Malformed JSON yields a single error on the "body" field.
func ParseValidationErrors(err error) []models.FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []models.FieldError{{Field: "body", Message: "Invalid request body"}}
	}

	fieldErrors := make([]models.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   fieldPath(fe),
			Message: getErrorMessage(fe),
		})
	}
	return fieldErrors
}

// fieldPath drops the struct name prefix: "ConsultationRequest.services[0]" → "services[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "services" {
			return "At least one service must be selected"
		}
		return fe.Field() + " is required"
	case "email":
		return "Invalid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "At least one service must be selected"
		}
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "No more than " + fe.Param() + " services can be selected"
		}
		return fe.Field() + " must not exceed " + fe.Param() + " characters"
	case "unique":
		return "Services must not repeat"
	case "service":
		return "Unknown service"
	case "datetime":
		return "Date must be in YYYY-MM-DD format"
	case "timeslot":
		return "Please select an available time slot"
	default:
		return fe.Field() + " is invalid"
	}
}
