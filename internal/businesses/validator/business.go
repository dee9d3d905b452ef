package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"slotify/pkg/clock"
	"slotify/pkg/logger"
	"slotify/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BusinessValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBusinessValidator(log *logger.Logger) *BusinessValidator {
	v := validator.New()

	log.Info("Business validator initialized successfully")

	return &BusinessValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BusinessValidator) Validate(business *model.Business) error {
	if err := v.validate.Struct(business); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if len(business.WeeklyHours) > 0 {
		return v.ValidateWeeklyHours(business.WeeklyHours)
	}

	return nil
}

func (v *BusinessValidator) ValidateUpdate(update *model.BusinessUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateWeeklyHours checks every submitted day: the key must be a known
// day, and an open day needs well-formed HH:MM times with start before end.
// Times on a closed day are ignored, not rejected; they may be stale values
// the UI kept around.
func (v *BusinessValidator) ValidateWeeklyHours(hours model.WeeklyHours) error {
	var errs ValidationErrors

	known := make(map[clock.DayKey]bool, 7)
	for _, day := range clock.AllDayKeys() {
		known[day] = true
	}

	for day, dayHours := range hours {
		if !known[day] {
			errs = append(errs, ValidationError{
				Field:   string(day),
				Message: "unknown day key",
			})
			continue
		}

		if !dayHours.Open {
			continue
		}

		start, err := clock.Parse(dayHours.Start)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   string(day),
				Message: fmt.Sprintf("invalid start time %q, must be HH:MM", dayHours.Start),
			})
			continue
		}
		end, err := clock.Parse(dayHours.End)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   string(day),
				Message: fmt.Sprintf("invalid end time %q, must be HH:MM", dayHours.End),
			})
			continue
		}
		if !start.Before(end) {
			errs = append(errs, ValidationError{
				Field:   string(day),
				Message: fmt.Sprintf("start time %s must be before end time %s", dayHours.Start, dayHours.End),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BusinessValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA time zone", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
