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

type BlockedTimeValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBlockedTimeValidator(log *logger.Logger) *BlockedTimeValidator {
	v := validator.New()

	log.Info("Blocked time validator initialized successfully")

	return &BlockedTimeValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BlockedTimeValidator) Validate(blockedTime *model.BlockedTime) error {
	if err := v.validate.Struct(blockedTime); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !blockedTime.EndTime.After(blockedTime.StartTime) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "end_time must be after start_time",
			},
		}
	}

	if blockedTime.IsRecurring {
		if blockedTime.RecurrenceType == "" {
			return ValidationErrors{
				ValidationError{
					Field:   "RecurrenceType",
					Message: "recurrence_type is required for recurring blocked times",
				},
			}
		}

		// A recurring template repeats a time-of-day span; one that crosses
		// midnight has no well-defined occurrence on a single day.
		sameDay := blockedTime.StartTime.Year() == blockedTime.EndTime.Year() &&
			blockedTime.StartTime.YearDay() == blockedTime.EndTime.YearDay()
		if !sameDay || clock.MinuteOfDay(blockedTime.StartTime) >= clock.MinuteOfDay(blockedTime.EndTime) {
			return ValidationErrors{
				ValidationError{
					Field:   "EndTime",
					Message: "recurring blocked times must start and end on the same day",
				},
			}
		}

		if blockedTime.RecurrenceEnd != nil && blockedTime.RecurrenceEnd.Before(blockedTime.StartTime) {
			return ValidationErrors{
				ValidationError{
					Field:   "RecurrenceEnd",
					Message: "recurrence_end cannot be before start_time",
				},
			}
		}
	} else {
		if blockedTime.RecurrenceType != "" {
			return ValidationErrors{
				ValidationError{
					Field:   "RecurrenceType",
					Message: "recurrence_type is only valid for recurring blocked times",
				},
			}
		}
		if blockedTime.RecurrenceEnd != nil {
			return ValidationErrors{
				ValidationError{
					Field:   "RecurrenceEnd",
					Message: "recurrence_end is only valid for recurring blocked times",
				},
			}
		}
	}

	return nil
}

func (v *BlockedTimeValidator) ValidateUpdate(update *model.BlockedTimeUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.StartTime != nil && update.EndTime != nil {
		if !update.EndTime.After(*update.StartTime) {
			return ValidationErrors{
				ValidationError{
					Field:   "EndTime",
					Message: "end_time must be after start_time",
				},
			}
		}
	}

	return nil
}

func (v *BlockedTimeValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
