package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gameden/internal/bookings/calendar"
	"gameden/internal/bookings/pricing"
	"gameden/pkg/logger"
	"gameden/pkg/model"

	"github.com/go-playground/validator/v10"
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

// Details renders the errors as a field to message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("resource_type", validateResourceType); err != nil {
		log.Fatal("Failed to register 'resource_type' validator", "error", err)
	}
	if err := v.RegisterValidation("time_slot", validateTimeSlot); err != nil {
		log.Fatal("Failed to register 'time_slot' validator", "error", err)
	}

	log.Debug("Booking validator initialized")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateResourceType(fl validator.FieldLevel) bool {
	return model.ResourceType(fl.Field().String()).Valid()
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return calendar.Contains(fl.Field().String())
}

// Validate checks a sanitized request. Party size must already be defaulted.
func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors
	switch req.ResourceType {
	case model.RacingRig:
		if req.Duration%pricing.MinutesPerSlot != 0 {
			errs = append(errs, ValidationError{
				Field:   "duration",
				Message: fmt.Sprintf("duration must be a multiple of %d minutes", pricing.MinutesPerSlot),
			})
		}
		if req.Duration > calendar.Len()*pricing.MinutesPerSlot {
			errs = append(errs, ValidationError{
				Field:   "duration",
				Message: fmt.Sprintf("duration must be at most %d minutes", calendar.Len()*pricing.MinutesPerSlot),
			})
		}
		if req.PartySize != 1 {
			errs = append(errs, ValidationError{
				Field:   "party_size",
				Message: "racing wheel bookings are for a single player",
			})
		}
	default:
		if req.Duration > calendar.Len() {
			errs = append(errs, ValidationError{
				Field:   "duration",
				Message: fmt.Sprintf("duration must be at most %d hours", calendar.Len()),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "e164":
			message = fmt.Sprintf("%s must be a valid phone number (e.g., +919876543210)", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "resource_type":
			message = fmt.Sprintf("%s must be one of: %s, %s, %s", err.Field(), model.StandardConsole, model.ProConsole, model.RacingRig)
		case "time_slot":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(calendar.Labels(), ", "))
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
