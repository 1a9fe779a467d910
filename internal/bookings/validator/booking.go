package validator

import (
	"taskhire/pkg/logger"
	"taskhire/pkg/model"
	"taskhire/pkg/validation"
)

type BookingValidator struct {
	validator *validation.Validator
	logger    *logger.Logger
}

func NewBookingValidator(v *validation.Validator, log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validator: v,
		logger:    log,
	}
}

// Validate checks a complete booking before it is written.
func (v *BookingValidator) Validate(b *model.Booking) error {
	if err := v.validator.Struct(b); err != nil {
		v.logger.Debug("Booking failed validation", "booking_id", b.ID, "error", err)
		return err
	}
	return nil
}

func (v *BookingValidator) ValidatePatch(p *model.BookingPatch) error {
	var errs validation.ValidationErrors
	if err := v.validator.Struct(p); err != nil {
		verrs, ok := err.(validation.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}
	if p.Date != nil && p.Date.IsZero() {
		errs = append(errs, validation.ValidationError{Field: model.FieldDate, Message: "date must be a valid date"})
	}
	if p.Version != nil && *p.Version < 0 {
		errs = append(errs, validation.ValidationError{Field: "version", Message: "version must be at least 0"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) ValidateReview(in *model.ReviewInput) error {
	return v.validator.Struct(in)
}

func (v *BookingValidator) ValidateStatus(status model.BookingStatus) error {
	return v.validator.Var(model.FieldStatus, string(status), "oneof=Pending In-progress Completed Cancelled")
}
