package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

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
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), v.Message())
}

// Message joins the individual messages the way they are shown to operators.
func (v ValidationErrors) Message() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Message)
	}
	return strings.Join(msgs, "; ")
}

type validEnum interface {
	Valid() bool
}

// Validator checks request payloads before they are sent to the parking service.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// "enum" accepts any value whose Valid method reports true.
	if err := v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(validEnum)
		return ok && e.Valid()
	}); err != nil {
		panic(fmt.Sprintf("register enum validator: %v", err))
	}
	return &Validator{validate: v}
}

func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "gt":
		return label + " is required."
	case "enum":
		return label + " is not a supported value."
	}
	return fmt.Sprintf("%s is invalid.", label)
}

func fieldLabel(field string) string {
	switch field {
	case "number_plate":
		return "Number plate"
	case "vehicle_type":
		return "Vehicle type"
	case "billing_type":
		return "Billing type"
	case "slot_id":
		return "Slot"
	case "status":
		return "Status"
	}
	return field
}
