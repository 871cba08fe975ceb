package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"rms/shared/failure"
	"rms/shared/timezone"
	"strings"

	val "github.com/go-playground/validator/v10"
)

const (
	tagClock   = "clock"
	tagISODate = "isodate"
)

// Failed rules are reported with the request field name, so clients see party_size
// rather than PartySize.
var messages = map[string]string{
	"required": "%s is required",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"min":      "%s must be at least %s characters",
	"max":      "%s must be at most %s characters",
	"oneof":    "%s must be one of %s",
	"email":    "%s must be a valid email address",
	"uuid":     "%s must be a valid UUID",
	tagClock:   "%s must be a time in HH:MM format",
	tagISODate: "%s must be a date in YYYY-MM-DD format",
}

var validate = newValidate()

func newValidate() *val.Validate {
	v := val.New(val.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	for tag, fn := range map[string]val.Func{tagClock: isClock, tagISODate: isDate} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}

	return v
}

// isClock accepts zero padded 24h times only.
func isClock(fl val.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != len(timezone.ClockLayout) {
		return false
	}

	_, err := timezone.Parse(timezone.ClockLayout, value)

	return err == nil
}

func isDate(fl val.FieldLevel) bool {
	_, err := timezone.ParseDate(fl.Field().String())

	return err == nil
}

// Validate decodes a JSON body into data and validates it.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	return wrap(validate.Struct(data))
}

func ValidateVar(field any, tag string) error {
	return wrap(validate.Var(field, tag))
}

func wrap(err error) error {
	if err == nil {
		return nil
	}

	return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
}

// message describes the first failed rule that has a known wording.
func message(err error) string {
	var fieldErrors val.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	for _, fe := range fieldErrors {
		format, ok := messages[fe.Tag()]
		if !ok {
			continue
		}

		if strings.Count(format, "%s") == 1 {
			return fmt.Sprintf(format, fe.Field())
		}

		return fmt.Sprintf(format, fe.Field(), fe.Param())
	}

	return fieldErrors.Error()
}
