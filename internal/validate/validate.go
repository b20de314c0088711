// Package validate wraps go-playground/validator with the custom tags used
// for backend payloads and user input.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/phone"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	RegisterCustomValidations(validate)

	// Report JSON names in field errors so messages match the wire format.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// RegisterCustomValidations adds the project's tags to v. It panics if a
// tag cannot be registered.
func RegisterCustomValidations(v *validator.Validate) {
	tags := map[string]validator.Func{
		"timestamp": validateTimestamp,
		"ph_mobile": validatePHMobile,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("validate: registering %q: %v", tag, err))
		}
	}
}

func validateTimestamp(fl validator.FieldLevel) bool {
	_, err := model.ParseTimestamp(fl.Field().String())
	return err == nil
}

func validatePHMobile(fl validator.FieldLevel) bool {
	return phone.Validate(fl.Field().String()) == nil
}

// Struct validates s against its struct tags.
func Struct(s any) error {
	return validate.Struct(s)
}

// Var validates a single value against tag.
func Var(field any, tag string) error {
	return validate.Var(field, tag)
}

// Describe turns validator errors into a short human-readable string, e.g.
// "_id is required; created_at is not a valid timestamp".
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err == nil {
			return ""
		}
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, describeField(fe))
	}
	return strings.Join(parts, "; ")
}

func describeField(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "timestamp":
		return fmt.Sprintf("%s is not a valid timestamp", name)
	case "latitude", "longitude":
		return fmt.Sprintf("%s is out of range", name)
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", name, fe.Param())
	case "ph_mobile":
		return fmt.Sprintf("%s is not a Philippine mobile number", name)
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}
