package user

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	pkgerrors "usuarios-api/pkg/errors"
)

// Messages produced by the entity constraints.
const (
	MsgNameRequired     = "name is required"
	MsgEmailRequired    = "email is required"
	MsgEmailInvalid     = "email is not valid"
	MsgAgeNegative      = "age must be greater than or equal to 0"
	MsgAddressesMissing = "You must provide at least one valid address"
)

// emailPattern is deliberately loose: anything@anything.anything.
var emailPattern = regexp.MustCompile(`.+@.+\..+`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// entityValidator returns the shared validator configured with the entity's custom rules.
func entityValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("docemail", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks u against the entity constraints and returns a
// *errors.ValidationError listing every violation in field order.
func (u *User) Validate() error {
	err := entityValidator().Struct(u)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, constraintMessage(e))
	}
	return pkgerrors.NewValidationError(messages...)
}

// constraintMessage converts a single field error into a human-readable message.
func constraintMessage(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "User.")

	switch field {
	case "name":
		return MsgNameRequired
	case "email":
		if e.Tag() == "required" {
			return MsgEmailRequired
		}
		return MsgEmailInvalid
	case "age":
		return MsgAgeNegative
	case "addresses":
		return MsgAddressesMissing
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
