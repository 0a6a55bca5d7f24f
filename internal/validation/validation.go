package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"letraz-autoapply/internal/language"
	"letraz-autoapply/pkg/utils"
)

// PhonePattern accepts digits with an optional leading + and common separators
var PhonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()./-]{5,24}$`)

var (
	instance *validator.Validate
	once     sync.Once
)

// Validator returns the shared validator with the custom tags registered
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		RegisterValidators(instance)
	})
	return instance
}

// RegisterValidators registers the phone, regexp and language tags
func RegisterValidators(v *validator.Validate) {
	v.RegisterValidation("phone", ValidatePhone)
	v.RegisterValidation("regexp", ValidateRegexp)
	v.RegisterValidation("language", ValidateLanguage)
}

// ValidatePhone validates loosely formatted phone numbers
func ValidatePhone(fl validator.FieldLevel) bool {
	return PhonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

// ValidateRegexp ensures the field compiles as a regular expression
func ValidateRegexp(fl validator.FieldLevel) bool {
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}

// ValidateLanguage accepts "any", an English language name or an ISO 639-1 code
func ValidateLanguage(fl validator.FieldLevel) bool {
	return language.IsKnown(fl.Field().String())
}

// Struct validates s and converts failures into a validation CustomError
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return utils.NewValidationError(err.Error())
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return utils.NewValidationError(strings.Join(details, "; "))
}
