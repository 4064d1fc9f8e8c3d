// Package validation wraps go-playground/validator with the platform's custom rules
// and turns failures into field-keyed ValidationFailed errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/localnerve/agrilearn/internal/types"
)

var (
	phonePattern    = regexp.MustCompile(`^(\+?250|0)?7[0-9]{8}$`)
	studyTime       = regexp.MustCompile(`^\d+\s?(hours?|days?|weeks?|months?)$`)
	moduleTime      = regexp.MustCompile(`^\d+\s?(minutes?|hours?|days?|weeks?|months?)$`)
	passwordSpecial = "@$!%*?&#^)(><}{|\\:/"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with custom tags registered:
// rwphone, strongpassword, studytime, moduletime.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("rwphone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return StrongPassword(fl.Field().String())
		})
		_ = v.RegisterValidation("studytime", func(fl validator.FieldLevel) bool {
			return studyTime.MatchString(strings.TrimSpace(fl.Field().String()))
		})
		_ = v.RegisterValidation("moduletime", func(fl validator.FieldLevel) bool {
			return moduleTime.MatchString(strings.TrimSpace(fl.Field().String()))
		})
		validate = v
	})
	return validate
}

// StrongPassword requires 8 to 16 characters with a lowercase letter, an
// uppercase letter, a digit and one of the accepted special characters.
func StrongPassword(password string) bool {
	if n := len([]rune(password)); n < 8 || n > 16 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecial, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// Struct validates s and returns a ValidationFailed error describing every bad field
func Struct(errorType string, s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.ValidationFailed(errorType, "Invalid input", nil)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return types.ValidationFailed(errorType, "Invalid input", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "rwphone":
		return "must be a valid Rwandan mobile number"
	case "strongpassword":
		return "must be 8-16 characters with upper and lower case letters, a number and a special character"
	case "studytime":
		return "must look like '3 weeks' (hours, days, weeks or months)"
	case "moduletime":
		return "must look like '45 minutes' (minutes, hours, days, weeks or months)"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
