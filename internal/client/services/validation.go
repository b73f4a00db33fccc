package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MinPasswordStrength is the lowest PasswordStrength score accepted for a
// new password.
const MinPasswordStrength = 2

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strong", func(fl validator.FieldLevel) bool {
		return PasswordStrength(fl.Field().String()) >= MinPasswordStrength
	})
	return v
}

// Credentials are what the user types into the login form. Identifier is a
// username or an email address.
type Credentials struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Registration is the sign-up form.
type Registration struct {
	Username             string `json:"username" validate:"required,min=3,max=30,username"`
	Email                string `json:"email" validate:"required,email"`
	Phone                string `json:"phone,omitempty" validate:"omitempty,e164"`
	FirstName            string `json:"first_name" validate:"required,max=50"`
	LastName             string `json:"last_name,omitempty" validate:"max=50"`
	Password             string `json:"password" validate:"required,min=8,strong"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// PasswordReset is the body of the reset-password call.
type PasswordReset struct {
	Token                string `json:"token" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8,strong"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

var fieldLabels = map[string]string{
	"identifier":            "Username or email",
	"first_name":            "First name",
	"last_name":             "Last name",
	"password_confirmation": "Password confirmation",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

// Validate checks a form struct and returns field → message, or nil when
// the form is valid. All violations are reported, not only the first.
func Validate(form any) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label(fe.Field()) + " is required"
	case "email":
		return "Please enter a valid email address"
	case "e164":
		return "Please enter a valid phone number"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label(fe.Field()), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label(fe.Field()), fe.Param())
	case "username":
		return "Username may only contain letters, numbers, dots and underscores"
	case "strong":
		return "Password is too weak"
	case "eqfield":
		return "Passwords do not match"
	}
	return label(fe.Field()) + " is invalid"
}

func firstError(errs map[string]string) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if len(keys) == 0 {
		return ""
	}
	return errs[keys[0]]
}

// PasswordStrength scores a password from 0 to 4: one point each for
// length ≥ 8, mixed case, a digit and a symbol. Twelve or more characters
// earn a bonus point, capped at 4.
func PasswordStrength(pw string) int {
	if pw == "" {
		return 0
	}
	n := utf8.RuneCountInString(pw)
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	score := 0
	for _, ok := range []bool{n >= 8, lower && upper, digit, symbol, n >= 12} {
		if ok {
			score++
		}
	}
	return min(score, 4)
}

// StrengthLabel names a PasswordStrength score.
func StrengthLabel(score int) string {
	switch {
	case score <= 0:
		return "very weak"
	case score == 1:
		return "weak"
	case score == 2:
		return "fair"
	case score == 3:
		return "good"
	default:
		return "strong"
	}
}
