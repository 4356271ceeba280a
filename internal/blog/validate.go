package blog

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/UkralStul/blogicum/internal/domain"
)

// Форматы поля datetime-local.
var pubDateLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04"}

// bcrypt обрезает пароль после 72 байт
const maxPasswordBytes = 72

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// validate общий для всех форм. Имена полей в ошибках берутся из тега form.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// ошибка регистрации возможна только при пустом имени тега
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("bcrypt", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return v
}

// ValidateForm проверяет теги validate у формы и складывает ошибки в errs.
// Для каждого поля сохраняется первая ошибка.
func ValidateForm(errs *domain.ValidationError, form any) error {
	err := validate.Struct(form)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), fieldMessage(fe))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	password := strings.HasPrefix(fe.Field(), "password")
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "min":
		if password {
			return fmt.Sprintf("This password is too short. It must contain at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "bcrypt":
		return fmt.Sprintf("This password is too long. It must contain at most %d bytes.", maxPasswordBytes)
	case "eqfield":
		return "The two password fields didn't match."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return "Enter a valid value."
}

// ParsePubDate разбирает дату из формы. Время считается в UTC.
func ParsePubDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range pubDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// FormatPubDate - обратное преобразование для заполнения формы.
func FormatPubDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(pubDateLayouts[0])
}

func parseOptionalID(raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, fmt.Errorf("invalid id %q", raw)
	}
	id := uint(n)
	return &id, nil
}
