// Package validation содержит функции валидации входных данных.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// New создаёт валидатор структур с дополнительными правилами магазина:
// тег phone принимает номер из 10-15 цифр с необязательным «+», пробелы, дефисы и скобки игнорируются.
func New() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register phone rule: %w", err)
	}
	return v, nil
}

// MustNew как New, но паникует, если правило не удалось зарегистрировать.
func MustNew() *validator.Validate {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// NormalizePhone убирает из номера пробелы, дефисы и скобки.
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
}

// IsValidPhone проверяет номер телефона. Пустая строка допустима: телефон в профиле необязателен.
func IsValidPhone(phone string) bool {
	if phone == "" {
		return true
	}
	return phoneRe.MatchString(NormalizePhone(phone))
}
