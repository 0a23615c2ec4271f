// Package pricing вычисляет цену автомобиля с учётом пакета тюнинга.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/tuning-shop/internal/model"
)

// ErrInvalidVariant возвращается для неизвестного пакета тюнинга.
var ErrInvalidVariant = errors.New("invalid tuning variant")

var multipliers = map[model.TuningVariant]decimal.Decimal{
	model.TuningBase:     decimal.NewFromInt(1),
	model.TuningStandard: decimal.RequireFromString("1.15"),
	model.TuningPremium:  decimal.RequireFromString("1.30"),
}

// Multiplier возвращает коэффициент наценки для пакета тюнинга.
func Multiplier(v model.TuningVariant) (decimal.Decimal, error) {
	m, ok := multipliers[v]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidVariant, v)
	}
	return m, nil
}

// ParseVariant приводит пользовательский ввод к пакету тюнинга. Пустая строка означает базовый пакет.
func ParseVariant(raw string) (model.TuningVariant, error) {
	v := model.TuningVariant(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return model.TuningBase, nil
	}
	if _, ok := multipliers[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidVariant, raw)
	}
	return v, nil
}

// UnitPrice возвращает цену единицы товара: базовая цена, умноженная на коэффициент пакета,
// с отбрасыванием дробной части.
func UnitPrice(basePrice int64, v model.TuningVariant) (int64, error) {
	m, err := Multiplier(v)
	if err != nil {
		return 0, err
	}
	return decimal.NewFromInt(basePrice).Mul(m).Truncate(0).IntPart(), nil
}

// LineTotal возвращает стоимость позиции из qty единиц.
func LineTotal(basePrice int64, v model.TuningVariant, qty int) (int64, error) {
	unit, err := UnitPrice(basePrice, v)
	if err != nil {
		return 0, err
	}
	return unit * int64(qty), nil
}

// Percent возвращает долю percent процентов от суммы в копейках, отбрасывая дробную часть.
func Percent(amountCents int64, percent int) int64 {
	if percent <= 0 || amountCents <= 0 {
		return 0
	}
	return decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Truncate(0).
		IntPart()
}

// FormatCents переводит сумму в копейках в десятичную строку рублей.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
