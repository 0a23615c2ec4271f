// Package catalog описывает фильтр каталога автомобилей.
package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmeshcher/tuning-shop/internal/model"
)

// Options содержит значения фильтров, полученные из хранилища при обработке запроса.
// По ним введённая марка или страна приводится к написанию из каталога.
type Options struct {
	Brands     []string
	Countries  []string
	Categories []model.Category
}

// Criteria содержит нормализованные условия фильтрации каталога. Нулевое значение не фильтрует ничего.
type Criteria struct {
	CategoryID *int64
	Brand      string
	Country    string
	PriceMin   *int64
	PriceMax   *int64
}

// ParseCriteria строит условия фильтрации из параметров запроса.
// Некорректные числа игнорируются. Марка или страна, которой нет среди вариантов, остаётся в фильтре как есть
// и ничему не соответствует.
func ParseCriteria(values url.Values, opts Options) Criteria {
	var c Criteria

	if id, ok := parsePositive(values.Get("category")); ok {
		c.CategoryID = &id
	}

	c.Brand = pickOption(values.Get("brand"), opts.Brands)
	c.Country = pickOption(values.Get("country"), opts.Countries)

	if v, ok := parseNonNegative(values.Get("price_min")); ok {
		c.PriceMin = &v
	}
	if v, ok := parseNonNegative(values.Get("price_max")); ok {
		c.PriceMax = &v
	}

	return c
}

// Empty сообщает, что ни одно условие не задано.
func (c Criteria) Empty() bool {
	return c.CategoryID == nil && c.Brand == "" && c.Country == "" && c.PriceMin == nil && c.PriceMax == nil
}

// Match проверяет, удовлетворяет ли автомобиль условиям фильтра.
func (c Criteria) Match(car model.Car) bool {
	if c.CategoryID != nil && car.CategoryID != *c.CategoryID {
		return false
	}
	if c.Brand != "" && !strings.EqualFold(car.Brand, c.Brand) {
		return false
	}
	if c.Country != "" && !strings.EqualFold(car.Country, c.Country) {
		return false
	}
	if c.PriceMin != nil && car.Price < *c.PriceMin {
		return false
	}
	if c.PriceMax != nil && car.Price > *c.PriceMax {
		return false
	}
	return true
}

// Where переводит условия в SQL-предикат над таблицей cars.
// Нумерация плейсхолдеров начинается с firstArg. Для пустого фильтра возвращается пустая строка.
func (c Criteria) Where(firstArg int) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, firstArg+len(args)-1))
	}

	if c.CategoryID != nil {
		add("category_id = $%d", *c.CategoryID)
	}
	if c.Brand != "" {
		add("LOWER(brand) = LOWER($%d)", c.Brand)
	}
	if c.Country != "" {
		add("LOWER(country) = LOWER($%d)", c.Country)
	}
	if c.PriceMin != nil {
		add("price >= $%d", *c.PriceMin)
	}
	if c.PriceMax != nil {
		add("price <= $%d", *c.PriceMax)
	}

	return strings.Join(conds, " AND "), args
}

func pickOption(raw string, choices []string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	for _, choice := range choices {
		if strings.EqualFold(choice, v) {
			return choice
		}
	}
	return v
}

func parseNonNegative(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func parsePositive(raw string) (int64, bool) {
	v, ok := parseNonNegative(raw)
	return v, ok && v > 0
}
