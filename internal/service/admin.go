package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/tuning-shop/internal/model"
	"github.com/mmeshcher/tuning-shop/internal/pricing"
)

// carTextPolicy пропускает базовую разметку в описаниях автомобилей и вырезает скрипты и обработчики событий.
var carTextPolicy = bluemonday.UGCPolicy()

// CreateCategory создаёт категорию. URL-идентификатор строится из названия, если не задан.
func (s *Service) CreateCategory(ctx context.Context, c *model.Category) error {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return s.repo.CreateCategory(ctx, c)
}

// CreateCar добавляет автомобиль в каталог. URL-идентификатор строится из марки, модели и года, если не задан.
func (s *Service) CreateCar(ctx context.Context, c *model.Car) error {
	if c.Price < 0 {
		return ErrInvalidPrice
	}
	if c.Slug == "" {
		c.Slug = slug.Make(strings.Join([]string{c.Brand, c.Model, strconv.Itoa(c.Year)}, " "))
	}
	c.Description = carTextPolicy.Sanitize(c.Description)
	c.TuningDetails = carTextPolicy.Sanitize(c.TuningDetails)
	return s.repo.CreateCar(ctx, c)
}

// UpdateCar меняет цену и наличие автомобиля. Уже оформленные заказы не затрагиваются.
func (s *Service) UpdateCar(ctx context.Context, id int64, price *int64, available *bool) (*model.Car, error) {
	if price != nil && *price < 0 {
		return nil, ErrInvalidPrice
	}
	return s.repo.UpdateCar(ctx, id, price, available)
}

// UpdateOrderStatus переводит заказ в новый статус. При доставке начисляет бонусы покупателю.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*model.Order, error) {
	next := model.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidStatusTransition, status)
	}
	return s.repo.TransitionOrder(ctx, orderID, next, s.shippedBonus)
}

// shippedBonus переводит сумму заказа в копейки и берёт от неё BonusPercent процентов.
func (s *Service) shippedBonus(o model.Order) int64 {
	return pricing.Percent(o.TotalPrice*100, s.opts.BonusPercent)
}

// AdjustBonus изменяет бонусный счёт пользователя на amount рублей и возвращает новый баланс в копейках.
func (s *Service) AdjustBonus(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	cents := amount.Shift(2).Truncate(0).IntPart()
	if cents == 0 {
		return 0, ErrInvalidAmount
	}
	return s.repo.AdjustBonus(ctx, userID, cents)
}
