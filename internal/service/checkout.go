package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmeshcher/tuning-shop/internal/model"
	"github.com/mmeshcher/tuning-shop/internal/pricing"
)

// Checkout оформляет заказ по корзине пользователя и очищает корзину.
// Цены пересчитываются по актуальной стоимости автомобилей внутри транзакции.
func (s *Service) Checkout(ctx context.Context, userID int64) (*model.Order, error) {
	return s.repo.Checkout(ctx, userID, func(items []model.CartItem) (*model.Order, error) {
		return buildOrder(userID, items)
	})
}

func buildOrder(userID int64, items []model.CartItem) (*model.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &model.Order{
		Number: uuid.New(),
		UserID: userID,
		Status: model.OrderStatusNew,
		Items:  make([]model.OrderItem, 0, len(items)),
	}

	for _, item := range items {
		unit, err := pricing.UnitPrice(item.Car.Price, item.Tuning)
		if err != nil {
			return nil, fmt.Errorf("cart item %d: %w", item.ID, err)
		}

		order.Items = append(order.Items, model.OrderItem{
			CarID:    item.Car.ID,
			CarTitle: item.Car.Brand + " " + item.Car.Model,
			Tuning:   item.Tuning,
			Price:    unit,
			Quantity: item.Quantity,
		})
		order.TotalPrice += unit * int64(item.Quantity)
	}

	return order, nil
}

// GetOrdersByUser возвращает список заказов пользователя.
func (s *Service) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, userID)
}

// GetOrder возвращает заказ пользователя с позициями.
func (s *Service) GetOrder(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	return s.repo.GetOrder(ctx, userID, orderID)
}
