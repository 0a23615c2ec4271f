package service

import (
	"context"

	"github.com/mmeshcher/tuning-shop/internal/model"
	"github.com/mmeshcher/tuning-shop/internal/pricing"
)

// GetCart возвращает корзину пользователя, создавая её при первом обращении.
func (s *Service) GetCart(ctx context.Context, userID int64) (*model.Cart, error) {
	return s.repo.GetOrCreateCart(ctx, userID)
}

// MaxQuantity ограничивает количество единиц в одной позиции корзины.
const MaxQuantity = 1000

// AddItem добавляет в корзину qty единиц автомобиля с пакетом тюнинга tuning.
// Повторное добавление той же пары автомобиль/пакет увеличивает количество существующей позиции.
func (s *Service) AddItem(ctx context.Context, userID, carID int64, tuning string, qty int) (*model.CartItem, error) {
	if qty <= 0 || qty > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	variant, err := pricing.ParseVariant(tuning)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, item := range cart.Items {
		if item.Car.ID == carID && item.Tuning == variant && item.Quantity+qty > MaxQuantity {
			return nil, ErrInvalidQuantity
		}
	}

	return s.repo.AddCartItem(ctx, cart.ID, carID, variant, qty)
}

// RemoveItem удаляет позицию из корзины пользователя. Чужие позиции не удаляются.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	return s.repo.DeleteCartItem(ctx, userID, itemID)
}

// TotalPrice возвращает стоимость корзины по текущим ценам с учётом пакетов тюнинга.
func TotalPrice(cart *model.Cart) (int64, error) {
	var total int64
	for _, item := range cart.Items {
		line, err := pricing.LineTotal(item.Car.Price, item.Tuning, item.Quantity)
		if err != nil {
			return 0, err
		}
		total += line
	}
	return total, nil
}

// TotalQuantity возвращает общее количество единиц товара в корзине.
func TotalQuantity(cart *model.Cart) int {
	total := 0
	for _, item := range cart.Items {
		total += item.Quantity
	}
	return total
}
