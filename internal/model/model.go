// Package model содержит доменные сущности магазина тюнингованных автомобилей.
package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidStatusTransition возвращается при недопустимой смене статуса заказа.
var ErrInvalidStatusTransition = errors.New("invalid order status transition")

// User представляет зарегистрированного покупателя.
type User struct {
	ID           int64
	Login        string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Profile хранит контактные данные и бонусный счёт пользователя.
type Profile struct {
	UserID int64
	Login  string
	Email  string
	Phone  string
	// BonusCents хранит бонусный баланс в копейках.
	BonusCents int64
}

// Category описывает категорию каталога (марку или класс автомобиля).
type Category struct {
	ID    int64
	Name  string
	Slug  string
	Image string
}

// Car описывает автомобиль, выставленный на продажу.
type Car struct {
	ID            int64
	CategoryID    int64
	Brand         string
	Model         string
	Slug          string
	Year          int
	Color         string
	BodyType      string
	Mileage       int
	EnginePower   int
	TuningDetails string
	Country       string
	// Price указана в целых рублях.
	Price       int64
	Description string
	MainImage   string
	IsAvailable bool
	CreatedAt   time.Time
}

// TuningVariant задаёт пакет тюнинга, влияющий на цену автомобиля.
type TuningVariant string

const (
	TuningBase     TuningVariant = "base"
	TuningStandard TuningVariant = "standard"
	TuningPremium  TuningVariant = "premium"
)

// Cart представляет корзину пользователя. У каждого пользователя одна корзина.
type Cart struct {
	ID     int64
	UserID int64
	Items  []CartItem
}

// CartItem описывает позицию корзины: автомобиль, пакет тюнинга и количество.
type CartItem struct {
	ID       int64
	CartID   int64
	Car      Car
	Tuning   TuningVariant
	Quantity int
}

// OrderStatus описывает статус обработки заказа.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusNew:        {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
}

// Valid сообщает, входит ли статус в известный набор.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo сообщает, допустим ли переход заказа из статуса s в next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order описывает оформленный заказ. Сумма фиксируется при создании.
type Order struct {
	ID         int64
	Number     uuid.UUID
	UserID     int64
	Status     OrderStatus
	TotalPrice int64
	CreatedAt  time.Time
	Items      []OrderItem
}

// OrderItem хранит цену позиции на момент покупки и не меняется после создания заказа.
type OrderItem struct {
	ID       int64
	OrderID  int64
	CarID    int64
	CarTitle string
	Tuning   TuningVariant
	Price    int64
	Quantity int
}

// Total возвращает стоимость позиции с учётом количества.
func (i OrderItem) Total() int64 {
	return i.Price * int64(i.Quantity)
}
