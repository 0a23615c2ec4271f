// Package service реализует бизнес-логику магазина: корзину, оформление заказов, профили и каталог.
package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/tuning-shop/internal/catalog"
	"github.com/mmeshcher/tuning-shop/internal/model"
	"github.com/mmeshcher/tuning-shop/internal/repository"
)

var (
	// ErrEmptyCart возвращается при попытке оформить заказ по пустой корзине.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidQuantity возвращается для неположительного количества товара
	// и для позиции, превышающей MaxQuantity.
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 1000")
	// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidPrice возвращается при попытке установить отрицательную цену.
	ErrInvalidPrice = errors.New("price must not be negative")
	// ErrInvalidAmount возвращается для нулевой суммы корректировки бонусов.
	ErrInvalidAmount = errors.New("amount must not be zero")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, login, email string, passwordHash []byte, welcomeBonusCents int64) (int64, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
	UpdateProfilePhone(ctx context.Context, userID int64, phone string) error
	AdjustBonus(ctx context.Context, userID int64, deltaCents int64) (int64, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	CreateCar(ctx context.Context, c *model.Car) error
	ListCars(ctx context.Context, criteria catalog.Criteria) ([]model.Car, error)
	LatestCars(ctx context.Context, limit int) ([]model.Car, error)
	GetCarBySlug(ctx context.Context, slug string) (*model.Car, error)
	RelatedCars(ctx context.Context, categoryID, excludeID int64, limit int) ([]model.Car, error)
	CatalogOptions(ctx context.Context) (catalog.Options, error)
	UpdateCar(ctx context.Context, id int64, price *int64, available *bool) (*model.Car, error)

	GetOrCreateCart(ctx context.Context, userID int64) (*model.Cart, error)
	AddCartItem(ctx context.Context, cartID, carID int64, tuning model.TuningVariant, qty int) (*model.CartItem, error)
	DeleteCartItem(ctx context.Context, userID, itemID int64) error

	Checkout(ctx context.Context, userID int64, build repository.OrderBuilder) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*model.Order, error)
	TransitionOrder(ctx context.Context, orderID int64, next model.OrderStatus, accrue repository.BonusAccrual) (*model.Order, error)
}

// Options задаёт параметры бонусной программы и хеширования паролей.
type Options struct {
	// WelcomeBonusCents начисляется в профиль при регистрации.
	WelcomeBonusCents int64
	// BonusPercent задаёт долю суммы доставленного заказа, зачисляемую на бонусный счёт.
	BonusPercent int
	// BcryptCost по умолчанию равен bcrypt.DefaultCost.
	BcryptCost int
}

// Service содержит бизнес-логику магазина.
type Service struct {
	repo Repository
	opts Options
}

// NewService создаёт новый сервис с указанным репозиторием и параметрами.
func NewService(repo Repository, opts Options) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo: repo,
		opts: opts,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}
