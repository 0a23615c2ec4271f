// Package handler содержит HTTP-обработчики API магазина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/tuning-shop/internal/catalog"
	"github.com/mmeshcher/tuning-shop/internal/middleware"
	"github.com/mmeshcher/tuning-shop/internal/model"
	"github.com/mmeshcher/tuning-shop/internal/pricing"
	"github.com/mmeshcher/tuning-shop/internal/repository"
	"github.com/mmeshcher/tuning-shop/internal/service"
	"github.com/mmeshcher/tuning-shop/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, login, email, password string) (int64, error)
	AuthenticateUser(ctx context.Context, login, password string) (int64, error)
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
	UpdatePhone(ctx context.Context, userID int64, phone string) error

	GetCart(ctx context.Context, userID int64) (*model.Cart, error)
	AddItem(ctx context.Context, userID, carID int64, tuning string, qty int) (*model.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID int64) error
	Checkout(ctx context.Context, userID int64) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*model.Order, error)

	ListCars(ctx context.Context, query url.Values) ([]model.Car, catalog.Criteria, error)
	FeaturedCars(ctx context.Context) ([]model.Car, error)
	CarDetail(ctx context.Context, slug string) (*model.Car, []model.Car, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CatalogOptions(ctx context.Context) (catalog.Options, error)

	CreateCategory(ctx context.Context, c *model.Category) error
	CreateCar(ctx context.Context, c *model.Car) error
	UpdateCar(ctx context.Context, id int64, price *int64, available *bool) (*model.Car, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*model.Order, error)
	AdjustBonus(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error)
}

// Handler реализует HTTP-обработчики API магазина.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	adminAPIKey    string
	validate       *validator.Validate
	health         http.Handler
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, adminAPIKey string) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		adminAPIKey:    adminAPIKey,
		validate:       validation.MustNew(),
	}
}

// WithHealth подключает обработчик /health.
func (h *Handler) WithHealth(health http.Handler) *Handler {
	h.health = health
	return h
}

// statusFor сопоставляет доменные ошибки HTTP-статусам. Неизвестные ошибки дают 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrCarNotFound),
		errors.Is(err, repository.ErrNotOwned),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrUserExists),
		errors.Is(err, repository.ErrSlugExists),
		errors.Is(err, repository.ErrInsufficientBonus),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, model.ErrInvalidStatusTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, pricing.ErrInvalidVariant),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrCategoryNotFound):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// fail отвечает статусом, соответствующим ошибке. Логируются только непредвиденные ошибки.
func (h *Handler) fail(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logger.Error(msg, append(fields, zap.Error(err))...)
	}
	http.Error(w, http.StatusText(code), code)
}

// decode читает JSON-тело запроса и проверяет его теги validate.
// Неразборчивое тело даёт 400, нарушение правил валидации даёт 422.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return false
	}

	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
	return userID, ok
}
