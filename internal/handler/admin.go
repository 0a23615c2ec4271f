package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/tuning-shop/internal/metrics"
	"github.com/mmeshcher/tuning-shop/internal/model"
	"github.com/mmeshcher/tuning-shop/internal/pricing"
)

type createCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Image string `json:"image" validate:"max=255"`
}

// CreateCategory добавляет категорию каталога.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	c := &model.Category{Name: req.Name, Image: req.Image}
	if err := h.service.CreateCategory(r.Context(), c); err != nil {
		h.fail(w, err, "create category error", zap.String("name", req.Name))
		return
	}

	h.writeJSON(w, http.StatusCreated, newCategoryResponse(*c))
}

type createCarRequest struct {
	CategoryID    int64  `json:"category_id" validate:"required,gt=0"`
	Brand         string `json:"brand" validate:"required,max=100"`
	Model         string `json:"model" validate:"required,max=100"`
	Year          int    `json:"year" validate:"required,gte=1886,lte=2100"`
	Color         string `json:"color" validate:"max=50"`
	BodyType      string `json:"body_type" validate:"max=50"`
	Mileage       int    `json:"mileage" validate:"gte=0"`
	EnginePower   int    `json:"engine_power" validate:"gte=0"`
	TuningDetails string `json:"tuning_details"`
	Country       string `json:"country" validate:"max=100"`
	Price         int64  `json:"price" validate:"gte=0"`
	Description   string `json:"description"`
	MainImage     string `json:"main_image" validate:"max=255"`
	IsAvailable   *bool  `json:"is_available"`
}

// CreateCar добавляет автомобиль в каталог. По умолчанию автомобиль доступен к покупке.
func (h *Handler) CreateCar(w http.ResponseWriter, r *http.Request) {
	var req createCarRequest
	if !h.decode(w, r, &req) {
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	c := &model.Car{
		CategoryID:    req.CategoryID,
		Brand:         req.Brand,
		Model:         req.Model,
		Year:          req.Year,
		Color:         req.Color,
		BodyType:      req.BodyType,
		Mileage:       req.Mileage,
		EnginePower:   req.EnginePower,
		TuningDetails: req.TuningDetails,
		Country:       req.Country,
		Price:         req.Price,
		Description:   req.Description,
		MainImage:     req.MainImage,
		IsAvailable:   available,
	}
	if err := h.service.CreateCar(r.Context(), c); err != nil {
		h.fail(w, err, "create car error", zap.String("brand", req.Brand), zap.String("model", req.Model))
		return
	}

	h.writeJSON(w, http.StatusCreated, newCarResponse(*c))
}

type updateCarRequest struct {
	Price       *int64 `json:"price" validate:"omitempty,gte=0"`
	IsAvailable *bool  `json:"is_available"`
}

// UpdateCar меняет цену или наличие автомобиля.
func (h *Handler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	carID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req updateCarRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.Price == nil && req.IsAvailable == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	car, err := h.service.UpdateCar(r.Context(), carID, req.Price, req.IsAvailable)
	if err != nil {
		h.fail(w, err, "update car error", zap.Int64("carID", carID))
		return
	}

	h.writeJSON(w, http.StatusOK, newCarResponse(*car))
}

type updateOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateOrderStatus переводит заказ в новый статус.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req updateOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.fail(w, err, "update order status error", zap.Int64("orderID", orderID), zap.String("status", req.Status))
		return
	}

	metrics.ObserveStatusChange(order.Status)
	h.logger.Info("order status changed", zap.Int64("orderID", orderID), zap.String("status", string(order.Status)))

	h.writeJSON(w, http.StatusOK, newOrderResponse(*order))
}

type adjustBonusRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type bonusResponse struct {
	Bonus string `json:"bonus"`
}

// AdjustBonus начисляет или списывает бонусы пользователя. Сумма задаётся в рублях.
func (h *Handler) AdjustBonus(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req adjustBonusRequest
	if !h.decode(w, r, &req) {
		return
	}

	balance, err := h.service.AdjustBonus(r.Context(), userID, req.Amount)
	if err != nil {
		h.fail(w, err, "adjust bonus error", zap.Int64("userID", userID), zap.String("amount", req.Amount.String()))
		return
	}

	h.writeJSON(w, http.StatusOK, bonusResponse{Bonus: pricing.FormatCents(balance)})
}
