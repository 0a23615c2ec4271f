package handler

import (
	"time"

	"github.com/mmeshcher/tuning-shop/internal/catalog"
	"github.com/mmeshcher/tuning-shop/internal/model"
	"github.com/mmeshcher/tuning-shop/internal/pricing"
)

type categoryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

func newCategoryResponse(c model.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, Image: c.Image}
}

type carResponse struct {
	ID            int64  `json:"id"`
	CategoryID    int64  `json:"category_id"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	Slug          string `json:"slug"`
	Year          int    `json:"year"`
	Color         string `json:"color,omitempty"`
	BodyType      string `json:"body_type,omitempty"`
	Mileage       int    `json:"mileage"`
	EnginePower   int    `json:"engine_power"`
	TuningDetails string `json:"tuning_details,omitempty"`
	Country       string `json:"country,omitempty"`
	Price         int64  `json:"price"`
	Description   string `json:"description,omitempty"`
	MainImage     string `json:"main_image,omitempty"`
	IsAvailable   bool   `json:"is_available"`
	CreatedAt     string `json:"created_at"`
}

func newCarResponse(c model.Car) carResponse {
	return carResponse{
		ID:            c.ID,
		CategoryID:    c.CategoryID,
		Brand:         c.Brand,
		Model:         c.Model,
		Slug:          c.Slug,
		Year:          c.Year,
		Color:         c.Color,
		BodyType:      c.BodyType,
		Mileage:       c.Mileage,
		EnginePower:   c.EnginePower,
		TuningDetails: c.TuningDetails,
		Country:       c.Country,
		Price:         c.Price,
		Description:   c.Description,
		MainImage:     c.MainImage,
		IsAvailable:   c.IsAvailable,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
}

func newCarsResponse(cars []model.Car) []carResponse {
	resp := make([]carResponse, 0, len(cars))
	for _, c := range cars {
		resp = append(resp, newCarResponse(c))
	}
	return resp
}

type filtersResponse struct {
	CategoryID *int64 `json:"category,omitempty"`
	Brand      string `json:"brand,omitempty"`
	Country    string `json:"country,omitempty"`
	PriceMin   *int64 `json:"price_min,omitempty"`
	PriceMax   *int64 `json:"price_max,omitempty"`
}

func newFiltersResponse(c catalog.Criteria) filtersResponse {
	return filtersResponse{
		CategoryID: c.CategoryID,
		Brand:      c.Brand,
		Country:    c.Country,
		PriceMin:   c.PriceMin,
		PriceMax:   c.PriceMax,
	}
}

type cartItemResponse struct {
	ID        int64       `json:"id"`
	Car       carResponse `json:"car"`
	Tuning    string      `json:"tuning"`
	Quantity  int         `json:"quantity"`
	UnitPrice int64       `json:"unit_price"`
	LineTotal int64       `json:"line_total"`
}

func newCartItemResponse(item model.CartItem) (cartItemResponse, error) {
	unit, err := pricing.UnitPrice(item.Car.Price, item.Tuning)
	if err != nil {
		return cartItemResponse{}, err
	}
	return cartItemResponse{
		ID:        item.ID,
		Car:       newCarResponse(item.Car),
		Tuning:    string(item.Tuning),
		Quantity:  item.Quantity,
		UnitPrice: unit,
		LineTotal: unit * int64(item.Quantity),
	}, nil
}

type cartResponse struct {
	Items         []cartItemResponse `json:"items"`
	TotalPrice    int64              `json:"total_price"`
	TotalQuantity int                `json:"total_quantity"`
}

type orderItemResponse struct {
	CarID     int64  `json:"car_id"`
	CarTitle  string `json:"car_title,omitempty"`
	Tuning    string `json:"tuning"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

type orderResponse struct {
	ID         int64               `json:"id"`
	Number     string              `json:"number"`
	Status     string              `json:"status"`
	TotalPrice int64               `json:"total_price"`
	CreatedAt  string              `json:"created_at"`
	Items      []orderItemResponse `json:"items,omitempty"`
}

func newOrderResponse(o model.Order) orderResponse {
	resp := orderResponse{
		ID:         o.ID,
		Number:     o.Number.String(),
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			CarID:     item.CarID,
			CarTitle:  item.CarTitle,
			Tuning:    string(item.Tuning),
			Price:     item.Price,
			Quantity:  item.Quantity,
			LineTotal: item.Total(),
		})
	}
	return resp
}

func newOrdersResponse(orders []model.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, newOrderResponse(o))
	}
	return resp
}

type profileResponse struct {
	Login  string          `json:"login"`
	Email  string          `json:"email"`
	Phone  string          `json:"phone"`
	Bonus  string          `json:"bonus"`
	Orders []orderResponse `json:"orders"`
}
