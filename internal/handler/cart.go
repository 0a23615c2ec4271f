package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/tuning-shop/internal/service"
)

// GetCart возвращает корзину текущего пользователя с ценами по текущему прайсу.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		h.fail(w, err, "get cart error", zap.Int64("userID", userID))
		return
	}

	total, err := service.TotalPrice(cart)
	if err != nil {
		h.fail(w, err, "cart total error", zap.Int64("userID", userID))
		return
	}

	resp := cartResponse{
		Items:         make([]cartItemResponse, 0, len(cart.Items)),
		TotalPrice:    total,
		TotalQuantity: service.TotalQuantity(cart),
	}
	for _, item := range cart.Items {
		ir, err := newCartItemResponse(item)
		if err != nil {
			h.fail(w, err, "cart item price error", zap.Int64("itemID", item.ID))
			return
		}
		resp.Items = append(resp.Items, ir)
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type addItemRequest struct {
	CarID    int64  `json:"car_id" validate:"required,gt=0"`
	Tuning   string `json:"tuning"`
	Quantity *int   `json:"quantity"`
}

// AddCartItem кладёт автомобиль в корзину. Без quantity добавляется одна единица.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, err := h.service.AddItem(r.Context(), userID, req.CarID, req.Tuning, qty)
	if err != nil {
		h.fail(w, err, "add cart item error", zap.Int64("userID", userID), zap.Int64("carID", req.CarID))
		return
	}

	resp, err := newCartItemResponse(*item)
	if err != nil {
		h.fail(w, err, "cart item price error", zap.Int64("itemID", item.ID))
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

// RemoveCartItem удаляет позицию из корзины текущего пользователя.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	itemID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.RemoveItem(r.Context(), userID, itemID); err != nil {
		h.fail(w, err, "remove cart item error", zap.Int64("userID", userID), zap.Int64("itemID", itemID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
