package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/tuning-shop/internal/metrics"
)

// Checkout оформляет заказ по содержимому корзины текущего пользователя.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	order, err := h.service.Checkout(r.Context(), userID)
	if err != nil {
		h.fail(w, err, "checkout error", zap.Int64("userID", userID))
		return
	}

	metrics.ObserveOrderCreated(*order)
	h.logger.Info("order created",
		zap.Int64("userID", userID),
		zap.String("number", order.Number.String()),
		zap.Int64("total", order.TotalPrice),
	)

	h.writeJSON(w, http.StatusCreated, newOrderResponse(*order))
}

// GetOrders возвращает список заказов текущего пользователя.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.service.GetOrdersByUser(r.Context(), userID)
	if err != nil {
		h.fail(w, err, "get orders error", zap.Int64("userID", userID))
		return
	}

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, newOrdersResponse(orders))
}

// GetOrder возвращает заказ текущего пользователя вместе с позициями.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	orderID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.service.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		h.fail(w, err, "get order error", zap.Int64("userID", userID), zap.Int64("orderID", orderID))
		return
	}

	h.writeJSON(w, http.StatusOK, newOrderResponse(*order))
}
