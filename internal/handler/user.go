package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/tuning-shop/internal/pricing"
	"github.com/mmeshcher/tuning-shop/internal/validation"
)

type registerRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register обрабатывает регистрацию нового пользователя и сразу открывает сессию.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req.Login, req.Email, req.Password)
	if err != nil {
		h.fail(w, err, "register user error", zap.String("login", req.Login))
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Login выполняет аутентификацию пользователя и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID, err := h.service.AuthenticateUser(r.Context(), req.Login, req.Password)
	if err != nil {
		h.fail(w, err, "login user error")
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Logout завершает сессию пользователя.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusOK)
}

// GetProfile возвращает профиль, бонусный баланс и историю заказов текущего пользователя.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.fail(w, err, "get profile error", zap.Int64("userID", userID))
		return
	}

	orders, err := h.service.GetOrdersByUser(r.Context(), userID)
	if err != nil {
		h.fail(w, err, "get orders error", zap.Int64("userID", userID))
		return
	}

	h.writeJSON(w, http.StatusOK, profileResponse{
		Login:  profile.Login,
		Email:  profile.Email,
		Phone:  profile.Phone,
		Bonus:  pricing.FormatCents(profile.BonusCents),
		Orders: newOrdersResponse(orders),
	})
}

type updateProfileRequest struct {
	Phone string `json:"phone" validate:"phone"`
}

// UpdateProfile сохраняет телефон текущего пользователя.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.UpdatePhone(r.Context(), userID, validation.NormalizePhone(req.Phone)); err != nil {
		h.fail(w, err, "update profile error", zap.Int64("userID", userID))
		return
	}

	w.WriteHeader(http.StatusOK)
}
