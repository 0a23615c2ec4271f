package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mmeshcher/tuning-shop/internal/metrics"
	custommiddleware "github.com/mmeshcher/tuning-shop/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware магазина.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(custommiddleware.Logger(h.logger))

	// promhttp сжимает ответ сам, поэтому служебные эндпоинты подключены вне GzipMiddleware.
	r.Handle("/metrics", metrics.Handler())
	if h.health != nil {
		r.Handle("/health", h.health)
	}

	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.GzipMiddleware)

		r.Route("/api", func(r chi.Router) {
			r.Route("/user", func(r chi.Router) {
				r.Post("/register", h.Register)
				r.Post("/login", h.Login)
				r.Post("/logout", h.Logout)

				r.Group(func(r chi.Router) {
					r.Use(h.authMiddleware.Middleware)

					r.Get("/profile", h.GetProfile)
					r.Put("/profile", h.UpdateProfile)

					r.Get("/cart", h.GetCart)
					r.Post("/cart/items", h.AddCartItem)
					r.Delete("/cart/items/{id}", h.RemoveCartItem)

					r.Post("/checkout", h.Checkout)
					r.Get("/orders", h.GetOrders)
					r.Get("/orders/{id}", h.GetOrder)
				})
			})

			r.Get("/cars", h.ListCars)
			r.Get("/cars/featured", h.FeaturedCars)
			r.Get("/cars/{slug}", h.CarDetail)
			r.Get("/categories", h.ListCategories)
			r.Get("/catalog/options", h.CatalogOptions)

			r.Route("/admin", func(r chi.Router) {
				r.Use(custommiddleware.AdminAPIKey(h.adminAPIKey))

				r.Post("/categories", h.CreateCategory)
				r.Post("/cars", h.CreateCar)
				r.Patch("/cars/{id}", h.UpdateCar)
				r.Patch("/orders/{id}", h.UpdateOrderStatus)
				r.Post("/users/{id}/bonus", h.AdjustBonus)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
