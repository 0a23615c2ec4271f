package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type catalogResponse struct {
	Cars    []carResponse   `json:"cars"`
	Filters filtersResponse `json:"filters"`
}

// ListCars возвращает каталог с учётом фильтров из строки запроса.
func (h *Handler) ListCars(w http.ResponseWriter, r *http.Request) {
	cars, criteria, err := h.service.ListCars(r.Context(), r.URL.Query())
	if err != nil {
		h.fail(w, err, "list cars error")
		return
	}

	h.writeJSON(w, http.StatusOK, catalogResponse{
		Cars:    newCarsResponse(cars),
		Filters: newFiltersResponse(criteria),
	})
}

// FeaturedCars возвращает последние поступления для главной страницы.
func (h *Handler) FeaturedCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.service.FeaturedCars(r.Context())
	if err != nil {
		h.fail(w, err, "featured cars error")
		return
	}

	h.writeJSON(w, http.StatusOK, newCarsResponse(cars))
}

type carDetailResponse struct {
	Car     carResponse   `json:"car"`
	Related []carResponse `json:"related"`
}

// CarDetail возвращает карточку автомобиля и похожие предложения.
func (h *Handler) CarDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	car, related, err := h.service.CarDetail(r.Context(), slug)
	if err != nil {
		h.fail(w, err, "car detail error", zap.String("slug", slug))
		return
	}

	h.writeJSON(w, http.StatusOK, carDetailResponse{
		Car:     newCarResponse(*car),
		Related: newCarsResponse(related),
	})
}

// ListCategories возвращает категории каталога.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.fail(w, err, "list categories error")
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, newCategoryResponse(c))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type optionsResponse struct {
	Brands     []string           `json:"brands"`
	Countries  []string           `json:"countries"`
	Categories []categoryResponse `json:"categories"`
}

// CatalogOptions возвращает допустимые значения фильтров каталога.
func (h *Handler) CatalogOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.CatalogOptions(r.Context())
	if err != nil {
		h.fail(w, err, "catalog options error")
		return
	}

	resp := optionsResponse{
		Brands:     append([]string{}, opts.Brands...),
		Countries:  append([]string{}, opts.Countries...),
		Categories: make([]categoryResponse, 0, len(opts.Categories)),
	}
	for _, c := range opts.Categories {
		resp.Categories = append(resp.Categories, newCategoryResponse(c))
	}

	h.writeJSON(w, http.StatusOK, resp)
}
