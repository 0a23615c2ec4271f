package service

import (
	"context"
	"net/url"

	"github.com/mmeshcher/tuning-shop/internal/catalog"
	"github.com/mmeshcher/tuning-shop/internal/model"
)

const (
	featuredLimit = 3
	relatedLimit  = 3
)

// ListCars возвращает автомобили каталога, отфильтрованные по параметрам запроса.
// Допустимые марки и страны запрашиваются из хранилища при каждом вызове.
func (s *Service) ListCars(ctx context.Context, query url.Values) ([]model.Car, catalog.Criteria, error) {
	opts, err := s.repo.CatalogOptions(ctx)
	if err != nil {
		return nil, catalog.Criteria{}, err
	}

	criteria := catalog.ParseCriteria(query, opts)

	cars, err := s.repo.ListCars(ctx, criteria)
	if err != nil {
		return nil, catalog.Criteria{}, err
	}
	return cars, criteria, nil
}

// CatalogOptions возвращает значения для фильтров каталога.
func (s *Service) CatalogOptions(ctx context.Context) (catalog.Options, error) {
	return s.repo.CatalogOptions(ctx)
}

// FeaturedCars возвращает последние поступления для главной страницы.
func (s *Service) FeaturedCars(ctx context.Context) ([]model.Car, error) {
	return s.repo.LatestCars(ctx, featuredLimit)
}

// CarDetail возвращает автомобиль по URL-идентификатору и похожие автомобили той же категории.
func (s *Service) CarDetail(ctx context.Context, slug string) (*model.Car, []model.Car, error) {
	car, err := s.repo.GetCarBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	related, err := s.repo.RelatedCars(ctx, car.CategoryID, car.ID, relatedLimit)
	if err != nil {
		return nil, nil, err
	}
	return car, related, nil
}

// ListCategories возвращает категории каталога.
func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}
