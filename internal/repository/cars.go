package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/tuning-shop/internal/catalog"
	"github.com/mmeshcher/tuning-shop/internal/model"
)

const carColumns = `c.id, c.category_id, c.brand, c.model, c.slug, c.year, c.color, c.body_type,
	c.mileage, c.engine_power, c.tuning_details, c.country, c.price, c.description,
	c.main_image, c.is_available, c.created_at`

func carDest(c *model.Car) []any {
	return []any{
		&c.ID, &c.CategoryID, &c.Brand, &c.Model, &c.Slug, &c.Year, &c.Color, &c.BodyType,
		&c.Mileage, &c.EnginePower, &c.TuningDetails, &c.Country, &c.Price, &c.Description,
		&c.MainImage, &c.IsAvailable, &c.CreatedAt,
	}
}

func collectCars(rows pgx.Rows) ([]model.Car, error) {
	defer rows.Close()

	var cars []model.Car
	for rows.Next() {
		var c model.Car
		if err := rows.Scan(carDest(&c)...); err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return cars, nil
}

// ListCategories возвращает все категории каталога.
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, image FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var res []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Image); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// CreateCategory сохраняет новую категорию и заполняет её идентификатор.
func (r *PostgresRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, slug, image) VALUES ($1, $2, $3) RETURNING id`,
		c.Name, c.Slug, c.Image,
	).Scan(&c.ID)
	if err != nil {
		if hasCode(err, pgerrcode.UniqueViolation) {
			return fmt.Errorf("%w: %s", ErrSlugExists, c.Slug)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// CreateCar сохраняет новый автомобиль и заполняет его идентификатор и дату создания.
func (r *PostgresRepository) CreateCar(ctx context.Context, c *model.Car) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cars (category_id, brand, model, slug, year, color, body_type, mileage,
		                   engine_power, tuning_details, country, price, description, main_image, is_available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, created_at`,
		c.CategoryID, c.Brand, c.Model, c.Slug, c.Year, c.Color, c.BodyType, c.Mileage,
		c.EnginePower, c.TuningDetails, c.Country, c.Price, c.Description, c.MainImage, c.IsAvailable,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		switch {
		case hasCode(err, pgerrcode.UniqueViolation):
			return fmt.Errorf("%w: %s", ErrSlugExists, c.Slug)
		case hasCode(err, pgerrcode.ForeignKeyViolation):
			return ErrCategoryNotFound
		}
		return fmt.Errorf("insert car: %w", err)
	}
	return nil
}

// ListCars возвращает автомобили в наличии, удовлетворяющие фильтру, начиная с новых.
func (r *PostgresRepository) ListCars(ctx context.Context, criteria catalog.Criteria) ([]model.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars c WHERE c.is_available = TRUE`

	where, args := criteria.Where(1)
	if where != "" {
		query += " AND " + where
	}
	query += " ORDER BY c.created_at DESC, c.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select cars: %w", err)
	}
	return collectCars(rows)
}

// LatestCars возвращает limit последних добавленных автомобилей в наличии.
func (r *PostgresRepository) LatestCars(ctx context.Context, limit int) ([]model.Car, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+carColumns+` FROM cars c
		 WHERE c.is_available = TRUE
		 ORDER BY c.created_at DESC, c.id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select latest cars: %w", err)
	}
	return collectCars(rows)
}

// GetCarBySlug возвращает автомобиль в наличии по его URL-идентификатору.
func (r *PostgresRepository) GetCarBySlug(ctx context.Context, slug string) (*model.Car, error) {
	var c model.Car
	err := r.pool.QueryRow(ctx,
		`SELECT `+carColumns+` FROM cars c WHERE c.slug = $1 AND c.is_available = TRUE`,
		slug,
	).Scan(carDest(&c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("get car: %w", err)
	}
	return &c, nil
}

// RelatedCars возвращает до limit автомобилей той же категории, исключая excludeID.
func (r *PostgresRepository) RelatedCars(ctx context.Context, categoryID, excludeID int64, limit int) ([]model.Car, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+carColumns+` FROM cars c
		 WHERE c.category_id = $1 AND c.id <> $2 AND c.is_available = TRUE
		 ORDER BY c.created_at DESC, c.id DESC
		 LIMIT $3`,
		categoryID, excludeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select related cars: %w", err)
	}
	return collectCars(rows)
}

// CatalogOptions возвращает значения для фильтров каталога: марки, страны и категории.
func (r *PostgresRepository) CatalogOptions(ctx context.Context) (catalog.Options, error) {
	brands, err := r.distinctCarValues(ctx, "brand")
	if err != nil {
		return catalog.Options{}, err
	}

	countries, err := r.distinctCarValues(ctx, "country")
	if err != nil {
		return catalog.Options{}, err
	}

	categories, err := r.ListCategories(ctx)
	if err != nil {
		return catalog.Options{}, err
	}

	return catalog.Options{
		Brands:     nonNil(brands),
		Countries:  nonNil(countries),
		Categories: nonNilCategories(categories),
	}, nil
}

// distinctCarValues принимает только имена колонок из кода, не из пользовательского ввода.
func (r *PostgresRepository) distinctCarValues(ctx context.Context, column string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT `+column+` FROM cars WHERE is_available = TRUE AND `+column+` <> '' ORDER BY `+column,
	)
	if err != nil {
		return nil, fmt.Errorf("select distinct %s: %w", column, err)
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		res = append(res, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// Пустые списки отдаются клиенту как [], а не null.
func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilCategories(v []model.Category) []model.Category {
	if v == nil {
		return []model.Category{}
	}
	return v
}

// UpdateCar меняет цену и/или наличие автомобиля. Nil-параметры оставляют значение без изменений.
func (r *PostgresRepository) UpdateCar(ctx context.Context, id int64, price *int64, available *bool) (*model.Car, error) {
	var c model.Car
	err := r.pool.QueryRow(ctx,
		`UPDATE cars c
		 SET price = COALESCE($2, c.price), is_available = COALESCE($3, c.is_available)
		 WHERE c.id = $1
		 RETURNING `+carColumns,
		id, price, available,
	).Scan(carDest(&c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("update car: %w", err)
	}
	return &c, nil
}
