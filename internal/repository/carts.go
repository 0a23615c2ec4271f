package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/tuning-shop/internal/model"
)

// GetOrCreateCart возвращает корзину пользователя вместе с позициями, создавая пустую при первом обращении.
func (r *PostgresRepository) GetOrCreateCart(ctx context.Context, userID int64) (*model.Cart, error) {
	var cartID int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		cartID, err = r.createCart(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	items, err := loadCartItems(ctx, r.pool, cartID)
	if err != nil {
		return nil, err
	}

	return &model.Cart{
		ID:     cartID,
		UserID: userID,
		Items:  items,
	}, nil
}

// createCart вставляет корзину пользователя. Если её успела создать параллельная
// вставка, возвращает идентификатор существующей.
func (r *PostgresRepository) createCart(ctx context.Context, userID int64) (int64, error) {
	var cartID int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO carts (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING
		 RETURNING id`,
		userID,
	).Scan(&cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.pool.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&cartID)
	}
	return cartID, err
}

func loadCartItems(ctx context.Context, q querier, cartID int64) ([]model.CartItem, error) {
	rows, err := q.Query(ctx,
		`SELECT ci.id, ci.tuning, ci.quantity, `+carColumns+`
		 FROM cart_items ci
		 JOIN cars c ON c.id = ci.car_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.id`,
		cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var (
			item   model.CartItem
			tuning string
		)
		dest := append([]any{&item.ID, &tuning, &item.Quantity}, carDest(&item.Car)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.CartID = cartID
		item.Tuning = model.TuningVariant(tuning)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// AddCartItem добавляет qty единиц автомобиля с пакетом тюнинга в корзину.
// Если такая позиция уже есть, увеличивает её количество.
func (r *PostgresRepository) AddCartItem(ctx context.Context, cartID, carID int64, tuning model.TuningVariant, qty int) (*model.CartItem, error) {
	item := &model.CartItem{CartID: cartID, Tuning: tuning}

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		// Блокируем корзину, чтобы добавление не пересеклось с оформлением заказа.
		var dummy int
		if err := tx.QueryRow(ctx, `SELECT 1 FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&dummy); err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}

		err := tx.QueryRow(ctx,
			`SELECT `+carColumns+` FROM cars c WHERE c.id = $1 AND c.is_available = TRUE FOR SHARE`,
			carID,
		).Scan(carDest(&item.Car)...)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: id %d", ErrCarNotFound, carID)
			}
			return fmt.Errorf("get car: %w", err)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO cart_items (cart_id, car_id, tuning, quantity) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (cart_id, car_id, tuning) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			 RETURNING id, quantity`,
			cartID, carID, string(tuning), qty,
		).Scan(&item.ID, &item.Quantity)
		if err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// DeleteCartItem удаляет позицию, только если она лежит в корзине указанного пользователя.
func (r *PostgresRepository) DeleteCartItem(ctx context.Context, userID, itemID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items ci
		 USING carts c
		 WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2`,
		itemID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotOwned
	}
	return nil
}
