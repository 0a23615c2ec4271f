package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/tuning-shop/internal/model"
)

// OrderBuilder строит заказ по позициям корзины. Вызывается внутри транзакции оформления
// и может быть вызван повторно, если транзакция перезапускается.
type OrderBuilder func(items []model.CartItem) (*model.Order, error)

// Checkout переносит содержимое корзины пользователя в новый заказ и очищает корзину.
// Все шаги выполняются в одной транзакции: при любой ошибке не остаётся ни заказа, ни частично очищенной корзины.
func (r *PostgresRepository) Checkout(ctx context.Context, userID int64, build OrderBuilder) (*model.Order, error) {
	var order *model.Order

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var cartID int64
		err := tx.QueryRow(ctx,
			`SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`,
			userID,
		).Scan(&cartID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lock cart: %w", err)
		}

		var items []model.CartItem
		if cartID != 0 {
			items, err = loadCartItems(ctx, tx, cartID)
			if err != nil {
				return err
			}
		}

		built, err := build(items)
		if err != nil {
			return err
		}

		if err := insertOrder(ctx, tx, built); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		order = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO orders (number, user_id, status, total_price) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		o.Number, o.UserID, string(o.Status), o.TotalPrice,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, car_id, tuning, price, quantity) VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			o.ID, item.CarID, string(item.Tuning), item.Price, item.Quantity,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

const orderColumns = `o.id, o.number::text, o.user_id, o.status, o.total_price, o.created_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o      model.Order
		number string
		status string
	)
	if err := row.Scan(&o.ID, &number, &o.UserID, &status, &o.TotalPrice, &o.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(number)
	if err != nil {
		return nil, fmt.Errorf("parse order number: %w", err)
	}
	o.Number = parsed
	o.Status = model.OrderStatus(status)

	return &o, nil
}

// GetOrdersByUser возвращает заказы пользователя без позиций, начиная с новых.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o
		 WHERE o.user_id = $1
		 ORDER BY o.created_at DESC, o.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// GetOrder возвращает заказ пользователя вместе с позициями.
func (r *PostgresRepository) GetOrder(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o
		 WHERE o.id = $1 AND o.user_id = $2`,
		orderID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT oi.id, oi.car_id, c.brand || ' ' || c.model, oi.tuning, oi.price, oi.quantity
		 FROM order_items oi
		 JOIN cars c ON c.id = oi.car_id
		 WHERE oi.order_id = $1
		 ORDER BY oi.id`,
		o.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item   model.OrderItem
			tuning string
		)
		if err := rows.Scan(&item.ID, &item.CarID, &item.CarTitle, &tuning, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.OrderID = o.ID
		item.Tuning = model.TuningVariant(tuning)
		o.Items = append(o.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return o, nil
}

// BonusAccrual возвращает сумму бонусов в копейках, начисляемую за доставленный заказ.
type BonusAccrual func(o model.Order) int64

// TransitionOrder меняет статус заказа. При переходе в shipped начисляет бонусы владельцу заказа
// в той же транзакции.
func (r *PostgresRepository) TransitionOrder(ctx context.Context, orderID int64, next model.OrderStatus, accrue BonusAccrual) (*model.Order, error) {
	var order *model.Order

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx,
			`SELECT `+orderColumns+`
			 FROM orders o
			 WHERE o.id = $1
			 FOR UPDATE`,
			orderID,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		if !o.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", model.ErrInvalidStatusTransition, o.Status, next)
		}

		if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, o.ID, string(next)); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		o.Status = next

		if next == model.OrderStatusShipped && accrue != nil {
			if bonus := accrue(*o); bonus > 0 {
				if _, err := tx.Exec(ctx,
					`UPDATE profiles SET bonus_cents = bonus_cents + $2 WHERE user_id = $1`,
					o.UserID, bonus,
				); err != nil {
					return fmt.Errorf("accrue bonus: %w", err)
				}
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}
