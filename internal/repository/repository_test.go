package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/tuning-shop/internal/catalog"
	"github.com/mmeshcher/tuning-shop/internal/model"
)

var carColumnNames = []string{
	"id", "category_id", "brand", "model", "slug", "year", "color", "body_type",
	"mileage", "engine_power", "tuning_details", "country", "price", "description",
	"main_image", "is_available", "created_at",
}

func carValues(id int64, brand string, price int64) []any {
	return []any{
		id, int64(1), brand, "RS6", "car-" + brand, 2021, "black", "wagon",
		1000, 600, "stage 2", "Germany", price, "", "", true, time.Now(),
	}
}

func setupRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo := newRepository(mock)
	repo.retryDelays = []time.Duration{time.Millisecond}
	return repo, mock
}

func cartItemRows(items ...[]any) *pgxmock.Rows {
	cols := append([]string{"ci_id", "tuning", "quantity"}, carColumnNames...)
	rows := pgxmock.NewRows(cols)
	for _, it := range items {
		rows.AddRow(it...)
	}
	return rows
}

func cartItemValues(itemID int64, tuning string, qty int, car []any) []any {
	return append([]any{itemID, tuning, qty}, car...)
}

func priceBuilder(userID int64) OrderBuilder {
	return func(items []model.CartItem) (*model.Order, error) {
		if len(items) == 0 {
			return nil, errors.New("empty")
		}
		o := &model.Order{Number: uuid.New(), UserID: userID, Status: model.OrderStatusNew}
		for _, it := range items {
			o.Items = append(o.Items, model.OrderItem{
				CarID:    it.Car.ID,
				Tuning:   it.Tuning,
				Price:    it.Car.Price,
				Quantity: it.Quantity,
			})
			o.TotalPrice += it.Car.Price * int64(it.Quantity)
		}
		return o, nil
	}
}

func TestCheckout_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM carts WHERE user_id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(`FROM cart_items ci`).
		WithArgs(int64(3)).
		WillReturnRows(cartItemRows(
			cartItemValues(10, "base", 2, carValues(1, "Audi", 1000)),
			cartItemValues(11, "premium", 1, carValues(2, "BMW", 2000)),
		))
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(pgxmock.AnyArg(), int64(7), "new", int64(4000)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(100), now))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(int64(100), int64(1), "base", int64(1000), 2).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1000)))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(int64(100), int64(2), "premium", int64(2000), 1).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1001)))
	mock.ExpectExec(`DELETE FROM cart_items WHERE cart_id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	order, err := repo.Checkout(ctx, 7, priceBuilder(7))
	require.NoError(t, err)
	assert.Equal(t, int64(100), order.ID)
	assert.Equal(t, now, order.CreatedAt)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(1000), order.Items[0].ID)
	assert.Equal(t, int64(100), order.Items[1].OrderID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckout_BuilderErrorRollsBack(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM carts`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(`FROM cart_items ci`).
		WithArgs(int64(3)).
		WillReturnRows(cartItemRows())
	mock.ExpectRollback()

	_, err := repo.Checkout(context.Background(), 7, priceBuilder(7))
	require.EqualError(t, err, "empty")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckout_NoCartPassesNoItems(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM carts`).
		WithArgs(int64(7)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	var got []model.CartItem
	called := false
	_, err := repo.Checkout(context.Background(), 7, func(items []model.CartItem) (*model.Order, error) {
		called = true
		got = items
		return nil, errors.New("empty")
	})
	require.Error(t, err)
	assert.True(t, called)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckout_OrderItemFailureRollsBack(t *testing.T) {
	repo, mock := setupRepo(t)
	dbErr := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM carts`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(`FROM cart_items ci`).
		WithArgs(int64(3)).
		WillReturnRows(cartItemRows(cartItemValues(10, "base", 1, carValues(1, "Audi", 1000))))
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(100), time.Now()))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WillReturnError(dbErr)
	mock.ExpectRollback()

	order, err := repo.Checkout(context.Background(), 7, priceBuilder(7))
	require.ErrorIs(t, err, dbErr)
	assert.Nil(t, order)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckout_RetriesSerializationFailure(t *testing.T) {
	repo, mock := setupRepo(t)
	serialization := &pgconn.PgError{Code: pgerrcode.SerializationFailure}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM carts`).
		WithArgs(int64(7)).
		WillReturnError(serialization)
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM carts`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery(`FROM cart_items ci`).
		WithArgs(int64(3)).
		WillReturnRows(cartItemRows(cartItemValues(10, "standard", 1, carValues(1, "Audi", 1000))))
	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(100), time.Now()))
	mock.ExpectQuery(`INSERT INTO order_items`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec(`DELETE FROM cart_items`).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	order, err := repo.Checkout(context.Background(), 7, priceBuilder(7))
	require.NoError(t, err)
	assert.Equal(t, int64(100), order.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateCart(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT id FROM carts WHERE user_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectQuery(`FROM cart_items ci`).
		WithArgs(int64(9)).
		WillReturnRows(cartItemRows(cartItemValues(1, "premium", 3, carValues(4, "Audi", 500))))

	cart, err := repo.GetOrCreateCart(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(9), cart.ID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, model.TuningPremium, cart.Items[0].Tuning)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, int64(500), cart.Items[0].Car.Price)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateCart_CreatesMissing(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT id FROM carts WHERE user_id = \$1`).
		WithArgs(int64(5)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO carts \(user_id\) VALUES \(\$1\)\s+ON CONFLICT \(user_id\) DO NOTHING`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectQuery(`FROM cart_items ci`).
		WithArgs(int64(11)).
		WillReturnRows(cartItemRows())

	cart, err := repo.GetOrCreateCart(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(11), cart.ID)
	assert.Empty(t, cart.Items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateCart_ConcurrentCreate(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT id FROM carts WHERE user_id = \$1`).
		WithArgs(int64(5)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`ON CONFLICT \(user_id\) DO NOTHING`).
		WithArgs(int64(5)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT id FROM carts WHERE user_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(12)))
	mock.ExpectQuery(`FROM cart_items ci`).
		WithArgs(int64(12)).
		WillReturnRows(cartItemRows())

	cart, err := repo.GetOrCreateCart(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(12), cart.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCartItem_Upserts(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM carts WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`FROM cars c WHERE c.id = \$1 AND c.is_available = TRUE FOR SHARE`).
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows(carColumnNames).AddRow(carValues(4, "Audi", 500)...))
	mock.ExpectQuery(`ON CONFLICT \(cart_id, car_id, tuning\) DO UPDATE`).
		WithArgs(int64(9), int64(4), "standard", 1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "quantity"}).AddRow(int64(12), 2))
	mock.ExpectCommit()

	item, err := repo.AddCartItem(context.Background(), 9, 4, model.TuningStandard, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(12), item.ID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "Audi", item.Car.Brand)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCartItem_CarNotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM carts`).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`FROM cars c WHERE c.id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.AddCartItem(context.Background(), 9, 404, model.TuningBase, 1)
	require.ErrorIs(t, err, ErrCarNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCartItem(t *testing.T) {
	t.Run("owned", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec(`DELETE FROM cart_items ci`).
			WithArgs(int64(12), int64(5)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.DeleteCartItem(context.Background(), 5, 12))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("belongs to another user", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectExec(`DELETE FROM cart_items ci`).
			WithArgs(int64(12), int64(6)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.DeleteCartItem(context.Background(), 6, 12)
		require.ErrorIs(t, err, ErrNotOwned)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateUser_CreatesProfile(t *testing.T) {
	repo, mock := setupRepo(t)
	hash := []byte("hash")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ivan", "ivan@example.com", hash).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectExec(`INSERT INTO profiles \(user_id, bonus_cents\)`).
		WithArgs(int64(5), int64(50000)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	id, err := repo.CreateUser(context.Background(), "ivan", "ivan@example.com", hash, 50000)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Duplicate(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
	mock.ExpectRollback()

	_, err := repo.CreateUser(context.Background(), "ivan", "ivan@example.com", []byte("x"), 0)
	require.ErrorIs(t, err, ErrUserExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustBonus_Insufficient(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bonus_cents FROM profiles WHERE user_id = \$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"bonus_cents"}).AddRow(int64(100)))
	mock.ExpectRollback()

	_, err := repo.AdjustBonus(context.Background(), 5, -101)
	require.ErrorIs(t, err, ErrInsufficientBonus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func orderRow(id, userID int64, status string, total int64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "number", "user_id", "status", "total_price", "created_at"}).
		AddRow(id, uuid.New().String(), userID, status, total, time.Now())
}

func TestTransitionOrder_ShippedAccruesBonus(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(100)).
		WillReturnRows(orderRow(100, 5, "processing", 200000))
	mock.ExpectExec(`UPDATE orders SET status = \$2 WHERE id = \$1`).
		WithArgs(int64(100), "shipped").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE profiles SET bonus_cents = bonus_cents \+ \$2`).
		WithArgs(int64(5), int64(2000)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	order, err := repo.TransitionOrder(context.Background(), 100, model.OrderStatusShipped, func(o model.Order) int64 {
		return o.TotalPrice / 100
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, order.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionOrder_InvalidTransition(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(100)).
		WillReturnRows(orderRow(100, 5, "shipped", 1000))
	mock.ExpectRollback()

	_, err := repo.TransitionOrder(context.Background(), 100, model.OrderStatusCancelled, nil)
	require.ErrorIs(t, err, model.ErrInvalidStatusTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder_NotOwned(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`WHERE o.id = \$1 AND o.user_id = \$2`).
		WithArgs(int64(100), int64(6)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetOrder(context.Background(), 6, 100)
	require.ErrorIs(t, err, ErrOrderNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListCars_AppliesCriteria(t *testing.T) {
	repo, mock := setupRepo(t)
	minPrice := int64(800)

	mock.ExpectQuery(`WHERE c.is_available = TRUE AND LOWER\(brand\) = LOWER\(\$1\) AND price >= \$2 ORDER BY`).
		WithArgs("Audi", int64(800)).
		WillReturnRows(pgxmock.NewRows(carColumnNames).AddRow(carValues(1, "Audi", 1000)...))

	cars, err := repo.ListCars(context.Background(), catalog.Criteria{Brand: "Audi", PriceMin: &minPrice})
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Audi", cars[0].Brand)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCar_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	price := int64(10)

	mock.ExpectQuery(`UPDATE cars c`).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateCar(context.Background(), 1, &price, nil)
	require.ErrorIs(t, err, ErrCarNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo := newRepository(mock)

	mock.ExpectPing()
	require.NoError(t, repo.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	require.Error(t, repo.Ping(context.Background()))

	require.NoError(t, mock.ExpectationsWereMet())
}
