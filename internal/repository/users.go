package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/tuning-shop/internal/model"
)

// CreateUser создаёт пользователя вместе с его профилем и начисляет приветственные бонусы.
func (r *PostgresRepository) CreateUser(ctx context.Context, login, email string, passwordHash []byte, welcomeBonusCents int64) (int64, error) {
	var id int64
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (login, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
			login, email, passwordHash,
		).Scan(&id)
		if err != nil {
			if hasCode(err, pgerrcode.UniqueViolation) {
				return fmt.Errorf("%w: %s", ErrUserExists, login)
			}
			return fmt.Errorf("create user: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO profiles (user_id, bonus_cents) VALUES ($1, $2)`,
			id, welcomeBonusCents,
		); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetUserByLogin возвращает пользователя по логину.
func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, login, email, password_hash, created_at FROM users WHERE login = $1`,
		login,
	)

	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

// GetProfile возвращает профиль пользователя.
func (r *PostgresRepository) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT u.id, u.login, u.email, p.phone, p.bonus_cents
		 FROM users u
		 JOIN profiles p ON p.user_id = u.id
		 WHERE u.id = $1`,
		userID,
	)

	var p model.Profile
	err := row.Scan(&p.UserID, &p.Login, &p.Email, &p.Phone, &p.BonusCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &p, nil
}

// UpdateProfilePhone обновляет телефон в профиле пользователя.
func (r *PostgresRepository) UpdateProfilePhone(ctx context.Context, userID int64, phone string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET phone = $2 WHERE user_id = $1`,
		userID, phone,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AdjustBonus изменяет бонусный счёт пользователя на deltaCents и возвращает новый баланс.
// Блокирует строку профиля, чтобы параллельные списания не увели баланс в минус.
func (r *PostgresRepository) AdjustBonus(ctx context.Context, userID int64, deltaCents int64) (int64, error) {
	var balance int64
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var current int64
		err := tx.QueryRow(ctx,
			`SELECT bonus_cents FROM profiles WHERE user_id = $1 FOR UPDATE`,
			userID,
		).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lock profile: %w", err)
		}

		balance = current + deltaCents
		if balance < 0 {
			return ErrInsufficientBonus
		}

		if _, err := tx.Exec(ctx,
			`UPDATE profiles SET bonus_cents = $2 WHERE user_id = $1`,
			userID, balance,
		); err != nil {
			return fmt.Errorf("update bonus: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}
