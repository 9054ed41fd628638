package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	const query = `
		SELECT id, name, point_balance, created_at
		FROM users
		WHERE id = $1
	`

	var u models.User
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&u.ID, &u.Name, &u.PointBalance, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// DeductPoints performs the balance check and the subtraction as one
// conditional update, so concurrent deductions can never drive the balance
// negative.
func (r *UserRepo) DeductPoints(ctx context.Context, userID, amount int64) (int64, error) {
	const query = `
		UPDATE users
		SET point_balance = point_balance - $2
		WHERE id = $1 AND point_balance >= $2
		RETURNING point_balance
	`

	var balance int64
	err := r.db.QueryRowContext(ctx, query, userID, amount).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("deduct points: %w", err)
	}

	// Zero rows: either the user is missing or the balance is short.
	if _, err := r.FindUserByID(ctx, userID); err != nil {
		return 0, err
	}
	return 0, models.ErrInsufficientPoints
}

func (r *UserRepo) CreditPoints(ctx context.Context, userID, amount int64) (int64, error) {
	const query = `
		UPDATE users
		SET point_balance = point_balance + $2
		WHERE id = $1
		RETURNING point_balance
	`

	var balance int64
	err := r.db.QueryRowContext(ctx, query, userID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrUserNotFound
		}
		return 0, fmt.Errorf("credit points: %w", err)
	}
	return balance, nil
}
