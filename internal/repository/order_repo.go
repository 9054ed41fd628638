package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrder persists the header and all items in one transaction; the
// aggregate either fully exists or not at all.
func (r *OrderRepo) CreateOrder(ctx context.Context, draft models.OrderDraft) (*models.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create order: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertOrder = `
		INSERT INTO orders (user_id, user_coupon_id, total_products_price, discounted_price, ordered_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	order := models.Order{
		UserID:             draft.UserID,
		UserCouponID:       draft.UserCouponID,
		TotalProductsPrice: draft.TotalProductsPrice,
		DiscountedPrice:    draft.DiscountedPrice,
		OrderedAt:          draft.OrderedAt,
	}
	err = tx.QueryRowContext(ctx, insertOrder,
		draft.UserID, draft.UserCouponID, draft.TotalProductsPrice, draft.DiscountedPrice, draft.OrderedAt,
	).Scan(&order.ID)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	const insertItem = `
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for _, item := range draft.Items {
		persisted := item
		err := tx.QueryRowContext(ctx, insertItem,
			order.ID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity,
		).Scan(&persisted.ID)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
		order.Items = append(order.Items, persisted)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create order: commit: %w", err)
	}
	return &order, nil
}

// CancelOrder soft-cancels; cancelling twice is a no-op.
func (r *OrderRepo) CancelOrder(ctx context.Context, orderID int64, now time.Time) error {
	const query = `
		UPDATE orders
		SET cancelled_at = $2
		WHERE id = $1 AND cancelled_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query, orderID, now)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if affected > 0 {
		return nil
	}

	const exists = `SELECT 1 FROM orders WHERE id = $1`
	var one int
	if err := r.db.QueryRowContext(ctx, exists, orderID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrOrderNotFound
		}
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}
