package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) FindProductByID(ctx context.Context, productID int64) (*models.Product, error) {
	const query = `
		SELECT id, name, unit_price, stock, created_at
		FROM products
		WHERE id = $1
	`

	var p models.Product
	err := r.db.QueryRowContext(ctx, query, productID).Scan(&p.ID, &p.Name, &p.UnitPrice, &p.Stock, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepo) FindPagedProducts(ctx context.Context, opts models.PagingOptions) (models.PagedList[models.Product], error) {
	var page models.PagedList[models.Product]

	const countQuery = `SELECT COUNT(*) FROM products`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&page.TotalCount); err != nil {
		return page, fmt.Errorf("count products: %w", err)
	}

	const query = `
		SELECT id, name, unit_price, stock, created_at
		FROM products
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, opts.Limit(), opts.Offset())
	if err != nil {
		return page, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.Stock, &p.CreatedAt); err != nil {
			return page, fmt.Errorf("scan product: %w", err)
		}
		page.Items = append(page.Items, p)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("list products: %w", err)
	}

	page.Page = opts.Page
	page.Size = opts.Size
	return page, nil
}

// FindPopularProducts ranks products by units sold over [from, until),
// ignoring cancelled orders.
func (r *ProductRepo) FindPopularProducts(ctx context.Context, from, until time.Time, opts models.PagingOptions) (models.PagedList[models.ProductSaleSummary], error) {
	var page models.PagedList[models.ProductSaleSummary]

	const countQuery = `
		SELECT COUNT(DISTINCT oi.product_id)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.ordered_at >= $1 AND o.ordered_at < $2 AND o.cancelled_at IS NULL
	`
	if err := r.db.QueryRowContext(ctx, countQuery, from, until).Scan(&page.TotalCount); err != nil {
		return page, fmt.Errorf("count popular products: %w", err)
	}

	const query = `
		SELECT oi.product_id, oi.product_name, oi.unit_price, SUM(oi.quantity) AS sold_count
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.ordered_at >= $1 AND o.ordered_at < $2 AND o.cancelled_at IS NULL
		GROUP BY oi.product_id, oi.product_name, oi.unit_price
		ORDER BY sold_count DESC, oi.product_id
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, from, until, opts.Limit(), opts.Offset())
	if err != nil {
		return page, fmt.Errorf("list popular products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ProductSaleSummary
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.UnitPrice, &s.SoldCount); err != nil {
			return page, fmt.Errorf("scan popular product: %w", err)
		}
		page.Items = append(page.Items, s)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("list popular products: %w", err)
	}

	page.Page = opts.Page
	page.Size = opts.Size
	return page, nil
}

// ReduceStock is a conditional update: the stock check and the subtraction
// happen as one statement, so stock can reach zero but never go below it.
func (r *ProductRepo) ReduceStock(ctx context.Context, productID int64, quantity int) error {
	const query = `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`

	res, err := r.db.ExecContext(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("reduce stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reduce stock: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := r.FindProductByID(ctx, productID); err != nil {
		return err
	}
	return models.ErrInsufficientStock
}

func (r *ProductRepo) AddStock(ctx context.Context, productID int64, quantity int) error {
	const query = `
		UPDATE products
		SET stock = stock + $2
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("add stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add stock: %w", err)
	}
	if affected == 0 {
		return models.ErrProductNotFound
	}
	return nil
}
