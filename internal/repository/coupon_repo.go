package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

// Postgres error code for unique_violation.
const pqUniqueViolation = "23505"

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

func (r *CouponRepo) FindCoupon(ctx context.Context, couponID int64) (*models.Coupon, error) {
	const query = `
		SELECT id, name, discount_amount, total_quantity, issued_quantity, expires_at
		FROM coupons
		WHERE id = $1
	`

	var c models.Coupon
	err := r.db.QueryRowContext(ctx, query, couponID).Scan(
		&c.ID, &c.Name, &c.DiscountAmount, &c.TotalQuantity, &c.IssuedQuantity, &c.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrCouponNotFound
		}
		return nil, fmt.Errorf("find coupon: %w", err)
	}
	return &c, nil
}

// Issue claims one unit of the coupon with a single conditional increment,
// then inserts the user-coupon row. The increment holds no lock across the
// insert; the uniqueness constraint on (user_id, coupon_id) is what defends
// against duplicate issuance, and a violated insert hands its unit back.
func (r *CouponRepo) Issue(ctx context.Context, userID, couponID int64, now time.Time) (*models.UserCoupon, error) {
	const claim = `
		UPDATE coupons
		SET issued_quantity = issued_quantity + 1
		WHERE id = $1 AND issued_quantity < total_quantity AND expires_at > $2
	`

	res, err := r.db.ExecContext(ctx, claim, couponID, now)
	if err != nil {
		return nil, fmt.Errorf("claim coupon unit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim coupon unit: %w", err)
	}
	if affected == 0 {
		// The increment did not happen. Re-read to classify; another issuance
		// may have changed the coupon again, so this is best-effort.
		coupon, err := r.FindCoupon(ctx, couponID)
		if err != nil {
			return nil, err
		}
		if coupon.Expired(now) {
			return nil, models.ErrCouponExpired
		}
		return nil, models.ErrCouponSoldOut
	}

	coupon, err := r.FindCoupon(ctx, couponID)
	if err != nil {
		if rbErr := r.returnCouponUnit(ctx, couponID); rbErr != nil {
			return nil, fmt.Errorf("return coupon unit after failed re-read: %w", rbErr)
		}
		return nil, err
	}

	const insert = `
		INSERT INTO user_coupons (user_id, coupon_id, status, issued_at, valid_until)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	uc := models.UserCoupon{
		UserID:         userID,
		CouponID:       couponID,
		CouponName:     coupon.Name,
		DiscountAmount: coupon.DiscountAmount,
		Status:         models.CouponActive,
		IssuedAt:       now,
		ValidUntil:     coupon.ExpiresAt,
	}
	err = r.db.QueryRowContext(ctx, insert, userID, couponID, uc.Status, uc.IssuedAt, uc.ValidUntil).Scan(&uc.ID)
	if err != nil {
		// Whatever killed the insert, the claimed unit has no user-coupon row
		// backing it and must go back, or the coupon under-issues forever.
		if rbErr := r.returnCouponUnit(ctx, couponID); rbErr != nil {
			return nil, fmt.Errorf("return coupon unit after failed issue: %w", rbErr)
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, models.ErrCouponAlreadyIssued
		}
		return nil, fmt.Errorf("insert user coupon: %w", err)
	}

	return &uc, nil
}

func (r *CouponRepo) returnCouponUnit(ctx context.Context, couponID int64) error {
	const query = `
		UPDATE coupons
		SET issued_quantity = issued_quantity - 1
		WHERE id = $1 AND issued_quantity > 0
	`
	_, err := r.db.ExecContext(ctx, query, couponID)
	return err
}

// Revoke removes an issuance and returns its unit to the coupon's quantity.
func (r *CouponRepo) Revoke(ctx context.Context, userCouponID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("revoke coupon: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const remove = `DELETE FROM user_coupons WHERE id = $1 RETURNING coupon_id`
	var couponID int64
	if err := tx.QueryRowContext(ctx, remove, userCouponID).Scan(&couponID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrUserCouponNotFound
		}
		return fmt.Errorf("revoke coupon: %w", err)
	}

	const decrement = `
		UPDATE coupons
		SET issued_quantity = issued_quantity - 1
		WHERE id = $1 AND issued_quantity > 0
	`
	if _, err := tx.ExecContext(ctx, decrement, couponID); err != nil {
		return fmt.Errorf("revoke coupon: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("revoke coupon: commit: %w", err)
	}
	return nil
}

func (r *CouponRepo) FindUserCoupon(ctx context.Context, userID, userCouponID int64) (*models.UserCoupon, error) {
	const query = `
		SELECT uc.id, uc.user_id, uc.coupon_id, c.name, c.discount_amount,
		       uc.status, uc.issued_at, uc.used_at, uc.valid_until
		FROM user_coupons uc
		JOIN coupons c ON c.id = uc.coupon_id
		WHERE uc.id = $1
	`

	uc, err := scanUserCoupon(r.db.QueryRowContext(ctx, query, userCouponID))
	if err != nil {
		return nil, err
	}
	if uc.UserID != userID {
		return nil, models.ErrCouponNotOwned
	}
	return uc, nil
}

func (r *CouponRepo) FindUserCoupons(ctx context.Context, userID int64, opts models.PagingOptions) (models.PagedList[models.UserCoupon], error) {
	var page models.PagedList[models.UserCoupon]

	const countQuery = `SELECT COUNT(*) FROM user_coupons WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&page.TotalCount); err != nil {
		return page, fmt.Errorf("count user coupons: %w", err)
	}

	const query = `
		SELECT uc.id, uc.user_id, uc.coupon_id, c.name, c.discount_amount,
		       uc.status, uc.issued_at, uc.used_at, uc.valid_until
		FROM user_coupons uc
		JOIN coupons c ON c.id = uc.coupon_id
		WHERE uc.user_id = $1
		ORDER BY uc.issued_at DESC, uc.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, opts.Limit(), opts.Offset())
	if err != nil {
		return page, fmt.Errorf("list user coupons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		uc, err := scanUserCoupon(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *uc)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("list user coupons: %w", err)
	}

	page.Page = opts.Page
	page.Size = opts.Size
	return page, nil
}

// MarkUsed is the conditional Active -> Used transition. Zero affected rows
// means the coupon is missing, already used, or expired; all of those are the
// same "not usable" outcome for the caller.
func (r *CouponRepo) MarkUsed(ctx context.Context, userCouponID int64, now time.Time) error {
	const query = `
		UPDATE user_coupons
		SET status = $2, used_at = $3
		WHERE id = $1 AND status = $4 AND valid_until > $3
	`

	res, err := r.db.ExecContext(ctx, query, userCouponID, models.CouponUsed, now, models.CouponActive)
	if err != nil {
		return fmt.Errorf("mark coupon used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark coupon used: %w", err)
	}
	if affected == 0 {
		return models.ErrCouponNotUsable
	}
	return nil
}

// MarkUnused reverses a consumption. The coupon only returns to Active while
// its validity window is still open; past valid_until it lands on Expired,
// matching UserCoupon.UndoUsage.
func (r *CouponRepo) MarkUnused(ctx context.Context, userCouponID int64, now time.Time) error {
	const query = `
		UPDATE user_coupons
		SET status = CASE WHEN valid_until > $2 THEN $3 ELSE $4 END, used_at = NULL
		WHERE id = $1 AND status = $5
	`

	res, err := r.db.ExecContext(ctx, query, userCouponID, now, models.CouponActive, models.CouponExpired, models.CouponUsed)
	if err != nil {
		return fmt.Errorf("mark coupon unused: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark coupon unused: %w", err)
	}
	if affected == 0 {
		return models.ErrCouponNotUsed
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserCoupon(row rowScanner) (*models.UserCoupon, error) {
	var uc models.UserCoupon
	var usedAt sql.NullTime
	err := row.Scan(
		&uc.ID, &uc.UserID, &uc.CouponID, &uc.CouponName, &uc.DiscountAmount,
		&uc.Status, &uc.IssuedAt, &usedAt, &uc.ValidUntil,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserCouponNotFound
		}
		return nil, fmt.Errorf("scan user coupon: %w", err)
	}
	if usedAt.Valid {
		uc.UsedAt = &usedAt.Time
	}
	return &uc, nil
}
