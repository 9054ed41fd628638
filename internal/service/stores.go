package service

import (
	"context"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

// Services depend on store interfaces, not concrete repositories, so that the
// Postgres and in-memory implementations stay interchangeable. Every mutating
// operation here is atomic at the store boundary: the store performs its own
// check-and-update as one indivisible operation, and the caller never computes
// a new value from a previously read one.

type UserStore interface {
	FindUserByID(ctx context.Context, userID int64) (*models.User, error)
	// DeductPoints subtracts amount only if the balance covers it and returns
	// the new balance. Fails with ErrInsufficientPoints otherwise.
	DeductPoints(ctx context.Context, userID, amount int64) (int64, error)
	// CreditPoints adds amount unconditionally and returns the new balance.
	CreditPoints(ctx context.Context, userID, amount int64) (int64, error)
}

type ProductStore interface {
	FindProductByID(ctx context.Context, productID int64) (*models.Product, error)
	FindPagedProducts(ctx context.Context, opts models.PagingOptions) (models.PagedList[models.Product], error)
	// FindPopularProducts ranks products by units sold in [from, until).
	FindPopularProducts(ctx context.Context, from, until time.Time, opts models.PagingOptions) (models.PagedList[models.ProductSaleSummary], error)
	// ReduceStock subtracts quantity only if stock covers it; stock may reach
	// exactly zero. Fails with ErrInsufficientStock otherwise.
	ReduceStock(ctx context.Context, productID int64, quantity int) error
	AddStock(ctx context.Context, productID int64, quantity int) error
}

type CouponStore interface {
	FindCoupon(ctx context.Context, couponID int64) (*models.Coupon, error)
	// Issue performs the conditional atomic increment of the coupon's issued
	// quantity and creates the UserCoupon row. Failure modes: ErrCouponSoldOut,
	// ErrCouponExpired, ErrCouponAlreadyIssued, ErrCouponNotFound.
	Issue(ctx context.Context, userID, couponID int64, now time.Time) (*models.UserCoupon, error)
	// Revoke undoes an issuance: removes the UserCoupon and returns the unit
	// to the coupon's quantity.
	Revoke(ctx context.Context, userCouponID int64) error
	// FindUserCoupon fails with ErrCouponNotOwned when the coupon exists but
	// belongs to someone else.
	FindUserCoupon(ctx context.Context, userID, userCouponID int64) (*models.UserCoupon, error)
	FindUserCoupons(ctx context.Context, userID int64, opts models.PagingOptions) (models.PagedList[models.UserCoupon], error)
	// MarkUsed transitions Active -> Used as one conditional update; fails
	// with ErrCouponNotUsable when the coupon is used, expired, or missing.
	MarkUsed(ctx context.Context, userCouponID int64, now time.Time) error
	// MarkUnused reverses MarkUsed during compensation.
	MarkUnused(ctx context.Context, userCouponID int64, now time.Time) error
}

type OrderStore interface {
	// CreateOrder persists the order header and its items as one unit.
	CreateOrder(ctx context.Context, draft models.OrderDraft) (*models.Order, error)
	// CancelOrder soft-cancels a persisted order; cancelling an already
	// cancelled order is a no-op.
	CancelOrder(ctx context.Context, orderID int64, now time.Time) error
}

// AnalyticsNotifier forwards completed orders to the external data platform.
type AnalyticsNotifier interface {
	SendOrder(ctx context.Context, order *models.Order) error
}
