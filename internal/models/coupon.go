package models

import "time"

// Coupon is a limited-quantity discount template. The invariant
// 0 <= IssuedQuantity <= TotalQuantity is enforced by the store's conditional
// increment, never by read-then-write in application code.
type Coupon struct {
	ID             int64
	Name           string
	DiscountAmount int64
	TotalQuantity  int
	IssuedQuantity int
	ExpiresAt      time.Time
}

func (c *Coupon) SoldOut() bool {
	return c.IssuedQuantity >= c.TotalQuantity
}

func (c *Coupon) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

type UserCouponStatus string

const (
	CouponActive  UserCouponStatus = "ACTIVE"
	CouponUsed    UserCouponStatus = "USED"
	CouponExpired UserCouponStatus = "EXPIRED"
)

// UserCoupon is one issuance of a coupon to one user. At most one exists per
// (UserID, CouponID); the store's uniqueness constraint is what enforces that
// under concurrent issuance.
type UserCoupon struct {
	ID             int64
	UserID         int64
	CouponID       int64
	CouponName     string
	DiscountAmount int64
	Status         UserCouponStatus
	IssuedAt       time.Time
	UsedAt         *time.Time
	ValidUntil     time.Time
}

// Use transitions Active -> Used. Anything else is rejected.
func (uc *UserCoupon) Use(now time.Time) error {
	if uc.Status != CouponActive || !now.Before(uc.ValidUntil) {
		return ErrCouponNotUsable
	}
	uc.Status = CouponUsed
	uc.UsedAt = &now
	return nil
}

// UndoUsage reverses a consumption during compensation. Only a Used coupon can
// go back to Active.
func (uc *UserCoupon) UndoUsage(now time.Time) error {
	if uc.Status != CouponUsed {
		return ErrCouponNotUsed
	}
	uc.UsedAt = nil
	if now.Before(uc.ValidUntil) {
		uc.Status = CouponActive
	} else {
		uc.Status = CouponExpired
	}
	return nil
}
