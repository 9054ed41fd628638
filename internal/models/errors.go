package models

import "errors"

// Business errors are expected outcomes of an operation. Handlers map them to
// HTTP statuses; the order workflow treats all of them as triggers for a full
// unwind of already-applied steps.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrUserCouponNotFound = errors.New("user coupon not found")
	ErrOrderNotFound      = errors.New("order not found")

	ErrCouponNotOwned      = errors.New("coupon is not owned by this user")
	ErrCouponNotUsable     = errors.New("coupon is not in a usable state")
	ErrCouponNotUsed       = errors.New("coupon is not used, nothing to undo")
	ErrCouponSoldOut       = errors.New("coupon is sold out")
	ErrCouponExpired       = errors.New("coupon is expired")
	ErrCouponAlreadyIssued = errors.New("coupon already issued to this user")

	ErrInsufficientStock  = errors.New("not enough product stock")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrInvalidPointAmount = errors.New("point amount must be greater than zero")
)

// IsNotFound reports whether err is one of the absent-entity errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCouponNotFound) ||
		errors.Is(err, ErrUserCouponNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsBusinessRuleViolation reports whether err is a domain rule rejection, as
// opposed to an infrastructure failure.
func IsBusinessRuleViolation(err error) bool {
	return errors.Is(err, ErrCouponNotOwned) ||
		errors.Is(err, ErrCouponNotUsable) ||
		errors.Is(err, ErrCouponNotUsed) ||
		errors.Is(err, ErrCouponSoldOut) ||
		errors.Is(err, ErrCouponExpired) ||
		errors.Is(err, ErrCouponAlreadyIssued) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInsufficientPoints) ||
		errors.Is(err, ErrInvalidPointAmount)
}
