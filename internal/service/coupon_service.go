package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/cache"
	"github.com/daehwan-kim/retail-order-service/internal/models"
)

// CouponService covers issuing limited-quantity coupons and reading a user's
// coupon wallet.
//
// Issuance safety does not come from locking in this layer: the store performs
// a single conditional increment ("add one issued unit while capacity remains
// and the coupon is not expired"), and the (user, coupon) uniqueness
// constraint converts a duplicate-issuance race into ErrCouponAlreadyIssued.
// This layer only sequences the calls and registers the revoke inverse.
type CouponService struct {
	users   UserStore
	coupons CouponStore
	cache   cache.Cache
	now     func() time.Time
}

// NewCouponService accepts a nil cache; coupon reads then always hit the store.
func NewCouponService(users UserStore, coupons CouponStore, c cache.Cache) *CouponService {
	return &CouponService{
		users:   users,
		coupons: coupons,
		cache:   c,
		now:     time.Now,
	}
}

const couponCacheTTL = 5 * time.Minute

// IssueCoupon issues one unit of the coupon to the user. SoldOut, Expired and
// AlreadyIssued are expected business outcomes, distinguishable by the caller.
func (s *CouponService) IssueCoupon(ctx context.Context, userID, couponID int64) (*models.UserCoupon, error) {
	if _, err := s.users.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}

	var issued *models.UserCoupon

	err := RunTransaction(ctx, func(ctx context.Context, scope *CompensationScope) error {
		result, err := Execute(ctx, scope, func(ctx context.Context) (*models.UserCoupon, error) {
			return s.coupons.Issue(ctx, userID, couponID, s.now())
		})
		if err != nil {
			return err
		}
		issued = result.CompensateWith(func(ctx context.Context, uc *models.UserCoupon) error {
			return s.coupons.Revoke(ctx, uc.ID)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "coupon issued",
		"user_id", userID,
		"coupon_id", couponID,
		"user_coupon_id", issued.ID,
	)
	return issued, nil
}

// GetCoupon returns the coupon template, served from the read cache when
// possible. Issued quantities in a cached copy may lag; issuance never reads
// from here.
func (s *CouponService) GetCoupon(ctx context.Context, couponID int64) (*models.Coupon, error) {
	key := fmt.Sprintf("coupon:%d", couponID)

	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var coupon models.Coupon
			if err := json.Unmarshal([]byte(raw), &coupon); err == nil {
				return &coupon, nil
			}
		}
	}

	coupon, err := s.coupons.FindCoupon(ctx, couponID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(coupon); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), couponCacheTTL); err != nil {
				slog.WarnContext(ctx, "coupon cache set failed", "coupon_id", couponID, "error", err)
			}
		}
	}
	return coupon, nil
}

// UserCoupons lists a user's issued coupons, paged.
func (s *CouponService) UserCoupons(ctx context.Context, userID int64, opts models.PagingOptions) (models.PagedList[models.UserCoupon], error) {
	if _, err := s.users.FindUserByID(ctx, userID); err != nil {
		return models.PagedList[models.UserCoupon]{}, err
	}
	return s.coupons.FindUserCoupons(ctx, userID, opts)
}
