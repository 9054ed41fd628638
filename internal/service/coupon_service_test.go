package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/daehwan-kim/retail-order-service/internal/cache"
	"github.com/daehwan-kim/retail-order-service/internal/concurrency"
	"github.com/daehwan-kim/retail-order-service/internal/models"
	"github.com/daehwan-kim/retail-order-service/internal/repository/memory"
)

var couponTestNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newCouponFixture(c cache.Cache) (*CouponService, *memory.Store) {
	store := memory.NewStore()
	svc := NewCouponService(store, store, c)
	svc.now = func() time.Time { return couponTestNow }
	return svc, store
}

func TestIssueCoupon(t *testing.T) {
	svc, store := newCouponFixture(nil)
	store.AddUser(models.User{ID: 1, Name: "kim"})
	store.AddCoupon(models.Coupon{
		ID: 100, Name: "welcome", DiscountAmount: 1000,
		TotalQuantity: 10, ExpiresAt: couponTestNow.Add(time.Hour),
	})

	uc, err := svc.IssueCoupon(context.Background(), 1, 100)

	require.NoError(t, err)
	assert.Equal(t, int64(1), uc.UserID)
	assert.Equal(t, int64(100), uc.CouponID)
	assert.Equal(t, models.CouponActive, uc.Status)
	assert.Equal(t, 1, store.Coupon(100).IssuedQuantity)
}

func TestIssueCouponExpired(t *testing.T) {
	svc, store := newCouponFixture(nil)
	store.AddUser(models.User{ID: 1, Name: "kim"})
	store.AddCoupon(models.Coupon{
		ID: 100, Name: "bygone", DiscountAmount: 1000,
		TotalQuantity: 10, ExpiresAt: couponTestNow.Add(-time.Minute),
	})

	_, err := svc.IssueCoupon(context.Background(), 1, 100)

	assert.ErrorIs(t, err, models.ErrCouponExpired)
	assert.Zero(t, store.Coupon(100).IssuedQuantity)
}

func TestIssueCouponUnknownUser(t *testing.T) {
	svc, _ := newCouponFixture(nil)

	_, err := svc.IssueCoupon(context.Background(), 99, 100)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestIssueCouponUnknownCoupon(t *testing.T) {
	svc, store := newCouponFixture(nil)
	store.AddUser(models.User{ID: 1, Name: "kim"})

	_, err := svc.IssueCoupon(context.Background(), 1, 999)
	assert.ErrorIs(t, err, models.ErrCouponNotFound)
}

// Many distinct users race for a coupon with capacity C: exactly C must win
// and the issued count must land exactly on C, never above.
func TestIssueCouponNeverExceedsCapacity(t *testing.T) {
	const capacity = 5
	const contenders = 40

	svc, store := newCouponFixture(nil)
	store.AddCoupon(models.Coupon{
		ID: 100, Name: "flash sale", DiscountAmount: 1000,
		TotalQuantity: capacity, ExpiresAt: couponTestNow.Add(time.Hour),
	})
	for i := 1; i <= contenders; i++ {
		store.AddUser(models.User{ID: int64(i), Name: "user"})
	}

	var mu sync.Mutex
	var issued, soldOut int

	concurrency.SimpleWorkerPool(context.Background(), 16, contenders, func(ctx context.Context, i int) {
		_, err := svc.IssueCoupon(ctx, int64(i+1), 100)

		mu.Lock()
		defer mu.Unlock()
		switch {
		case err == nil:
			issued++
		case assert.ErrorIs(t, err, models.ErrCouponSoldOut):
			soldOut++
		}
	})

	assert.Equal(t, capacity, issued)
	assert.Equal(t, contenders-capacity, soldOut)
	assert.Equal(t, capacity, store.Coupon(100).IssuedQuantity)
}

// One user racing against itself gets exactly one issuance.
func TestIssueCouponOncePerUser(t *testing.T) {
	const attempts = 8

	svc, store := newCouponFixture(nil)
	store.AddUser(models.User{ID: 1, Name: "kim"})
	store.AddCoupon(models.Coupon{
		ID: 100, Name: "welcome", DiscountAmount: 1000,
		TotalQuantity: 100, ExpiresAt: couponTestNow.Add(time.Hour),
	})

	var mu sync.Mutex
	var issued, duplicate int

	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			_, err := svc.IssueCoupon(context.Background(), 1, 100)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				issued++
			case assert.ErrorIs(t, err, models.ErrCouponAlreadyIssued):
				duplicate++
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, issued)
	assert.Equal(t, attempts-1, duplicate)
	assert.Equal(t, 1, store.Coupon(100).IssuedQuantity)
}

func TestGetCouponServedFromCache(t *testing.T) {
	svc, store := newCouponFixture(cache.NewMemory())
	store.AddCoupon(models.Coupon{
		ID: 100, Name: "welcome", DiscountAmount: 1000,
		TotalQuantity: 10, ExpiresAt: couponTestNow.Add(time.Hour),
	})

	first, err := svc.GetCoupon(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "welcome", first.Name)

	// a store-side change is invisible until the cached copy expires
	store.AddCoupon(models.Coupon{
		ID: 100, Name: "renamed", DiscountAmount: 1000,
		TotalQuantity: 10, ExpiresAt: couponTestNow.Add(time.Hour),
	})

	second, err := svc.GetCoupon(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "welcome", second.Name)
}

func TestGetCouponWithoutCache(t *testing.T) {
	svc, store := newCouponFixture(nil)
	store.AddCoupon(models.Coupon{
		ID: 100, Name: "welcome", DiscountAmount: 1000,
		TotalQuantity: 10, ExpiresAt: couponTestNow.Add(time.Hour),
	})

	coupon, err := svc.GetCoupon(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "welcome", coupon.Name)

	_, err = svc.GetCoupon(context.Background(), 999)
	assert.ErrorIs(t, err, models.ErrCouponNotFound)
}

func TestUserCoupons(t *testing.T) {
	svc, store := newCouponFixture(nil)
	store.AddUser(models.User{ID: 1, Name: "kim"})
	store.AddUser(models.User{ID: 2, Name: "lee"})
	store.AddCoupon(models.Coupon{
		ID: 100, Name: "welcome", DiscountAmount: 1000,
		TotalQuantity: 10, ExpiresAt: couponTestNow.Add(time.Hour),
	})
	store.AddUserCoupon(models.UserCoupon{
		ID: 1, UserID: 1, CouponID: 100, CouponName: "welcome",
		Status: models.CouponActive, IssuedAt: couponTestNow, ValidUntil: couponTestNow.Add(time.Hour),
	})

	mine, err := svc.UserCoupons(context.Background(), 1, models.NewPagingOptions(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "welcome", mine.Items[0].CouponName)

	theirs, err := svc.UserCoupons(context.Background(), 2, models.NewPagingOptions(1, 20))
	require.NoError(t, err)
	assert.Zero(t, theirs.TotalCount)

	_, err = svc.UserCoupons(context.Background(), 99, models.NewPagingOptions(1, 20))
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
