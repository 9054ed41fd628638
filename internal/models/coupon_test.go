package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestCouponSoldOut(t *testing.T) {
	c := Coupon{TotalQuantity: 2, IssuedQuantity: 1}
	assert.False(t, c.SoldOut())

	c.IssuedQuantity = 2
	assert.True(t, c.SoldOut())
}

func TestCouponExpired(t *testing.T) {
	c := Coupon{ExpiresAt: now}
	assert.False(t, c.Expired(now.Add(-time.Second)))
	assert.True(t, c.Expired(now))
	assert.True(t, c.Expired(now.Add(time.Second)))
}

func TestUserCouponUse(t *testing.T) {
	uc := UserCoupon{Status: CouponActive, ValidUntil: now.Add(time.Hour)}

	require.NoError(t, uc.Use(now))
	assert.Equal(t, CouponUsed, uc.Status)
	require.NotNil(t, uc.UsedAt)
	assert.Equal(t, now, *uc.UsedAt)

	// a used coupon cannot be used again
	assert.ErrorIs(t, uc.Use(now), ErrCouponNotUsable)
}

func TestUserCouponUsePastValidity(t *testing.T) {
	uc := UserCoupon{Status: CouponActive, ValidUntil: now}
	assert.ErrorIs(t, uc.Use(now), ErrCouponNotUsable)
}

func TestUserCouponUndoUsage(t *testing.T) {
	uc := UserCoupon{Status: CouponActive, ValidUntil: now.Add(time.Hour)}
	require.NoError(t, uc.Use(now))

	require.NoError(t, uc.UndoUsage(now.Add(time.Minute)))
	assert.Equal(t, CouponActive, uc.Status)
	assert.Nil(t, uc.UsedAt)
}

func TestUserCouponUndoUsageAfterValidity(t *testing.T) {
	uc := UserCoupon{Status: CouponActive, ValidUntil: now.Add(time.Hour)}
	require.NoError(t, uc.Use(now))

	// the window closed while the coupon was held as used
	require.NoError(t, uc.UndoUsage(now.Add(2*time.Hour)))
	assert.Equal(t, CouponExpired, uc.Status)
}

func TestUserCouponUndoUsageRequiresUsed(t *testing.T) {
	uc := UserCoupon{Status: CouponActive, ValidUntil: now.Add(time.Hour)}
	assert.ErrorIs(t, uc.UndoUsage(now), ErrCouponNotUsed)
}
