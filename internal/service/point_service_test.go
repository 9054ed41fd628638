package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daehwan-kim/retail-order-service/internal/models"
	"github.com/daehwan-kim/retail-order-service/internal/repository/memory"
)

func newPointFixture() (*PointService, *memory.Store) {
	store := memory.NewStore()
	store.AddUser(models.User{ID: 1, Name: "kim", PointBalance: 1000})
	return NewPointService(store), store
}

func TestPointBalance(t *testing.T) {
	svc, _ := newPointFixture()

	balance, err := svc.Balance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)

	_, err = svc.Balance(context.Background(), 99)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestPointCharge(t *testing.T) {
	svc, store := newPointFixture()

	change, err := svc.Charge(context.Background(), 1, 500)
	require.NoError(t, err)
	assert.Equal(t, models.PointCharge, change.Type)
	assert.Equal(t, int64(500), change.Amount)
	assert.Equal(t, int64(1500), change.NewBalance)
	assert.Equal(t, int64(1500), store.User(1).PointBalance)
}

func TestPointChargeRejectsNonPositiveAmount(t *testing.T) {
	svc, store := newPointFixture()

	for _, amount := range []int64{0, -100} {
		_, err := svc.Charge(context.Background(), 1, amount)
		assert.ErrorIs(t, err, models.ErrInvalidPointAmount)
	}
	assert.Equal(t, int64(1000), store.User(1).PointBalance)
}

func TestPointUse(t *testing.T) {
	svc, store := newPointFixture()

	change, err := svc.Use(context.Background(), 1, 400)
	require.NoError(t, err)
	assert.Equal(t, models.PointUse, change.Type)
	assert.Equal(t, int64(600), change.NewBalance)

	_, err = svc.Use(context.Background(), 1, 10_000)
	assert.ErrorIs(t, err, models.ErrInsufficientPoints)
	assert.Equal(t, int64(600), store.User(1).PointBalance)
}
