package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daehwan-kim/retail-order-service/internal/models"
	"github.com/daehwan-kim/retail-order-service/internal/repository/memory"
)

func TestProducts(t *testing.T) {
	store := memory.NewStore()
	for i := 1; i <= 25; i++ {
		store.AddProduct(models.Product{ID: int64(i), Name: "p", UnitPrice: 100, Stock: 1})
	}
	svc := NewProductService(store)

	page1, err := svc.Products(context.Background(), models.NewPagingOptions(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(25), page1.TotalCount)
	assert.Len(t, page1.Items, 10)
	assert.Equal(t, int64(1), page1.Items[0].ID)

	page3, err := svc.Products(context.Background(), models.NewPagingOptions(3, 10))
	require.NoError(t, err)
	assert.Len(t, page3.Items, 5)
	assert.Equal(t, int64(21), page3.Items[0].ID)
}

func TestPopularProductsRanksRecentSales(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.AddUser(models.User{ID: 1, Name: "kim", PointBalance: 1_000_000})
	store.AddProduct(models.Product{ID: 10, Name: "keyboard", UnitPrice: 4500, Stock: 100})
	store.AddProduct(models.Product{ID: 11, Name: "mouse", UnitPrice: 5000, Stock: 100})

	placeOrder := func(orderedAt time.Time, productID int64, name string, quantity int) {
		_, err := store.CreateOrder(context.Background(), models.OrderDraft{
			UserID: 1,
			Items: []models.OrderItem{
				{ProductID: productID, ProductName: name, UnitPrice: 100, Quantity: quantity},
			},
			OrderedAt: orderedAt,
		})
		require.NoError(t, err)
	}

	placeOrder(now.Add(-time.Hour), 10, "keyboard", 2)
	placeOrder(now.Add(-2*time.Hour), 11, "mouse", 5)
	// outside the trailing window, must not count
	placeOrder(now.Add(-4*24*time.Hour), 10, "keyboard", 50)

	svc := NewProductService(store)
	svc.now = func() time.Time { return now }

	popular, err := svc.PopularProducts(context.Background(), models.NewPagingOptions(1, 20))
	require.NoError(t, err)
	require.Len(t, popular.Items, 2)
	assert.Equal(t, int64(11), popular.Items[0].ProductID)
	assert.Equal(t, int64(5), popular.Items[0].SoldCount)
	assert.Equal(t, int64(10), popular.Items[1].ProductID)
	assert.Equal(t, int64(2), popular.Items[1].SoldCount)
}

func TestPopularProductsIgnoresCancelledOrders(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.AddUser(models.User{ID: 1, Name: "kim"})
	store.AddProduct(models.Product{ID: 10, Name: "keyboard", UnitPrice: 4500, Stock: 100})

	order, err := store.CreateOrder(context.Background(), models.OrderDraft{
		UserID: 1,
		Items: []models.OrderItem{
			{ProductID: 10, ProductName: "keyboard", UnitPrice: 4500, Quantity: 3},
		},
		OrderedAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, store.CancelOrder(context.Background(), order.ID, now))

	svc := NewProductService(store)
	svc.now = func() time.Time { return now }

	popular, err := svc.PopularProducts(context.Background(), models.NewPagingOptions(1, 20))
	require.NoError(t, err)
	assert.Empty(t, popular.Items)
}
