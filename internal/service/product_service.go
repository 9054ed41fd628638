package service

import (
	"context"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

// popularWindow is the trailing period the popular-products ranking looks at.
const popularWindow = 3 * 24 * time.Hour

type ProductService struct {
	products ProductStore
	now      func() time.Time
}

func NewProductService(products ProductStore) *ProductService {
	return &ProductService{products: products, now: time.Now}
}

func (s *ProductService) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	return s.products.FindProductByID(ctx, productID)
}

func (s *ProductService) Products(ctx context.Context, opts models.PagingOptions) (models.PagedList[models.Product], error) {
	return s.products.FindPagedProducts(ctx, opts)
}

func (s *ProductService) PopularProducts(ctx context.Context, opts models.PagingOptions) (models.PagedList[models.ProductSaleSummary], error) {
	until := s.now()
	from := until.Add(-popularWindow)
	return s.products.FindPopularProducts(ctx, from, until, opts)
}
