package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

// OrderService orchestrates order creation across four independently-owned
// resources (stock, coupon, points, order record) plus the analytics
// notification. There is no transaction spanning them: every mutating step is
// paired with an inverse on a CompensationScope, and any failure unwinds all
// prior steps before the error is returned.
type OrderService struct {
	users     UserStore
	products  ProductStore
	coupons   CouponStore
	orders    OrderStore
	analytics AnalyticsNotifier
	now       func() time.Time
}

func NewOrderService(
	users UserStore,
	products ProductStore,
	coupons CouponStore,
	orders OrderStore,
	analytics AnalyticsNotifier,
) *OrderService {
	return &OrderService{
		users:     users,
		products:  products,
		coupons:   coupons,
		orders:    orders,
		analytics: analytics,
		now:       time.Now,
	}
}

type CreateOrderInput struct {
	UserID       int64
	Products     []ProductWithQuantity
	UserCouponID *int64
}

type ProductWithQuantity struct {
	ProductID int64
	Quantity  int
}

type productSale struct {
	product  *models.Product
	quantity int
}

// CreateOrder runs the order-creation workflow:
//
//  1. resolve user, products and (optionally) the user coupon — read-only
//  2. reduce stock per product        (inverse: add stock back)
//  3. mark the coupon used            (inverse: mark unused)
//  4. compute the total               — pure
//  5. deduct points                   (inverse: credit points)
//  6. persist the order aggregate     (inverse: cancel the order)
//  7. notify the data platform        (no inverse; a failure here still
//     unwinds steps 2-6, cancelling the already-persisted order)
//
// Steps run strictly sequentially; the steps of one call never interleave
// with each other, and concurrent calls each get their own scope.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if len(input.Products) == 0 {
		return nil, fmt.Errorf("order must contain at least one product")
	}

	var created *models.Order

	err := RunTransaction(ctx, func(ctx context.Context, scope *CompensationScope) error {
		user, err := s.users.FindUserByID(ctx, input.UserID)
		if err != nil {
			return err
		}

		sales := make([]productSale, 0, len(input.Products))
		for _, pq := range input.Products {
			product, err := s.products.FindProductByID(ctx, pq.ProductID)
			if err != nil {
				return err
			}
			sales = append(sales, productSale{product: product, quantity: pq.Quantity})
		}

		var userCoupon *models.UserCoupon
		if input.UserCouponID != nil {
			userCoupon, err = s.coupons.FindUserCoupon(ctx, input.UserID, *input.UserCouponID)
			if err != nil {
				return err
			}
		}

		now := s.now()

		for _, sale := range sales {
			productID, quantity := sale.product.ID, sale.quantity
			step, err := scope.Execute(ctx, func(ctx context.Context) error {
				return s.products.ReduceStock(ctx, productID, quantity)
			})
			if err != nil {
				return err
			}
			step.Compensate(func(ctx context.Context) error {
				return s.products.AddStock(ctx, productID, quantity)
			})
		}

		if userCoupon != nil {
			couponID := userCoupon.ID
			step, err := scope.Execute(ctx, func(ctx context.Context) error {
				return s.coupons.MarkUsed(ctx, couponID, now)
			})
			if err != nil {
				return err
			}
			step.Compensate(func(ctx context.Context) error {
				return s.coupons.MarkUnused(ctx, couponID, s.now())
			})
		}

		var totalProductsPrice int64
		for _, sale := range sales {
			totalProductsPrice += sale.product.UnitPrice * int64(sale.quantity)
		}
		var discountedPrice int64
		if userCoupon != nil {
			discountedPrice = userCoupon.DiscountAmount
			// A discount larger than the order covers it in full, never more;
			// the purchased price must not go negative.
			if discountedPrice > totalProductsPrice {
				discountedPrice = totalProductsPrice
			}
		}
		purchasedPrice := totalProductsPrice - discountedPrice

		userID := user.ID
		step, err := scope.Execute(ctx, func(ctx context.Context) error {
			_, err := s.users.DeductPoints(ctx, userID, purchasedPrice)
			return err
		})
		if err != nil {
			return err
		}
		step.Compensate(func(ctx context.Context) error {
			_, err := s.users.CreditPoints(ctx, userID, purchasedPrice)
			return err
		})

		draft := models.OrderDraft{
			UserID:             user.ID,
			UserCouponID:       input.UserCouponID,
			Items:              orderItemsFromSales(sales),
			TotalProductsPrice: totalProductsPrice,
			DiscountedPrice:    discountedPrice,
			OrderedAt:          now,
		}
		result, err := Execute(ctx, scope, func(ctx context.Context) (*models.Order, error) {
			return s.orders.CreateOrder(ctx, draft)
		})
		if err != nil {
			return err
		}
		order := result.CompensateWith(func(ctx context.Context, o *models.Order) error {
			return s.orders.CancelOrder(ctx, o.ID, s.now())
		})

		if err := s.analytics.SendOrder(ctx, order); err != nil {
			return fmt.Errorf("send order to data platform: %w", err)
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order created",
		"order_id", created.ID,
		"user_id", created.UserID,
		"purchased_price", created.PurchasedPrice(),
	)
	return created, nil
}

func orderItemsFromSales(sales []productSale) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(sales))
	for _, sale := range sales {
		items = append(items, models.OrderItem{
			ProductID:   sale.product.ID,
			ProductName: sale.product.Name,
			UnitPrice:   sale.product.UnitPrice,
			Quantity:    sale.quantity,
		})
	}
	return items
}
