package models

import "time"

// OrderItem is owned exclusively by its Order and never mutated after
// creation.
type OrderItem struct {
	ID          int64
	ProductID   int64
	ProductName string
	UnitPrice   int64
	Quantity    int
}

func (i OrderItem) TotalPrice() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Order is the aggregate persisted atomically with its items. Cancellation is
// a soft state used by compensation.
type Order struct {
	ID                 int64
	UserID             int64
	UserCouponID       *int64
	Items              []OrderItem
	TotalProductsPrice int64
	DiscountedPrice    int64
	OrderedAt          time.Time
	CancelledAt        *time.Time
}

func (o *Order) PurchasedPrice() int64 {
	return o.TotalProductsPrice - o.DiscountedPrice
}

func (o *Order) Cancelled() bool {
	return o.CancelledAt != nil
}

// OrderDraft carries everything the order store needs to persist the
// aggregate; the store assigns ids.
type OrderDraft struct {
	UserID             int64
	UserCouponID       *int64
	Items              []OrderItem
	TotalProductsPrice int64
	DiscountedPrice    int64
	OrderedAt          time.Time
}
