// Package memory provides an in-memory implementation of the store
// interfaces. Every mutating operation performs its check-and-update under
// one lock, giving the same boundary atomicity the Postgres conditional
// updates provide. Used by tests and for running without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

type couponKey struct {
	userID   int64
	couponID int64
}

// Store implements the user, product, coupon and order store interfaces over
// plain maps.
type Store struct {
	mu sync.Mutex

	users       map[int64]*models.User
	products    map[int64]*models.Product
	coupons     map[int64]*models.Coupon
	userCoupons map[int64]*models.UserCoupon
	issued      map[couponKey]int64 // (user, coupon) -> user coupon id
	orders      map[int64]*models.Order

	nextUserCouponID int64
	nextOrderID      int64
	nextOrderItemID  int64
}

func NewStore() *Store {
	return &Store{
		users:       make(map[int64]*models.User),
		products:    make(map[int64]*models.Product),
		coupons:     make(map[int64]*models.Coupon),
		userCoupons: make(map[int64]*models.UserCoupon),
		issued:      make(map[couponKey]int64),
		orders:      make(map[int64]*models.Order),
	}
}

// --- seeding and inspection helpers ---

func (s *Store) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
}

func (s *Store) AddProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

func (s *Store) AddCoupon(c models.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons[c.ID] = &c
}

func (s *Store) AddUserCoupon(uc models.UserCoupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCoupons[uc.ID] = &uc
	s.issued[couponKey{uc.UserID, uc.CouponID}] = uc.ID
	if uc.ID > s.nextUserCouponID {
		s.nextUserCouponID = uc.ID
	}
}

func (s *Store) User(id int64) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *Store) Product(id int64) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.products[id]
}

func (s *Store) Coupon(id int64) models.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.coupons[id]
}

func (s *Store) UserCoupon(id int64) (models.UserCoupon, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uc, ok := s.userCoupons[id]
	if !ok {
		return models.UserCoupon{}, false
	}
	return *uc, true
}

func (s *Store) Order(id int64) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, false
	}
	return *o, true
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// --- UserStore ---

func (s *Store) FindUserByID(_ context.Context, userID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *Store) DeductPoints(_ context.Context, userID, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0, models.ErrUserNotFound
	}
	if u.PointBalance < amount {
		return 0, models.ErrInsufficientPoints
	}
	u.PointBalance -= amount
	return u.PointBalance, nil
}

func (s *Store) CreditPoints(_ context.Context, userID, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0, models.ErrUserNotFound
	}
	u.PointBalance += amount
	return u.PointBalance, nil
}

// --- ProductStore ---

func (s *Store) FindProductByID(_ context.Context, productID int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *Store) FindPagedProducts(_ context.Context, opts models.PagingOptions) (models.PagedList[models.Product], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return models.PagedList[models.Product]{
		Items:      pageOf(all, opts),
		Page:       opts.Page,
		Size:       opts.Size,
		TotalCount: int64(len(all)),
	}, nil
}

func (s *Store) FindPopularProducts(_ context.Context, from, until time.Time, opts models.PagingOptions) (models.PagedList[models.ProductSaleSummary], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sold := make(map[int64]*models.ProductSaleSummary)
	for _, o := range s.orders {
		if o.Cancelled() || o.OrderedAt.Before(from) || !o.OrderedAt.Before(until) {
			continue
		}
		for _, item := range o.Items {
			summary, ok := sold[item.ProductID]
			if !ok {
				summary = &models.ProductSaleSummary{
					ProductID:   item.ProductID,
					ProductName: item.ProductName,
					UnitPrice:   item.UnitPrice,
				}
				sold[item.ProductID] = summary
			}
			summary.SoldCount += int64(item.Quantity)
		}
	}

	all := make([]models.ProductSaleSummary, 0, len(sold))
	for _, summary := range sold {
		all = append(all, *summary)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].SoldCount != all[j].SoldCount {
			return all[i].SoldCount > all[j].SoldCount
		}
		return all[i].ProductID < all[j].ProductID
	})

	return models.PagedList[models.ProductSaleSummary]{
		Items:      pageOf(all, opts),
		Page:       opts.Page,
		Size:       opts.Size,
		TotalCount: int64(len(all)),
	}, nil
}

func (s *Store) ReduceStock(_ context.Context, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return models.ErrProductNotFound
	}
	if p.Stock < quantity {
		return models.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (s *Store) AddStock(_ context.Context, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return models.ErrProductNotFound
	}
	p.Stock += quantity
	return nil
}

// --- CouponStore ---

func (s *Store) FindCoupon(_ context.Context, couponID int64) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[couponID]
	if !ok {
		return nil, models.ErrCouponNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *Store) Issue(_ context.Context, userID, couponID int64, now time.Time) (*models.UserCoupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.coupons[couponID]
	if !ok {
		return nil, models.ErrCouponNotFound
	}
	if c.Expired(now) {
		return nil, models.ErrCouponExpired
	}
	if c.SoldOut() {
		return nil, models.ErrCouponSoldOut
	}
	key := couponKey{userID, couponID}
	if _, dup := s.issued[key]; dup {
		return nil, models.ErrCouponAlreadyIssued
	}

	c.IssuedQuantity++
	s.nextUserCouponID++
	uc := &models.UserCoupon{
		ID:             s.nextUserCouponID,
		UserID:         userID,
		CouponID:       couponID,
		CouponName:     c.Name,
		DiscountAmount: c.DiscountAmount,
		Status:         models.CouponActive,
		IssuedAt:       now,
		ValidUntil:     c.ExpiresAt,
	}
	s.userCoupons[uc.ID] = uc
	s.issued[key] = uc.ID

	copied := *uc
	return &copied, nil
}

func (s *Store) Revoke(_ context.Context, userCouponID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uc, ok := s.userCoupons[userCouponID]
	if !ok {
		return models.ErrUserCouponNotFound
	}
	delete(s.userCoupons, userCouponID)
	delete(s.issued, couponKey{uc.UserID, uc.CouponID})
	if c, ok := s.coupons[uc.CouponID]; ok && c.IssuedQuantity > 0 {
		c.IssuedQuantity--
	}
	return nil
}

func (s *Store) FindUserCoupon(_ context.Context, userID, userCouponID int64) (*models.UserCoupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uc, ok := s.userCoupons[userCouponID]
	if !ok {
		return nil, models.ErrUserCouponNotFound
	}
	if uc.UserID != userID {
		return nil, models.ErrCouponNotOwned
	}
	copied := *uc
	return &copied, nil
}

func (s *Store) FindUserCoupons(_ context.Context, userID int64, opts models.PagingOptions) (models.PagedList[models.UserCoupon], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]models.UserCoupon, 0)
	for _, uc := range s.userCoupons {
		if uc.UserID == userID {
			all = append(all, *uc)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].IssuedAt.Equal(all[j].IssuedAt) {
			return all[i].IssuedAt.After(all[j].IssuedAt)
		}
		return all[i].ID > all[j].ID
	})

	return models.PagedList[models.UserCoupon]{
		Items:      pageOf(all, opts),
		Page:       opts.Page,
		Size:       opts.Size,
		TotalCount: int64(len(all)),
	}, nil
}

func (s *Store) MarkUsed(_ context.Context, userCouponID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uc, ok := s.userCoupons[userCouponID]
	if !ok {
		return models.ErrCouponNotUsable
	}
	return uc.Use(now)
}

func (s *Store) MarkUnused(_ context.Context, userCouponID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uc, ok := s.userCoupons[userCouponID]
	if !ok {
		return models.ErrUserCouponNotFound
	}
	return uc.UndoUsage(now)
}

// --- OrderStore ---

func (s *Store) CreateOrder(_ context.Context, draft models.OrderDraft) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrderID++
	order := &models.Order{
		ID:                 s.nextOrderID,
		UserID:             draft.UserID,
		UserCouponID:       draft.UserCouponID,
		TotalProductsPrice: draft.TotalProductsPrice,
		DiscountedPrice:    draft.DiscountedPrice,
		OrderedAt:          draft.OrderedAt,
	}
	for _, item := range draft.Items {
		s.nextOrderItemID++
		item.ID = s.nextOrderItemID
		order.Items = append(order.Items, item)
	}
	s.orders[order.ID] = order

	copied := *order
	return &copied, nil
}

func (s *Store) CancelOrder(_ context.Context, orderID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return models.ErrOrderNotFound
	}
	if o.CancelledAt == nil {
		o.CancelledAt = &now
	}
	return nil
}

func pageOf[T any](all []T, opts models.PagingOptions) []T {
	start := opts.Offset()
	if start >= len(all) {
		return nil
	}
	end := start + opts.Limit()
	if end > len(all) {
		end = len(all)
	}
	page := make([]T, end-start)
	copy(page, all[start:end])
	return page
}
