package models

import "time"

// Product stock is reduced and restored via conditional updates at the store
// boundary; stock may reach zero but never goes negative.
type Product struct {
	ID        int64
	Name      string
	UnitPrice int64
	Stock     int
	CreatedAt time.Time
}

// ProductSaleSummary is the read model behind the popular-products listing:
// units of one product sold inside the search window.
type ProductSaleSummary struct {
	ProductID   int64
	ProductName string
	UnitPrice   int64
	SoldCount   int64
}
