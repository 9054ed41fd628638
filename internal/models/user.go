package models

import "time"

// User holds a point balance that is only ever changed through atomic
// deduct/credit operations at the store boundary; the balance never goes
// negative.
type User struct {
	ID           int64
	Name         string
	PointBalance int64
	CreatedAt    time.Time
}

// PointChangeType distinguishes point ledger entries.
type PointChangeType string

const (
	PointCharge PointChangeType = "CHARGE"
	PointUse    PointChangeType = "USE"
)

// PointChange records a single balance mutation.
type PointChange struct {
	UserID     int64
	Amount     int64
	Type       PointChangeType
	NewBalance int64
	HappenedAt time.Time
}
