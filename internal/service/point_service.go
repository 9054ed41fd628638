package service

import (
	"context"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

// PointService exposes the point balance operations. Balance checks and
// mutations happen atomically inside the user store; this layer only
// validates the request shape.
type PointService struct {
	users UserStore
	now   func() time.Time
}

func NewPointService(users UserStore) *PointService {
	return &PointService{users: users, now: time.Now}
}

func (s *PointService) Balance(ctx context.Context, userID int64) (int64, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.PointBalance, nil
}

func (s *PointService) Charge(ctx context.Context, userID, amount int64) (*models.PointChange, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidPointAmount
	}
	balance, err := s.users.CreditPoints(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	return &models.PointChange{
		UserID:     userID,
		Amount:     amount,
		Type:       models.PointCharge,
		NewBalance: balance,
		HappenedAt: s.now(),
	}, nil
}

func (s *PointService) Use(ctx context.Context, userID, amount int64) (*models.PointChange, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidPointAmount
	}
	balance, err := s.users.DeductPoints(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	return &models.PointChange{
		UserID:     userID,
		Amount:     amount,
		Type:       models.PointUse,
		NewBalance: balance,
		HappenedAt: s.now(),
	}, nil
}
