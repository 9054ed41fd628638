package service

import (
	"context"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.FindUserByID(ctx, userID)
}
