package service

import (
	"context"

	"crosspay_back/models"
	"crosspay_back/pkg/apperr"
	"crosspay_back/pkg/repository"
)

type AuthService struct {
	repos repository.Authorization
}

func NewAuthService(repos repository.Authorization) *AuthService {
	return &AuthService{
		repos: repos,
	}
}

// Login регистрирует пользователя при первом входе
func (s *AuthService) Login(ctx context.Context, user models.User) (models.User, error) {
	existing, err := s.repos.GetUserByID(ctx, user.ID)
	if err == nil {
		return existing, nil
	}
	if !apperr.IsKind(err, apperr.NotFound) {
		return models.User{}, err
	}
	return s.repos.CreateUser(ctx, user)
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (models.User, error) {
	return s.repos.GetUserByID(ctx, id)
}
