package service

import (
	"context"
	"errors"
	"time"

	"go-api-template/internal/model"
	"go-api-template/pkg/apierror"
)

// UserStore is the persistence surface for the generic user CRUD endpoints.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	Update(ctx context.Context, u model.User) (model.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.PublicUser, error)
}

type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]model.PublicUser, error) {
	return s.store.List(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (model.PublicUser, error) {
	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, apierror.NotFound("User not found")
	}
	if err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

// UpdateUser patches name and email. The password is never updatable through
// this path.
func (s *UserService) UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) (model.PublicUser, error) {
	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, apierror.NotFound("User not found")
	}
	if err != nil {
		return model.PublicUser{}, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.store.Update(ctx, user)
	if err != nil {
		return model.PublicUser{}, err
	}

	return updated.Public(), nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) (model.PublicUser, error) {
	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, apierror.NotFound("User not found")
	}
	if err != nil {
		return model.PublicUser{}, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.PublicUser{}, apierror.NotFound("User not found")
		}
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}
