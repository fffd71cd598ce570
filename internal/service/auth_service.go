package service

import (
	"context"
	"errors"
	"time"

	"go-api-template/internal/model"
	"go-api-template/internal/password"
	"go-api-template/internal/token"
	"go-api-template/pkg/apierror"
)

// CredentialStore is the narrow persistence surface the auth flows need.
// The pgx repository satisfies it; tests substitute a fake.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
}

// AuthService orchestrates registration, login, token refresh and profile
// lookup. Every user it returns is password-stripped.
type AuthService struct {
	store CredentialStore
	codec *token.Codec
}

func NewAuthService(store CredentialStore, codec *token.Codec) *AuthService {
	return &AuthService{store: store, codec: codec}
}

// Register creates a new user with a hashed password. A taken email fails
// with a 409 naming the field; a lost race on the unique index surfaces the
// same way through the storage error translation.
func (s *AuthService) Register(ctx context.Context, email string, plaintext string, name string) (model.PublicUser, error) {
	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return model.PublicUser{}, apierror.Conflict("email")
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, err
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return model.PublicUser{}, err
	}

	now := time.Now().UTC()
	created, err := s.store.Create(ctx, model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.PublicUser{}, err
	}

	return created.Public(), nil
}

// Login verifies credentials and issues a token pair. An unknown email and a
// wrong password produce the exact same error; callers cannot tell which
// check failed.
func (s *AuthService) Login(ctx context.Context, email string, plaintext string) (model.LoginResult, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResult{}, apierror.InvalidCredentials()
	}
	if err != nil {
		return model.LoginResult{}, err
	}

	ok, err := password.Verify(plaintext, user.PasswordHash)
	if err != nil {
		return model.LoginResult{}, err
	}
	if !ok {
		return model.LoginResult{}, apierror.InvalidCredentials()
	}

	accessToken, err := s.codec.SignAccess(user.ID)
	if err != nil {
		return model.LoginResult{}, err
	}
	refreshToken, err := s.codec.SignRefresh(user.ID)
	if err != nil {
		return model.LoginResult{}, err
	}

	return model.LoginResult{
		User:         user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens reissues a fresh pair after confirming the user still
// exists. Presented refresh tokens are not tracked; reuse detection is out
// of scope.
func (s *AuthService) RefreshTokens(ctx context.Context, userID int64) (model.TokenPair, error) {
	if _, err := s.store.FindByID(ctx, userID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.TokenPair{}, apierror.Unauthorized()
		}
		return model.TokenPair{}, err
	}

	accessToken, err := s.codec.SignAccess(userID)
	if err != nil {
		return model.TokenPair{}, err
	}
	refreshToken, err := s.codec.SignRefresh(userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Profile returns the password-stripped record for a user id.
func (s *AuthService) Profile(ctx context.Context, userID int64) (model.PublicUser, error) {
	user, err := s.store.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, apierror.NotFound("User not found")
	}
	if err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}
