package user

import (
	"context"

	domain "user-account-service/internal/domain/user"
)

// Usecase defines the interface for user account operations.
type Usecase interface {
	Signup(ctx context.Context, in SignupRequest) (*domain.User, error)
	Signin(ctx context.Context, in SigninRequest) (*domain.User, error)
	FindUser(ctx context.Context, id int64) (*domain.User, error)
	VerifyEmail(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, in UpdateProfileRequest) (*domain.User, error)
	RetrieveUser(ctx context.Context, id int64, email string) (*domain.User, error)
}
