package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	domain "user-account-service/internal/domain/user"
	apperrors "user-account-service/pkg/errors"
	"user-account-service/pkg/security"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (e.g., PostgreSQL, a cached decorator) to be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)                                                // Create a new user
	GetByID(ctx context.Context, id int64) (*domain.User, error)                                              // Retrieve user by ID
	GetByEmail(ctx context.Context, email string) (*domain.User, error)                                       // Retrieve user by email, nil when absent
	GetByIDAndEmail(ctx context.Context, id int64, email string) (*domain.User, error)                        // Retrieve user by ID and email
	MarkVerified(ctx context.Context, email string) (int64, error)                                            // Set is_verified, idempotent
	UpdateProfile(ctx context.Context, id int64, email string, p domain.ProfileUpdate) (*domain.User, error) // Overwrite profile fields
	GetRoleByName(ctx context.Context, name string) (*domain.Role, error)                                     // Retrieve role by name
}

// Option configures a Usecase.
type Option func(*UserUsecase)

// WithPasswordCost sets the bcrypt cost used for new password hashes.
func WithPasswordCost(cost int) Option {
	return func(uc *UserUsecase) {
		uc.cost = cost
	}
}

// UserUsecase implements the business logic for user account operations.
// It provides a clean separation between the transport layer and data layer.
type UserUsecase struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
	cost     int                 // bcrypt cost

	dummyOnce sync.Once
	dummyHash []byte
}

// New creates a new instance of UserUsecase with the provided repository and logger.
func New(r Repository, log *zap.Logger, opts ...Option) *UserUsecase {
	uc := &UserUsecase{repo: r, log: log, validate: validator.New(), cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
			case "datetime":
				messages = append(messages, fmt.Sprintf("%s must be a date formatted as %s", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return apperrors.NewValidationError("", strings.Join(messages, ", "))
	}
	return apperrors.NewValidationError("", err.Error())
}

// Signup creates a new, unverified account after validating the request and checking email uniqueness.
func (uc *UserUsecase) Signup(ctx context.Context, in SignupRequest) (*domain.User, error) {
	in.Email = security.NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	uc.log.Info("signing up user", zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	existingUser, err := uc.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		uc.log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existingUser != nil {
		uc.log.Warn("email already exists", zap.String("email", in.Email))
		return nil, apperrors.NewAlreadyExistsError("user", "email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		uc.log.Error("failed to hash password", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	u := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
		IsVerified:   false,
	}

	role, err := uc.repo.GetRoleByName(ctx, domain.RoleUser)
	switch {
	case err == nil:
		u.Role = role.Name
		u.RoleID = &role.ID
	case apperrors.IsNotFound(err):
		uc.log.Warn("default role missing, creating user without role", zap.String("role", domain.RoleUser))
	default:
		uc.log.Error("failed to load default role", zap.Error(err))
		return nil, err
	}

	id, err := uc.repo.Create(ctx, u)
	if err != nil {
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	u.ID = id
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now

	return u, nil
}

// Signin checks credentials and returns the matching account. An unknown
// email and a wrong password produce the same AuthenticationError.
func (uc *UserUsecase) Signin(ctx context.Context, in SigninRequest) (*domain.User, error) {
	in.Email = security.NormalizeEmail(in.Email)

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := uc.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		uc.log.Error("failed to load user for signin", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	if u == nil {
		// keep the unknown-email path as slow as a real comparison
		_ = bcrypt.CompareHashAndPassword(uc.dummyPasswordHash(), []byte(in.Password))
		uc.log.Warn("signin failed", zap.String("email", in.Email), zap.String("reason", "unknown email"))
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Warn("signin failed", zap.Int64("id", u.ID), zap.String("reason", "password mismatch"))
		return nil, apperrors.ErrInvalidCredentials
	}

	uc.log.Info("user signed in", zap.Int64("id", u.ID))
	return u, nil
}

// FindUser retrieves a user by ID.
func (uc *UserUsecase) FindUser(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		uc.log.Warn("find user validation failed", zap.Int64("id", id), zap.String("reason", "invalid id"))
		return nil, apperrors.NewValidationError("id", "invalid user id")
	}

	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.log.Warn("failed to find user", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

// VerifyEmail marks the account with the given email as verified. Re-verifying is a no-op.
func (uc *UserUsecase) VerifyEmail(ctx context.Context, email string) error {
	email = security.NormalizeEmail(email)
	if email == "" {
		return apperrors.NewValidationError("email", "email is required")
	}

	id, err := uc.repo.MarkVerified(ctx, email)
	if err != nil {
		uc.log.Error("failed to verify email", zap.String("email", email), zap.Error(err))
		return err
	}

	uc.log.Info("email verified", zap.Int64("id", id))
	return nil
}

// UpdateProfile validates and applies a profile update to the user matching ID and email.
func (uc *UserUsecase) UpdateProfile(ctx context.Context, in UpdateProfileRequest) (*domain.User, error) {
	in.Email = security.NormalizeEmail(in.Email)

	uc.log.Info("updating user profile", zap.Int64("id", in.ID))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	update, err := toProfileUpdate(in)
	if err != nil {
		uc.log.Warn("profile update rejected", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	u, err := uc.repo.UpdateProfile(ctx, in.ID, in.Email, update)
	if err != nil {
		uc.log.Error("failed to update user profile", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	return u, nil
}

// RetrieveUser retrieves the user matching both ID and email.
func (uc *UserUsecase) RetrieveUser(ctx context.Context, id int64, email string) (*domain.User, error) {
	email = security.NormalizeEmail(email)
	if id <= 0 || email == "" {
		return nil, apperrors.NewValidationError("", "id and email are required")
	}

	u, err := uc.repo.GetByIDAndEmail(ctx, id, email)
	if err != nil {
		uc.log.Warn("failed to retrieve user", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (uc *UserUsecase) dummyPasswordHash() []byte {
	uc.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), uc.cost)
		if err != nil {
			uc.log.Error("failed to build dummy hash", zap.Error(err))
			return
		}
		uc.dummyHash = hash
	})
	return uc.dummyHash
}

// toProfileUpdate checks field contents and converts in to a domain update.
func toProfileUpdate(in UpdateProfileRequest) (domain.ProfileUpdate, error) {
	var p domain.ProfileUpdate

	for _, f := range []struct {
		field string
		src   *string
		dst   **string
	}{
		{"firstName", in.FirstName, &p.FirstName},
		{"lastName", in.LastName, &p.LastName},
	} {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return p, apperrors.NewValidationError(f.field, "must not be empty")
		}
		*f.dst = &v
	}

	if in.Gender != nil {
		g, ok := domain.ParseGender(*in.Gender)
		if !ok {
			return p, apperrors.NewValidationError("gender", "must be one of male, female, other")
		}
		p.Gender = &g
	}

	if in.BirthDate != nil {
		d, err := time.Parse(domain.DateLayout, *in.BirthDate)
		if err != nil {
			return p, apperrors.NewValidationError("birthDate", "must be a date formatted as 2006-01-02")
		}
		if d.After(time.Now()) {
			return p, apperrors.NewValidationError("birthDate", "must not be in the future")
		}
		p.BirthDate = &d
	}

	for _, f := range []struct {
		field  string
		src    *string
		dst    **string
		maxLen int
	}{
		{"preferredLanguage", in.PreferredLanguage, &p.PreferredLanguage, 50},
		{"preferredCurrency", in.PreferredCurrency, &p.PreferredCurrency, 10},
		{"address", in.Address, &p.Address, security.MaxAddressLength},
		{"department", in.Department, &p.Department, security.MaxProfileTextLength},
		{"lineManager", in.LineManager, &p.LineManager, security.MaxProfileTextLength},
	} {
		if f.src == nil {
			continue
		}
		v, err := security.ValidateProfileText(*f.src, f.maxLen)
		if err != nil {
			return p, apperrors.NewValidationError(f.field, err.Error())
		}
		*f.dst = &v
	}

	if in.PhoneNumber != nil {
		v, err := security.ValidatePhoneNumber(*in.PhoneNumber)
		if err != nil {
			return p, apperrors.NewValidationError("phoneNumber", err.Error())
		}
		p.PhoneNumber = &v
	}

	return p, nil
}
