package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-account-service/internal/domain/user"
	apperrors "user-account-service/pkg/errors"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// UserRepoPG implements the Repository interface using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// Create inserts a new user into the database and returns its generated ID.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := toSchema(u)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("duplicate email on create", zap.String("email", u.Email))
			return 0, apperrors.NewAlreadyExistsError("user", "email already exists")
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return 0, apperrors.NewInternalError("failed to create user", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return toDomain(&model), nil
}

// GetByEmail retrieves a user by email address. It returns nil, nil when no user matches.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, apperrors.NewInternalError("failed to get user by email", err)
	}

	return toDomain(&model), nil
}

// GetByIDAndEmail retrieves the user matching both id and email.
func (r *UserRepoPG) GetByIDAndEmail(ctx context.Context, id int64, email string) (*user.User, error) {
	model, err := r.findByIDAndEmail(r.db.WithContext(ctx), id, email)
	if err != nil {
		return nil, err
	}
	return toDomain(model), nil
}

// MarkVerified sets is_verified for the user with the given email and returns its ID.
// Calling it on an already verified user is a no-op.
func (r *UserRepoPG) MarkVerified(ctx context.Context, email string) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserSchema
		if err := tx.Where("email = ?", email).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFoundError("user", "user not found")
			}
			return apperrors.NewInternalError("failed to load user for verification", err)
		}
		id = model.ID

		if model.IsVerified {
			return nil
		}

		if err := tx.Model(&UserSchema{}).Where("id = ?", model.ID).Update("is_verified", true).Error; err != nil {
			return apperrors.NewInternalError("failed to verify user", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			r.log.Warn("user to verify not found", zap.String("email", email))
		} else {
			r.log.Error("failed to mark user verified", zap.Error(err), zap.String("email", email))
		}
		return 0, err
	}

	r.log.Info("user verified in db", zap.Int64("id", id))
	return id, nil
}

// UpdateProfile overwrites the set fields of p on the user matching id and email
// and returns the updated record.
func (r *UserRepoPG) UpdateProfile(ctx context.Context, id int64, email string, p user.ProfileUpdate) (*user.User, error) {
	if p.Empty() {
		return r.GetByIDAndEmail(ctx, id, email)
	}

	var updated *UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.findByIDAndEmail(tx, id, email); err != nil {
			return err
		}

		if err := tx.Model(&UserSchema{}).Where("id = ? AND email = ?", id, email).Updates(profileColumns(p)).Error; err != nil {
			return apperrors.NewInternalError("failed to update user", err)
		}

		model, err := r.findByIDAndEmail(tx, id, email)
		if err != nil {
			return err
		}
		updated = model
		return nil
	})
	if err != nil {
		if !apperrors.IsNotFound(err) {
			r.log.Error("failed to update user profile in db", zap.Error(err), zap.Int64("id", id))
		}
		return nil, err
	}

	r.log.Info("user profile updated in db", zap.Int64("id", id))
	return toDomain(updated), nil
}

// GetRoleByName returns the role with the given name.
func (r *UserRepoPG) GetRoleByName(ctx context.Context, name string) (*user.Role, error) {
	var model RoleSchema
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("role", fmt.Sprintf("role not found: %s", name))
		}
		r.log.Error("failed to get role from db", zap.Error(err), zap.String("role", name))
		return nil, apperrors.NewInternalError("failed to get role", err)
	}
	return &user.Role{ID: model.ID, Name: model.Name}, nil
}

func (r *UserRepoPG) findByIDAndEmail(db *gorm.DB, id int64, email string) (*UserSchema, error) {
	var model UserSchema
	if err := db.Where("id = ? AND email = ?", id, email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id), zap.String("email", email))
			return nil, apperrors.NewNotFoundError("user", "user not found")
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}
	return &model, nil
}

// isUniqueViolation recognizes duplicate-key errors from postgres and sqlite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
