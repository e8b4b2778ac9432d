package cached

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-account-service/internal/adapter/cache"
	domain "user-account-service/internal/domain/user"
	"user-account-service/internal/usecase/user"
	apperrors "user-account-service/pkg/errors"
)

// CachedUserRepository decorates a user.Repository with a read-through profile cache.
//
// Profile reads (by id, or by id and email) are served from the cache. Lookups by
// email alone go to the database because signin needs the password hash, which
// the cache never stores. Writes invalidate the cached entry after they commit.
type CachedUserRepository struct {
	user.Repository
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group
}

// NewCachedUserRepository wraps next; a nil cache makes every call a pass-through.
func NewCachedUserRepository(next user.Repository, c cache.UserCache, log *zap.Logger) user.Repository {
	return &CachedUserRepository{
		Repository: next,
		cache:      c,
		log:        log,
	}
}

// GetByID serves the profile from cache, loading it once per key on a miss.
func (r *CachedUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u := r.lookup(ctx, id); u != nil {
		return u, nil
	}

	v, err, shared := r.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		// a concurrent loader may have filled the entry while we queued
		if u := r.lookup(ctx, id); u != nil {
			return u, nil
		}

		u, err := r.Repository.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		r.store(ctx, u)
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u := v.(*domain.User)
	if shared {
		// callers must not share one mutable entity
		clone := *u
		return &clone, nil
	}
	return u, nil
}

// GetByIDAndEmail resolves the user by id and then requires the email to match,
// mirroring the database lookup's not-found result on mismatch.
func (r *CachedUserRepository) GetByIDAndEmail(ctx context.Context, id int64, email string) (*domain.User, error) {
	if r.cache == nil {
		return r.Repository.GetByIDAndEmail(ctx, id, email)
	}

	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Email != email {
		return nil, apperrors.NewNotFoundError("user", "user not found")
	}
	return u, nil
}

// MarkVerified flips the flag in the database and drops the cached profile.
func (r *CachedUserRepository) MarkVerified(ctx context.Context, email string) (int64, error) {
	id, err := r.Repository.MarkVerified(ctx, email)
	if err != nil {
		return 0, err
	}

	r.invalidate(ctx, id, "verify")
	return id, nil
}

// UpdateProfile writes through to the database and drops the cached profile.
func (r *CachedUserRepository) UpdateProfile(ctx context.Context, id int64, email string, p domain.ProfileUpdate) (*domain.User, error) {
	u, err := r.Repository.UpdateProfile(ctx, id, email, p)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, id, "update")
	return u, nil
}

func (r *CachedUserRepository) lookup(ctx context.Context, id int64) *domain.User {
	if r.cache == nil {
		return nil
	}

	u, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache read failed, using database", zap.Int64("id", id), zap.Error(err))
		return nil
	}
	if u != nil {
		r.log.Debug("profile cache hit", zap.Int64("id", id))
	}
	return u
}

func (r *CachedUserRepository) store(ctx context.Context, u *domain.User) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, u); err != nil {
		r.log.Warn("failed to cache profile", zap.Int64("id", u.ID), zap.Error(err))
	}
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id int64, op string) {
	if r.cache == nil || id <= 0 {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate profile cache",
			zap.String("op", op),
			zap.Int64("id", id),
			zap.Error(err),
		)
	}
}
