package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/pkg/kv"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// UserKey is user:<email-lowercased>.
func UserKey(email string) string {
	return "user:" + strings.ToLower(strings.TrimSpace(email))
}

// UserRepository stores one JSON document per user.
type UserRepository struct {
	store kv.Store
}

func NewUserRepository(store kv.Store) *UserRepository {
	return &UserRepository{store: store}
}

// FindByEmail looks up a user by email, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	user, _, err := r.find(ctx, email)
	return user, err
}

func (r *UserRepository) find(ctx context.Context, email string) (models.User, int64, error) {
	var user models.User
	key := UserKey(email)

	raw, version, err := r.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return user, 0, ErrUserNotFound
	}
	if err != nil {
		return user, 0, fmt.Errorf("kv: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return user, 0, fmt.Errorf("kv: decode %s: %w", key, err)
	}
	return user, version, nil
}

// Create stores a new user; ErrUserExists if the email is taken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	key := UserKey(user.Email)
	if _, err := r.store.CompareAndSet(ctx, key, raw, 0); err != nil {
		if errors.Is(err, kv.ErrVersionMismatch) {
			return ErrUserExists
		}
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

// Update applies fn to the stored user and writes it back conditionally.
func (r *UserRepository) Update(ctx context.Context, email string, fn func(*models.User)) (models.User, error) {
	user, version, err := r.find(ctx, email)
	if err != nil {
		return user, err
	}
	fn(&user)

	raw, err := json.Marshal(user)
	if err != nil {
		return user, err
	}
	if _, err := r.store.CompareAndSet(ctx, UserKey(email), raw, version); err != nil {
		if errors.Is(err, kv.ErrVersionMismatch) {
			return user, ErrConflict
		}
		return user, fmt.Errorf("kv: set %s: %w", UserKey(email), err)
	}
	return user, nil
}
