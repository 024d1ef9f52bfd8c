package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/agrienergy/connect/internal/core/domain"
)

var errVersionConflict = domain.ErrVersionConflict

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID              string    `bun:"id,pk"`
	Email           string    `bun:"email,notnull"`
	NormalizedEmail string    `bun:"normalized_email,notnull"`
	FirstName       string    `bun:"first_name"`
	LastName        string    `bun:"last_name"`
	PhoneNumber     string    `bun:"phone_number"`
	Location        string    `bun:"location"`
	PasswordHash    string    `bun:"password_hash,notnull"`
	Role            string    `bun:"role"`
	Version         int64     `bun:"version"`
	CreatedAt       time.Time `bun:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at"`
}

// UserRepository implements ports.UserRepository on SQLite.
type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	m := fromUser(user)
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "u.normalized_email = ?", domain.NormalizeEmail(email))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "u.id = ?", id)
}

func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	var models []userModel
	err := r.db.NewSelect().
		Model(&models).
		Where("u.role = ?", string(role)).
		OrderExpr("u.last_name ASC, u.first_name ASC, u.email ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]*domain.User, len(models))
	for i := range models {
		users[i] = models[i].toUser()
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User, expectedVersion int64) error {
	q := r.db.NewUpdate().
		Table("users").
		Set("first_name = ?", user.FirstName).
		Set("last_name = ?", user.LastName).
		Set("phone_number = ?", user.PhoneNumber).
		Set("location = ?", user.Location).
		Set("updated_at = ?", user.UpdatedAt.UTC()).
		Set("version = version + 1").
		Where("id = ?", user.ID)
	if expectedVersion != 0 {
		q = q.Where("version = ?", expectedVersion)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return versionMiss(ctx, r.db, "users", user.ID, domain.ErrUserNotFound)
	}
	return nil
}

// Delete removes the user; the products foreign key cascades.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*userModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	var m userModel
	if err := r.db.NewSelect().Model(&m).Where(where, arg).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return m.toUser(), nil
}

func fromUser(u *domain.User) *userModel {
	return &userModel{
		ID:              u.ID,
		Email:           u.Email,
		NormalizedEmail: domain.NormalizeEmail(u.Email),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		PhoneNumber:     u.PhoneNumber,
		Location:        u.Location,
		PasswordHash:    u.PasswordHash,
		Role:            string(u.Role),
		Version:         u.Version,
		CreatedAt:       u.CreatedAt.UTC(),
		UpdatedAt:       u.UpdatedAt.UTC(),
	}
}

// toUser keeps the stored role verbatim; login rejects unusable roles.
func (m *userModel) toUser() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		PhoneNumber:  m.PhoneNumber,
		Location:     m.Location,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		Version:      m.Version,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}
