package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrienergy/connect/internal/api/metrics"
	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

// AccountService implements registration and farmer account management.
type AccountService struct {
	users       ports.UserRepository
	phoneRegion string
	hashCost    int
	log         zerolog.Logger
}

func NewAccountService(users ports.UserRepository, phoneRegion string, log zerolog.Logger) *AccountService {
	if phoneRegion == "" {
		phoneRegion = "ZA"
	}
	return &AccountService{users: users, phoneRegion: phoneRegion, hashCost: bcrypt.DefaultCost, log: log}
}

// Register creates a principal with the given role. The role is fixed for
// the lifetime of the account.
func (s *AccountService) Register(ctx context.Context, role domain.Role, in ports.RegisterInput) (*domain.User, error) {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"email":    "email is required",
			"password": "password is required",
		}}
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      role,
		Version:   1,
	}

	if role == domain.RoleFarmer {
		phone, err := s.normalizePhone(in.PhoneNumber)
		if err != nil {
			return nil, err
		}
		user.PhoneNumber = phone
		user.Location = strings.TrimSpace(in.Location)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(role)).Inc()
	metrics.EntityWritesTotal.WithLabelValues("account", "create").Inc()
	s.log.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("account registered")

	return user, nil
}

func (s *AccountService) ListFarmers(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleFarmer)
}

// GetFarmer returns a farmer account. Farmers may only read their own.
func (s *AccountService) GetFarmer(ctx context.Context, actor ports.Actor, id string) (*domain.User, error) {
	if actor.Is(domain.RoleFarmer) && actor.UserID != id {
		return nil, domain.ErrForbidden
	}
	return s.findFarmer(ctx, id)
}

func (s *AccountService) UpdateFarmer(ctx context.Context, id string, in ports.UpdateFarmerInput) (*domain.User, error) {
	user, err := s.findFarmer(ctx, id)
	if err != nil {
		return nil, err
	}

	phone, err := s.normalizePhone(in.PhoneNumber)
	if err != nil {
		return nil, err
	}
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Location = strings.TrimSpace(in.Location)
	user.PhoneNumber = phone
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user, in.Version); err != nil {
		return nil, err
	}

	metrics.EntityWritesTotal.WithLabelValues("account", "update").Inc()
	return s.users.FindByID(ctx, id)
}

// DeleteFarmer removes the farmer and all of their products.
func (s *AccountService) DeleteFarmer(ctx context.Context, id string) error {
	if _, err := s.findFarmer(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	metrics.EntityWritesTotal.WithLabelValues("account", "delete").Inc()
	s.log.Info().Str("user_id", id).Msg("farmer deleted")
	return nil
}

func (s *AccountService) Me(ctx context.Context, actor ports.Actor) (*domain.User, error) {
	return s.users.FindByID(ctx, actor.UserID)
}

func (s *AccountService) findFarmer(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidID
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleFarmer {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// normalizePhone parses the number in the configured region and returns it
// in E.164 form.
func (s *AccountService) normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.NewValidationError("phoneNumber", "phoneNumber is required")
	}
	num, err := phonenumbers.Parse(raw, s.phoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", domain.NewValidationError("phoneNumber", "phoneNumber must be a valid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
