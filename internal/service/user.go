package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/gesa962/Campus-Connect/internal/domain"
)

// UserService handles profile and user administration operations.
type UserService struct {
	users      domain.UserRepository
	events     domain.EventRepository
	bcryptCost int
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, events domain.EventRepository, bcryptCost int) *UserService {
	return &UserService{users: users, events: events, bcryptCost: bcryptCost}
}

// UserPatch carries partial profile updates. Nil fields are left unchanged.
type UserPatch struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Password   *string
	StudentID  *string
	Department *string
}

// GetByID returns a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByUsername returns a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// ListByRole returns all users with the given role.
func (s *UserService) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return s.users.ListByRole(ctx, role)
}

// Update applies a sparse patch to a user's profile. A changed email must
// remain unique; a changed password is rehashed.
func (s *UserService) Update(ctx context.Context, userID int64, patch UserPatch) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Email != nil && *patch.Email != user.Email {
		taken, err := s.users.ExistsByEmail(ctx, *patch.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, domain.ErrDuplicateEmail
		}
		user.Email = *patch.Email
	}
	if patch.Password != nil {
		if len(*patch.Password) < 8 {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if patch.StudentID != nil {
		user.StudentID = *patch.StudentID
	}
	if patch.Department != nil {
		user.Department = *patch.Department
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes a user. Deletion is refused while the user still owns
// events; event participations are removed automatically by the storage
// layer.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}

	created, err := s.events.CountByCreator(ctx, userID)
	if err != nil {
		return fmt.Errorf("count created events: %w", err)
	}
	if created > 0 {
		return fmt.Errorf("%w: user still owns events; delete or transfer them first", domain.ErrConflict)
	}

	return s.users.Delete(ctx, userID)
}
