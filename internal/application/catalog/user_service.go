package catalog

import (
	"context"
	"errors"

	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/shared"
)

// UserService manages the handlers who move stock
type UserService struct {
	userRepo identity.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser registers a handler. Names are unique.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	user, err := identity.NewUser(req.Name)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByName(ctx, user.Name); err == nil {
		return nil, shared.NewDomainErrorf(shared.CodeAlreadyExists, "User %q already exists", user.Name)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ListUsers lists handlers by name, without the system actor
func (s *UserService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out, nil
}

// EnsureSystemUser returns the actor that automated commits are credited
// to, creating it on first use
func (s *UserService) EnsureSystemUser(ctx context.Context, name string) (*identity.User, error) {
	candidate, err := identity.NewSystemUser(name)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByName(ctx, candidate.Name)
	switch {
	case err == nil:
		if !existing.System {
			existing.System = true
			existing.Touch()
			if err := s.userRepo.Save(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if err := s.userRepo.Save(ctx, candidate); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.userRepo.FindByName(ctx, candidate.Name)
		}
		return nil, err
	}
	return candidate, nil
}
