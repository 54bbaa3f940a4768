package app

import (
	"errors"
	"strings"

	"ragineer/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSelfDelete   = errors.New("cannot delete yourself")
)

// UserService covers admin-side account management.
type UserService struct {
	users UserStore
}

type UpdateUserInput struct {
	Name     *string
	Role     *string
	IsActive *bool
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List() ([]model.User, error) {
	return s.users.List()
}

func (s *UserService) Update(userID string, input UpdateUserInput) (*model.User, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		user.Name = name
	}
	if input.Role != nil {
		if !model.ValidRole(*input.Role) {
			return nil, ErrInvalidInput
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(requesterID, userID string) error {
	if requesterID == "" || userID == "" {
		return ErrInvalidInput
	}
	if requesterID == userID {
		return ErrSelfDelete
	}

	deleted, err := s.users.Delete(userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}
