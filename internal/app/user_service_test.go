package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragineer/internal/model"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUpdateUser(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.Create(&model.User{ID: "u1", Name: "Old", Role: model.RoleViewer, IsActive: true}))
	svc := NewUserService(users)

	updated, err := svc.Update("u1", UpdateUserInput{
		Name:     strPtr("New Name"),
		Role:     strPtr(model.RoleTechnician),
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, model.RoleTechnician, updated.Role)
	assert.False(t, updated.IsActive)
}

func TestUpdateUserInvalidRole(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.Create(&model.User{ID: "u1", Name: "A", Role: model.RoleViewer}))
	svc := NewUserService(users)

	_, err := svc.Update("u1", UpdateUserInput{Role: strPtr("root")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateUserNotFound(t *testing.T) {
	svc := NewUserService(newFakeUserStore())
	_, err := svc.Update("ghost", UpdateUserInput{Name: strPtr("X")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.Create(&model.User{ID: "u1"}))
	require.NoError(t, users.Create(&model.User{ID: "admin"}))
	svc := NewUserService(users)

	require.NoError(t, svc.Delete("admin", "u1"))

	got, err := users.GetByID("u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteUserSelf(t *testing.T) {
	users := newFakeUserStore()
	require.NoError(t, users.Create(&model.User{ID: "admin"}))
	svc := NewUserService(users)

	err := svc.Delete("admin", "admin")
	assert.ErrorIs(t, err, ErrSelfDelete)
}

func TestDeleteUserNotFound(t *testing.T) {
	svc := NewUserService(newFakeUserStore())
	err := svc.Delete("admin", "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
