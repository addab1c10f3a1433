package models

import (
	"testing"

	"github.com/raksha-app/raksha/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateAndFindUser(t *testing.T) {
	InitializeTestDb()

	user := &User{
		Name:         "Asha",
		PhoneNumber:  "+919876543210",
		Password:     "super-secret",
		FatherNumber: "+919811111111",
	}
	require.Nil(t, CreateUser(user))

	found, err := FindUserBy("phone_number", "+919876543210")
	require.Nil(t, err)
	assert.Equal(t, "Asha", found.Name)
	assert.Equal(t, "+919811111111", found.FatherNumber)
	assert.Empty(t, found.Password, "lookups should never return the password hash")
}

func TestCreateUserHashesPassword(t *testing.T) {
	InitializeTestDb()

	user := &User{Name: "Asha", PhoneNumber: "+919876543210", Password: "super-secret"}
	require.Nil(t, CreateUser(user))

	hash, err := FindUserPassword("+919876543210")
	require.Nil(t, err)
	assert.NotEqual(t, "super-secret", hash)
	assert.True(t, auth.CheckPasswordHash("super-secret", hash))
	assert.False(t, auth.CheckPasswordHash("wrong-password", hash))
}

func TestCreateUserRejectsDuplicatePhoneNumber(t *testing.T) {
	InitializeTestDb()

	require.Nil(t, CreateUser(&User{Name: "Asha", PhoneNumber: "+919876543210", Password: "super-secret"}))

	err := CreateUser(&User{Name: "Impostor", PhoneNumber: "+919876543210", Password: "other-secret"})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint")
}

func TestDeleteUser(t *testing.T) {
	InitializeTestDb()

	user := &User{Name: "Asha", PhoneNumber: "+919876543210", Password: "super-secret"}
	require.Nil(t, CreateUser(user))

	require.Nil(t, DeleteUser(user.ID))

	_, err := FindUserBy("phone_number", "+919876543210")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAtLeastOneUserExists(t *testing.T) {
	InitializeTestDb()

	exists, err := AtLeastOneUserExists()
	require.Nil(t, err)
	assert.False(t, exists)

	require.Nil(t, CreateUser(&User{Name: "Asha", PhoneNumber: "+919876543210", Password: "super-secret"}))

	exists, err = AtLeastOneUserExists()
	require.Nil(t, err)
	assert.True(t, exists)
}
