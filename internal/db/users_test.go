package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	// 1. Create
	name := "Test User"
	email := "test-" + uuid.New().String() + "@example.com"
	phone := "555-0100"
	id, err := db.CreateUser(ctx, name, email, phone)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	// 2. Get
	u, err := db.GetUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, name, u.Name)
	assert.Equal(t, email, u.Email)
	assert.Equal(t, phone, u.Phone)
	assert.False(t, u.PasswordSet)

	// 3. Update
	u.Name = "Updated Name"
	err = db.UpdateUser(ctx, u)
	require.NoError(t, err)

	u2, err := db.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", u2.Name)

	// 4. Delete
	err = db.DeleteUser(ctx, id)
	require.NoError(t, err)

	u3, err := db.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, u3)
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	email := "case-" + uuid.New().String() + "@example.com"
	id, err := db.CreateUser(ctx, "Case Tester", email, "")
	require.NoError(t, err)
	defer db.DeleteUser(ctx, id) // Cleanup

	u, err := db.GetUserByEmail(ctx, "CASE-"+email[5:])
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id, u.ID)

	missing, err := db.GetUserByEmail(ctx, "nobody-"+uuid.New().String()+"@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCheckEmailExists(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	email := "exists-" + uuid.New().String() + "@example.com"

	exists, err := db.CheckEmailExists(ctx, email)
	require.NoError(t, err)
	assert.False(t, exists)

	id, err := db.CreateUser(ctx, "Exists Tester", email, "")
	require.NoError(t, err)
	defer db.DeleteUser(ctx, id) // Cleanup

	exists, err = db.CheckEmailExists(ctx, email)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdatePassword(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	id, err := db.CreateUser(ctx, "Pw Tester", "pw-"+uuid.New().String()+"@example.com", "")
	require.NoError(t, err)
	defer db.DeleteUser(ctx, id) // Cleanup

	err = db.UpdatePassword(ctx, id, "$2a$10$fakehashfortesting")
	require.NoError(t, err)

	u, err := db.GetUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.PasswordSet)
	assert.Equal(t, "$2a$10$fakehashfortesting", u.PasswordHash)

	// Unknown user is an error, not a silent no-op
	err = db.UpdatePassword(ctx, uuid.New(), "$2a$10$another")
	assert.Error(t, err)
}
