package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thriftmap/thriftmap-backend/internal/app/model"
	"github.com/thriftmap/thriftmap-backend/internal/app/repository"
	"github.com/thriftmap/thriftmap-backend/internal/db"
	"github.com/thriftmap/thriftmap-backend/pkg/identity"
	"gorm.io/gorm"
)

func setupUserServiceTest(t *testing.T) (UserService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewUserService(repository.NewUserRepository(testDB)), testDB
}

func TestUserService_SyncUser_Idempotent(t *testing.T) {
	svc, testDB := setupUserServiceTest(t)
	ctx := context.Background()

	input := SyncUserInput{FirebaseUID: "uid-sync", Email: "sync@example.com", Username: "syncer"}

	first, created, err := svc.SyncUser(ctx, input)
	require.NoError(t, err)
	assert.True(t, created)

	input.Username = "renamed"
	second, created, err := svc.SyncUser(ctx, input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "renamed", second.Username)

	var count int64
	require.NoError(t, testDB.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserService_SyncUser_Validation(t *testing.T) {
	svc, _ := setupUserServiceTest(t)

	tests := []struct {
		name  string
		input SyncUserInput
		field string
	}{
		{name: "Missing uid", input: SyncUserInput{Email: "a@example.com"}, field: "firebase_uid"},
		{name: "Bad email", input: SyncUserInput{FirebaseUID: "uid", Email: "nope"}, field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.SyncUser(context.Background(), tt.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestUserService_GetUserByFirebaseUID(t *testing.T) {
	svc, _ := setupUserServiceTest(t)
	ctx := context.Background()

	_, err := svc.GetUserByFirebaseUID(ctx, "uid-unknown")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = svc.SyncUser(ctx, SyncUserInput{FirebaseUID: "uid-known", Username: "known"})
	require.NoError(t, err)

	user, err := svc.GetUserByFirebaseUID(ctx, "uid-known")
	require.NoError(t, err)
	assert.Equal(t, "known", user.Username)
}

func TestUserService_EnsureUser(t *testing.T) {
	svc, testDB := setupUserServiceTest(t)
	ctx := context.Background()

	created, err := svc.EnsureUser(ctx, identity.Identity{UID: "uid-new", Email: "fresh@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", created.Username)

	_, _, err = svc.SyncUser(ctx, SyncUserInput{FirebaseUID: "uid-new", Email: "fresh@example.com", Username: "chosen"})
	require.NoError(t, err)

	// An existing row is returned as stored, not overwritten by token claims.
	again, err := svc.EnsureUser(ctx, identity.Identity{UID: "uid-new", Name: "Token Name"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "chosen", again.Username)

	var count int64
	require.NoError(t, testDB.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
