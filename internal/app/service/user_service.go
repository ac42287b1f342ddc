package service

import (
	"context"
	"errors"
	"strings"

	"github.com/thriftmap/thriftmap-backend/internal/app/model"
	"github.com/thriftmap/thriftmap-backend/internal/app/repository"
	"github.com/thriftmap/thriftmap-backend/pkg/identity"
	"github.com/thriftmap/thriftmap-backend/pkg/logger"
	"gorm.io/gorm"
)

const maxUsernameLength = 100

type SyncUserInput struct {
	FirebaseUID string
	Email       string
	Username    string
}

type UserService interface {
	SyncUser(ctx context.Context, input SyncUserInput) (*model.User, bool, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*model.User, error)
	EnsureUser(ctx context.Context, id identity.Identity) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// SyncUser upserts the local row for a provider account. The bool reports
// whether the row was newly created.
func (s *userService) SyncUser(ctx context.Context, input SyncUserInput) (*model.User, bool, error) {
	user := &model.User{
		FirebaseUID: strings.TrimSpace(input.FirebaseUID),
		Email:       strings.TrimSpace(input.Email),
		Username:    strings.TrimSpace(input.Username),
	}

	errs := fieldErrors{}
	if user.FirebaseUID == "" {
		errs.add("firebase_uid", "is required")
	}
	errs.checkEmail("email", user.Email)
	if len(user.Username) > maxUsernameLength {
		errs.add("username", "must be at most 100 characters")
	}
	if err := errs.err(); err != nil {
		return nil, false, err
	}

	created, err := s.userRepo.Upsert(ctx, user)
	if err != nil {
		logger.Error("Failed to sync user", err, map[string]interface{}{
			"firebase_uid": user.FirebaseUID,
		})
		return nil, false, err
	}

	logger.Info("User synced", map[string]interface{}{
		"user_id":      user.ID,
		"firebase_uid": user.FirebaseUID,
		"created":      created,
	})
	return user, created, nil
}

func (s *userService) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*model.User, error) {
	uid := strings.TrimSpace(firebaseUID)
	if uid == "" {
		return nil, &ValidationError{Fields: map[string]string{"uid": "is required"}}
	}

	user, err := s.userRepo.FindByFirebaseUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// EnsureUser resolves a verified identity to its local row, creating it from
// the token claims when the client never called sync.
func (s *userService) EnsureUser(ctx context.Context, id identity.Identity) (*model.User, error) {
	user, err := s.GetUserByFirebaseUID(ctx, id.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	username := id.Name
	if username == "" {
		username, _, _ = strings.Cut(id.Email, "@")
	}
	if len(username) > maxUsernameLength {
		username = username[:maxUsernameLength]
	}

	user, _, err = s.SyncUser(ctx, SyncUserInput{
		FirebaseUID: id.UID,
		Email:       id.Email,
		Username:    username,
	})
	return user, err
}
