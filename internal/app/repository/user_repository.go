package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/thriftmap/thriftmap-backend/internal/app/model"
	"github.com/thriftmap/thriftmap-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) (created bool, err error)
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Upsert inserts the user or refreshes email and username of the row with
// the same firebase_uid. user is reloaded from the stored row.
func (r *userRepository) Upsert(ctx context.Context, user *model.User) (bool, error) {
	logger.Debug("Upserting user in database", map[string]interface{}{
		"firebase_uid": user.FirebaseUID,
	})

	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.User{}).
			Where("firebase_uid = ?", user.FirebaseUID).
			Count(&existing).Error; err != nil {
			return errors.Wrap(err, "count user")
		}
		created = existing == 0

		user.UpdatedAt = time.Now()
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "firebase_uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "username", "updated_at"}),
		}).Create(user).Error; err != nil {
			return errors.Wrap(err, "upsert user")
		}

		// The insert id is not reliable after a conflict update.
		var stored model.User
		if err := tx.Where("firebase_uid = ?", user.FirebaseUID).First(&stored).Error; err != nil {
			return errors.Wrap(err, "reload user")
		}
		*user = stored
		return nil
	})
	if err != nil {
		logger.Error("Failed to upsert user in database", err, map[string]interface{}{
			"firebase_uid": user.FirebaseUID,
		})
		return false, err
	}

	logger.Debug("User upserted in database", map[string]interface{}{
		"user_id":      user.ID,
		"firebase_uid": user.FirebaseUID,
		"created":      created,
	})
	return created, nil
}

func (r *userRepository) FindByFirebaseUID(ctx context.Context, firebaseUID string) (*model.User, error) {
	logger.Debug("Finding user by firebase uid in database", map[string]interface{}{
		"firebase_uid": firebaseUID,
	})

	var user model.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find user by firebase uid in database", err, map[string]interface{}{
				"firebase_uid": firebaseUID,
			})
		}
		return nil, err
	}

	logger.Debug("User found by firebase uid in database", map[string]interface{}{
		"user_id": user.ID,
	})
	return &user, nil
}
