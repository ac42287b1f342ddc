package model

import "time"

// User is the local mirror of an identity-provider account. Rows are
// created or refreshed by user sync and never deleted here.
type User struct {
	ID          uint      `gorm:"primaryKey;column:user_id" json:"id"`
	FirebaseUID string    `gorm:"column:firebase_uid;type:varchar(128);uniqueIndex;not null" json:"firebase_uid"`
	Email       string    `gorm:"type:varchar(255)" json:"email"`
	Username    string    `gorm:"type:varchar(100)" json:"username"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
