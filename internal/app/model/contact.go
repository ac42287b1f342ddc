package model

import "time"

type Contact struct {
	ID            uint      `gorm:"primaryKey;column:tsc_id" json:"id"`
	StoreID       uint      `gorm:"column:ts_id;uniqueIndex;not null" json:"store_id"`
	PhoneNumber   *string   `gorm:"type:varchar(50)" json:"phone_number"`
	InstagramLink *string   `gorm:"type:text" json:"instagram_link"`
	FacebookLink  *string   `gorm:"type:text" json:"facebook_link"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "thrift_stores_contacts"
}
