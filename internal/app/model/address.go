package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Address is the single physical location of a Store.
type Address struct {
	ID           uint      `gorm:"primaryKey;column:tsa_id" json:"id"`
	StoreID      uint      `gorm:"column:ts_id;uniqueIndex;not null" json:"store_id"`
	UnitNumber   *string   `gorm:"type:varchar(50)" json:"unit_number"`
	StreetNumber *string   `gorm:"type:varchar(50)" json:"street_number"`
	AddressLine1 string    `gorm:"column:address_line_1;type:varchar(255);not null" json:"address_line_1"`
	AddressLine2 *string   `gorm:"column:address_line_2;type:varchar(255)" json:"address_line_2"`
	City         string    `gorm:"type:varchar(100);not null;index" json:"city"`
	State        string    `gorm:"type:varchar(100);not null" json:"state"`
	PostalCode   *string   `gorm:"type:varchar(20)" json:"postal_code"`
	FullAddress  string    `gorm:"type:text;not null" json:"full_address"`
	Latitude     float64   `gorm:"type:numeric(10,8);not null" json:"latitude"`
	Longitude    float64   `gorm:"type:numeric(11,8);not null" json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Address) TableName() string {
	return "thrift_stores_address"
}

// BeforeSave keeps FullAddress derived from the components on every insert and save.
func (a *Address) BeforeSave(tx *gorm.DB) error {
	a.FullAddress = a.ComposeFullAddress()
	return nil
}

// ComposeFullAddress renders the components as
// "unit, street_number line1, line2, city, postal_code state", skipping blanks.
func (a *Address) ComposeFullAddress() string {
	parts := []string{
		deref(a.UnitNumber),
		joinNonEmpty(" ", deref(a.StreetNumber), a.AddressLine1),
		deref(a.AddressLine2),
		a.City,
		joinNonEmpty(" ", deref(a.PostalCode), a.State),
	}
	return joinNonEmpty(", ", parts...)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
