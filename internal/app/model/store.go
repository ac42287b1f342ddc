package model

import (
	"time"

	"gorm.io/gorm"
)

// Store is a thrift store listing. It exclusively owns its Address and Contact.
type Store struct {
	ID             uint           `gorm:"primaryKey;column:ts_id" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Description    *string        `gorm:"type:text" json:"description"`
	PriceRange     *int           `gorm:"check:price_range BETWEEN 1 AND 5" json:"price_range"`
	OperatingHours OperatingHours `json:"operating_hours"`
	GoogleMapsLink *string        `gorm:"type:text" json:"google_maps_link"`

	// Rating aggregates are only written by the atomic rate statement.
	AverageRating float64 `gorm:"type:numeric(3,2);not null;default:0" json:"average_rating"`
	TotalRatings  int     `gorm:"not null;default:0" json:"total_ratings"`
	RatingSum     int64   `gorm:"not null;default:0" json:"-"`

	AddedBy         *uint   `gorm:"column:added_by;index" json:"added_by"`
	Contributor     *User   `gorm:"foreignKey:AddedBy;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	AddedByUsername *string `gorm:"-" json:"added_by_username"`

	Address *Address `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"address"`
	Contact *Contact `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"contact"`

	// Set by near-me listings only.
	DistanceKm *float64 `gorm:"-" json:"distance_km,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Store) TableName() string {
	return "thrift_stores"
}

// AfterFind exposes the contributor's username once the Contributor
// association has been preloaded.
func (s *Store) AfterFind(tx *gorm.DB) error {
	if s.Contributor != nil && s.Contributor.Username != "" {
		username := s.Contributor.Username
		s.AddedByUsername = &username
	}
	return nil
}

const (
	MinRating     = 1
	MaxRating     = 5
	MinPriceRange = 1
	MaxPriceRange = 5
)
