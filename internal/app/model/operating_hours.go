package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Weekdays are the only keys accepted in OperatingHours.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func IsWeekday(s string) bool {
	for _, d := range Weekdays {
		if s == d {
			return true
		}
	}
	return false
}

// OperatingHours maps a weekday to a free-text hours string, e.g. "10:00-18:00".
type OperatingHours map[string]string

// Validate returns the first key that is not a weekday name.
func (h OperatingHours) Validate() error {
	for day := range h {
		if !IsWeekday(day) {
			return fmt.Errorf("unknown weekday %q", day)
		}
	}
	return nil
}

func (h OperatingHours) Value() (driver.Value, error) {
	if h == nil {
		return nil, nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h *OperatingHours) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*h = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan OperatingHours")
	}
	if len(raw) == 0 || string(raw) == "null" {
		*h = nil
		return nil
	}
	return json.Unmarshal(raw, h)
}

func (OperatingHours) GormDataType() string {
	return "json"
}

func (OperatingHours) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}
