// Package importer loads store listings from spreadsheets and YAML files so
// they can be created through the store service.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/thriftmap/thriftmap-backend/internal/app/model"
	"github.com/thriftmap/thriftmap-backend/internal/app/service"
	"github.com/thriftmap/thriftmap-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Skip records a source row that could not be turned into a store.
type Skip struct {
	Line   int
	Reason string
}

type Result struct {
	Stores  []service.CreateStoreInput
	Skipped []Skip
}

type Summary struct {
	Created  int
	Rejected int
}

// ReadFile picks the reader from the file extension.
func ReadFile(path string) (*Result, error) {
	var read func(io.Reader) (*Result, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		read = ReadXLSX
	case ".yaml", ".yml":
		read = ReadYAML
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return read(f)
}

// ReadXLSX reads the first sheet. The header row names the columns; weekday
// columns (monday..sunday) become operating hours.
func ReadXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("no data found in XLSX file")
	}

	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"name", "address_line_1", "city", "state", "latitude", "longitude"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	result := &Result{}
	seen := make(map[string]bool)
	for i, row := range rows[1:] {
		line := i + 2
		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		in, reason := storeFromCells(cell)
		if reason == "" {
			key := dedupKey(in)
			if seen[key] {
				reason = "duplicate row"
			}
			seen[key] = true
		}
		if reason != "" {
			result.Skipped = append(result.Skipped, Skip{Line: line, Reason: reason})
			continue
		}
		result.Stores = append(result.Stores, in)
	}
	return result, nil
}

func storeFromCells(cell func(string) string) (service.CreateStoreInput, string) {
	in := service.CreateStoreInput{
		Name:           cell("name"),
		Description:    optional(cell("description")),
		GoogleMapsLink: optional(cell("google_maps_link")),
		Address: service.AddressInput{
			UnitNumber:   optional(cell("unit_number")),
			StreetNumber: optional(cell("street_number")),
			AddressLine1: cell("address_line_1"),
			AddressLine2: optional(cell("address_line_2")),
			City:         cell("city"),
			State:        cell("state"),
			PostalCode:   optional(cell("postal_code")),
		},
	}
	if in.Name == "" {
		return in, "missing name"
	}

	if raw := cell("price_range"); raw != "" {
		price, err := strconv.Atoi(raw)
		if err != nil {
			return in, "invalid price_range"
		}
		in.PriceRange = &price
	}

	lat, errLat := strconv.ParseFloat(cell("latitude"), 64)
	lng, errLng := strconv.ParseFloat(cell("longitude"), 64)
	if errLat != nil || errLng != nil {
		return in, "invalid coordinates"
	}
	in.Address.Latitude = &lat
	in.Address.Longitude = &lng

	for _, day := range model.Weekdays {
		if hours := cell(day); hours != "" {
			if in.OperatingHours == nil {
				in.OperatingHours = model.OperatingHours{}
			}
			in.OperatingHours[day] = hours
		}
	}

	contact := service.ContactInput{
		PhoneNumber:   optional(cell("phone_number")),
		InstagramLink: optional(cell("instagram_link")),
		FacebookLink:  optional(cell("facebook_link")),
	}
	if contact.PhoneNumber != nil || contact.InstagramLink != nil || contact.FacebookLink != nil {
		in.Contact = &contact
	}
	return in, ""
}

type yamlFile struct {
	Stores []yamlStore `yaml:"stores"`
}

type yamlStore struct {
	Name           string               `yaml:"name"`
	Description    *string              `yaml:"description"`
	PriceRange     *int                 `yaml:"price_range"`
	OperatingHours model.OperatingHours `yaml:"operating_hours"`
	GoogleMapsLink *string              `yaml:"google_maps_link"`
	Address        struct {
		UnitNumber   *string  `yaml:"unit_number"`
		StreetNumber *string  `yaml:"street_number"`
		AddressLine1 string   `yaml:"address_line_1"`
		AddressLine2 *string  `yaml:"address_line_2"`
		City         string   `yaml:"city"`
		State        string   `yaml:"state"`
		PostalCode   *string  `yaml:"postal_code"`
		Latitude     *float64 `yaml:"latitude"`
		Longitude    *float64 `yaml:"longitude"`
	} `yaml:"address"`
	Contact *struct {
		PhoneNumber   *string `yaml:"phone_number"`
		InstagramLink *string `yaml:"instagram_link"`
		FacebookLink  *string `yaml:"facebook_link"`
	} `yaml:"contact"`
}

// ReadYAML reads a document of the form {stores: [...]} using the same field
// names as the HTTP API.
func ReadYAML(r io.Reader) (*Result, error) {
	var doc yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	result := &Result{}
	seen := make(map[string]bool)
	for i, s := range doc.Stores {
		in := service.CreateStoreInput{
			Name:           s.Name,
			Description:    s.Description,
			PriceRange:     s.PriceRange,
			OperatingHours: s.OperatingHours,
			GoogleMapsLink: s.GoogleMapsLink,
			Address: service.AddressInput{
				UnitNumber:   s.Address.UnitNumber,
				StreetNumber: s.Address.StreetNumber,
				AddressLine1: s.Address.AddressLine1,
				AddressLine2: s.Address.AddressLine2,
				City:         s.Address.City,
				State:        s.Address.State,
				PostalCode:   s.Address.PostalCode,
				Latitude:     s.Address.Latitude,
				Longitude:    s.Address.Longitude,
			},
		}
		if c := s.Contact; c != nil {
			in.Contact = &service.ContactInput{
				PhoneNumber:   c.PhoneNumber,
				InstagramLink: c.InstagramLink,
				FacebookLink:  c.FacebookLink,
			}
		}

		key := dedupKey(in)
		if seen[key] {
			result.Skipped = append(result.Skipped, Skip{Line: i + 1, Reason: "duplicate entry"})
			continue
		}
		seen[key] = true
		result.Stores = append(result.Stores, in)
	}
	return result, nil
}

// Import creates each store through the service. Stores rejected by
// validation are logged and counted; any other error stops the import.
func Import(ctx context.Context, stores service.StoreService, inputs []service.CreateStoreInput) (Summary, error) {
	var summary Summary
	for i, in := range inputs {
		if _, err := stores.CreateStore(ctx, nil, in); err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				logger.Warn("Skipping invalid store", map[string]interface{}{
					"index":  i,
					"name":   in.Name,
					"fields": verr.Fields,
				})
				summary.Rejected++
				continue
			}
			return summary, fmt.Errorf("store %d (%s): %w", i, in.Name, err)
		}
		summary.Created++
	}
	return summary, nil
}

func dedupKey(in service.CreateStoreInput) string {
	return strings.ToLower(strings.Join([]string{in.Name, in.Address.AddressLine1, in.Address.City}, "|"))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
