package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/thriftmap/thriftmap-backend/internal/app/model"
	"github.com/thriftmap/thriftmap-backend/internal/app/repository"
	"github.com/thriftmap/thriftmap-backend/pkg/logger"
	"github.com/thriftmap/thriftmap-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	SortByRating   = "rating"
	SortByDistance = "distance"

	maxNameLength = 255
)

type StoreListOptions struct {
	City      string
	MinRating *float64
	MaxPrice  *int
	Search    string

	// Optional reference point for distance_km and radius filtering.
	Lat      *float64
	Lng      *float64
	RadiusKm *float64
	SortBy   string
}

type AddressInput struct {
	UnitNumber   *string
	StreetNumber *string
	AddressLine1 string
	AddressLine2 *string
	City         string
	State        string
	PostalCode   *string
	Latitude     *float64
	Longitude    *float64
}

type ContactInput struct {
	PhoneNumber   *string
	InstagramLink *string
	FacebookLink  *string
}

type CreateStoreInput struct {
	Name           string
	Description    *string
	PriceRange     *int
	OperatingHours model.OperatingHours
	GoogleMapsLink *string
	Address        AddressInput
	Contact        *ContactInput
}

// AddressUpdate holds the address components to change; nil keeps the stored value.
type AddressUpdate struct {
	UnitNumber   *string
	StreetNumber *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
	Latitude     *float64
	Longitude    *float64
}

type UpdateStoreInput struct {
	Name           *string
	Description    *string
	PriceRange     *int
	OperatingHours model.OperatingHours
	GoogleMapsLink *string
	Address        *AddressUpdate
	Contact        *ContactInput
}

// QRCodeGenerator renders content as a PNG image.
type QRCodeGenerator interface {
	PNG(content string) ([]byte, error)
}

type StoreService interface {
	ListStores(ctx context.Context, opts StoreListOptions) ([]model.Store, error)
	GetStore(ctx context.Context, id uint) (*model.Store, error)
	CreateStore(ctx context.Context, contributorID *uint, input CreateStoreInput) (*model.Store, error)
	UpdateStore(ctx context.Context, id uint, input UpdateStoreInput) (*model.Store, error)
	DeleteStore(ctx context.Context, id uint) error
	RateStore(ctx context.Context, id uint, rating int) (*model.Store, error)
	ListStoresByUser(ctx context.Context, firebaseUID string) ([]model.Store, error)
	StoreShareURL(id uint) string
	StoreQRCode(ctx context.Context, id uint) ([]byte, error)
}

type storeService struct {
	storeRepo     repository.StoreRepository
	qr            QRCodeGenerator
	publicBaseURL string
}

func NewStoreService(storeRepo repository.StoreRepository, qr QRCodeGenerator, publicBaseURL string) StoreService {
	return &storeService{
		storeRepo:     storeRepo,
		qr:            qr,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *storeService) ListStores(ctx context.Context, opts StoreListOptions) ([]model.Store, error) {
	logger.Debug("Listing stores", map[string]interface{}{
		"city":       opts.City,
		"min_rating": opts.MinRating,
		"max_price":  opts.MaxPrice,
		"search":     opts.Search,
		"lat":        opts.Lat,
		"lng":        opts.Lng,
		"radius_km":  opts.RadiusKm,
		"sort":       opts.SortBy,
	})

	if err := validateListOptions(opts); err != nil {
		return nil, err
	}

	stores, err := s.storeRepo.FindAll(ctx, repository.StoreFilter{
		City:      opts.City,
		MinRating: opts.MinRating,
		MaxPrice:  opts.MaxPrice,
		Search:    opts.Search,
	})
	if err != nil {
		logger.Error("Failed to list stores", err)
		return nil, err
	}

	if opts.Lat != nil && opts.Lng != nil {
		stores = withDistance(stores, *opts.Lat, *opts.Lng, opts.RadiusKm)
		if opts.SortBy == SortByDistance {
			sort.SliceStable(stores, func(i, j int) bool {
				return *stores[i].DistanceKm < *stores[j].DistanceKm
			})
		}
	}

	return stores, nil
}

func validateListOptions(opts StoreListOptions) error {
	errs := fieldErrors{}
	if opts.MinRating != nil && (*opts.MinRating < 0 || *opts.MinRating > model.MaxRating) {
		errs.add("min_rating", "must be between 0 and 5")
	}
	if opts.MaxPrice != nil && (*opts.MaxPrice < model.MinPriceRange || *opts.MaxPrice > model.MaxPriceRange) {
		errs.add("max_price", "must be between 1 and 5")
	}

	hasPoint := opts.Lat != nil && opts.Lng != nil
	if (opts.Lat == nil) != (opts.Lng == nil) {
		errs.add("lat", "lat and lng must be given together")
	} else if hasPoint && !util.ValidCoordinates(*opts.Lat, *opts.Lng) {
		errs.add("lat", "coordinates are out of range")
	}
	if opts.RadiusKm != nil {
		if *opts.RadiusKm <= 0 {
			errs.add("radius_km", "must be greater than 0")
		} else if !hasPoint {
			errs.add("radius_km", "requires lat and lng")
		}
	}

	switch opts.SortBy {
	case "", SortByRating:
	case SortByDistance:
		if !hasPoint {
			errs.add("sort", "distance sort requires lat and lng")
		}
	default:
		errs.add("sort", "must be rating or distance")
	}
	return errs.err()
}

// withDistance sets DistanceKm from the reference point and drops stores
// outside radiusKm when it is given.
func withDistance(stores []model.Store, lat, lng float64, radiusKm *float64) []model.Store {
	kept := stores[:0]
	for _, store := range stores {
		if store.Address == nil {
			continue
		}
		d := util.DistanceKm(lat, lng, store.Address.Latitude, store.Address.Longitude)
		if radiusKm != nil && d > *radiusKm {
			continue
		}
		store.DistanceKm = &d
		kept = append(kept, store)
	}
	return kept
}

func (s *storeService) GetStore(ctx context.Context, id uint) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Store not found", map[string]interface{}{
				"store_id": id,
			})
			return nil, ErrStoreNotFound
		}
		logger.Error("Failed to get store", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}
	return store, nil
}

func (s *storeService) CreateStore(ctx context.Context, contributorID *uint, input CreateStoreInput) (*model.Store, error) {
	store, err := buildStore(input)
	if err != nil {
		logger.Warn("Store creation rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	store.AddedBy = contributorID

	if err := s.storeRepo.Create(ctx, store); err != nil {
		logger.Error("Failed to create store", err, map[string]interface{}{
			"name": store.Name,
		})
		return nil, err
	}

	logger.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
		"added_by": contributorID,
	})
	return s.GetStore(ctx, store.ID)
}

// buildStore validates a creation payload and maps it onto a new Store.
func buildStore(input CreateStoreInput) (*model.Store, error) {
	errs := fieldErrors{}

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		errs.add("name", "is required")
	case len(name) > maxNameLength:
		errs.add("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
	checkStoreAttributes(errs, input.PriceRange, input.OperatingHours, blankToNil(input.GoogleMapsLink))

	addr := input.Address
	line1 := strings.TrimSpace(addr.AddressLine1)
	city := strings.TrimSpace(addr.City)
	state := strings.TrimSpace(addr.State)
	if line1 == "" {
		errs.add("address.address_line_1", "is required")
	}
	if city == "" {
		errs.add("address.city", "is required")
	}
	if state == "" {
		errs.add("address.state", "is required")
	}
	if addr.Latitude == nil {
		errs.add("address.latitude", "is required")
	}
	if addr.Longitude == nil {
		errs.add("address.longitude", "is required")
	}
	checkCoordinates(errs, addr.Latitude, addr.Longitude)

	if input.Contact != nil {
		checkContact(errs, input.Contact)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	store := &model.Store{
		Name:           name,
		Description:    blankToNil(input.Description),
		PriceRange:     input.PriceRange,
		OperatingHours: input.OperatingHours,
		GoogleMapsLink: blankToNil(input.GoogleMapsLink),
		Address: &model.Address{
			UnitNumber:   blankToNil(addr.UnitNumber),
			StreetNumber: blankToNil(addr.StreetNumber),
			AddressLine1: line1,
			AddressLine2: blankToNil(addr.AddressLine2),
			City:         city,
			State:        state,
			PostalCode:   blankToNil(addr.PostalCode),
			Latitude:     *addr.Latitude,
			Longitude:    *addr.Longitude,
		},
	}
	if c := input.Contact; c != nil {
		store.Contact = &model.Contact{
			PhoneNumber:   blankToNil(c.PhoneNumber),
			InstagramLink: blankToNil(c.InstagramLink),
			FacebookLink:  blankToNil(c.FacebookLink),
		}
	}
	return store, nil
}

func checkStoreAttributes(errs fieldErrors, priceRange *int, hours model.OperatingHours, mapsLink *string) {
	if priceRange != nil && (*priceRange < model.MinPriceRange || *priceRange > model.MaxPriceRange) {
		errs.add("price_range", "must be between 1 and 5")
	}
	if err := hours.Validate(); err != nil {
		errs.add("operating_hours", "keys must be monday through sunday")
	}
	errs.checkURL("google_maps_link", mapsLink)
}

func checkCoordinates(errs fieldErrors, lat, lng *float64) {
	if lat != nil && (*lat < -90 || *lat > 90) {
		errs.add("address.latitude", "must be between -90 and 90")
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		errs.add("address.longitude", "must be between -180 and 180")
	}
}

func checkContact(errs fieldErrors, c *ContactInput) {
	errs.checkSocialLink("contact.instagram_link", trimmed(c.InstagramLink))
	errs.checkSocialLink("contact.facebook_link", trimmed(c.FacebookLink))
}

func (s *storeService) UpdateStore(ctx context.Context, id uint, input UpdateStoreInput) (*model.Store, error) {
	patch, err := buildPatch(input)
	if err != nil {
		logger.Warn("Store update rejected", map[string]interface{}{
			"store_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}

	exists, err := s.storeRepo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrStoreNotFound
	}

	if err := s.storeRepo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		logger.Error("Failed to update store", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}

	logger.Info("Store updated", map[string]interface{}{
		"store_id": id,
	})
	return s.GetStore(ctx, id)
}

// buildPatch validates only the supplied fields of an update payload.
func buildPatch(input UpdateStoreInput) (repository.StorePatch, error) {
	errs := fieldErrors{}
	patch := repository.StorePatch{
		Store: repository.StoreFields{
			Name:           trimmed(input.Name),
			Description:    trimmed(input.Description),
			PriceRange:     input.PriceRange,
			OperatingHours: input.OperatingHours,
			GoogleMapsLink: trimmed(input.GoogleMapsLink),
		},
	}

	if name := patch.Store.Name; name != nil {
		switch {
		case *name == "":
			errs.add("name", "must not be empty")
		case len(*name) > maxNameLength:
			errs.add("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
		}
	}
	checkStoreAttributes(errs, input.PriceRange, input.OperatingHours, patch.Store.GoogleMapsLink)

	if a := input.Address; a != nil {
		fields := &repository.AddressFields{
			UnitNumber:   trimmed(a.UnitNumber),
			StreetNumber: trimmed(a.StreetNumber),
			AddressLine1: trimmed(a.AddressLine1),
			AddressLine2: trimmed(a.AddressLine2),
			City:         trimmed(a.City),
			State:        trimmed(a.State),
			PostalCode:   trimmed(a.PostalCode),
			Latitude:     a.Latitude,
			Longitude:    a.Longitude,
		}
		for field, value := range map[string]*string{
			"address.address_line_1": fields.AddressLine1,
			"address.city":           fields.City,
			"address.state":          fields.State,
		} {
			if value != nil && *value == "" {
				errs.add(field, "must not be empty")
			}
		}
		checkCoordinates(errs, a.Latitude, a.Longitude)
		patch.Address = fields
	}

	if c := input.Contact; c != nil {
		checkContact(errs, c)
		patch.Contact = &repository.ContactFields{
			PhoneNumber:   trimmed(c.PhoneNumber),
			InstagramLink: trimmed(c.InstagramLink),
			FacebookLink:  trimmed(c.FacebookLink),
		}
	}

	return patch, errs.err()
}

func (s *storeService) DeleteStore(ctx context.Context, id uint) error {
	if err := s.storeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		logger.Error("Failed to delete store", err, map[string]interface{}{
			"store_id": id,
		})
		return err
	}

	logger.Info("Store deleted", map[string]interface{}{
		"store_id": id,
	})
	return nil
}

func (s *storeService) RateStore(ctx context.Context, id uint, rating int) (*model.Store, error) {
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, ErrInvalidRating
	}

	if err := s.storeRepo.Rate(ctx, id, rating); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrStoreNotFound
		case errors.Is(err, repository.ErrRatingOutOfRange):
			return nil, ErrInvalidRating
		}
		logger.Error("Failed to rate store", err, map[string]interface{}{
			"store_id": id,
			"rating":   rating,
		})
		return nil, err
	}

	logger.Info("Store rated", map[string]interface{}{
		"store_id": id,
		"rating":   rating,
	})
	return s.GetStore(ctx, id)
}

func (s *storeService) ListStoresByUser(ctx context.Context, firebaseUID string) ([]model.Store, error) {
	uid := strings.TrimSpace(firebaseUID)
	if uid == "" {
		return nil, &ValidationError{Fields: map[string]string{"external_id": "is required"}}
	}

	stores, err := s.storeRepo.FindByContributorUID(ctx, uid)
	if err != nil {
		logger.Error("Failed to list stores by user", err, map[string]interface{}{
			"firebase_uid": uid,
		})
		return nil, err
	}
	return stores, nil
}

// StoreShareURL is the public page of a store in the web client.
func (s *storeService) StoreShareURL(id uint) string {
	return fmt.Sprintf("%s/stores/%d", s.publicBaseURL, id)
}

func (s *storeService) StoreQRCode(ctx context.Context, id uint) ([]byte, error) {
	if _, err := s.GetStore(ctx, id); err != nil {
		return nil, err
	}

	png, err := s.qr.PNG(s.StoreShareURL(id))
	if err != nil {
		logger.Error("Failed to render store QR code", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}
	return png, nil
}
