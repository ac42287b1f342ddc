package repository

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/thriftmap/thriftmap-backend/internal/app/model"
	"github.com/thriftmap/thriftmap-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoreFilter struct {
	City      string
	MinRating *float64
	MaxPrice  *int
	Search    string
}

// StoreFields holds the store columns of a partial update. Nil means keep.
type StoreFields struct {
	Name           *string
	Description    *string
	PriceRange     *int
	OperatingHours model.OperatingHours
	GoogleMapsLink *string
}

type AddressFields struct {
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

type ContactFields struct {
	PhoneNumber   *string
	InstagramLink *string
	FacebookLink  *string
}

// StorePatch is a partial update. Address and Contact rows are only touched
// when their part is present.
type StorePatch struct {
	Store   StoreFields
	Address *AddressFields
	Contact *ContactFields
}

type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	Update(ctx context.Context, id uint, patch StorePatch) error
	Delete(ctx context.Context, id uint) error
	Rate(ctx context.Context, id uint, rating int) error
	Exists(ctx context.Context, id uint) (bool, error)
	FindAll(ctx context.Context, filter StoreFilter) ([]model.Store, error)
	FindByID(ctx context.Context, id uint) (*model.Store, error)
	FindByContributorUID(ctx context.Context, firebaseUID string) ([]model.Store, error)
}

var ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) withAssociations(db *gorm.DB) *gorm.DB {
	return db.Preload("Address").Preload("Contact").Preload("Contributor")
}

// Create inserts the store, its address and its optional contact atomically.
func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"name":     store.Name,
		"added_by": store.AddedBy,
	})

	address, contact := store.Address, store.Contact

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		logger.Error("Failed to begin transaction for store creation", tx.Error)
		return errors.Wrap(tx.Error, "begin store transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := tx.Omit(clause.Associations).Create(store).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to insert store row", err, map[string]interface{}{
			"name": store.Name,
		})
		return errors.Wrap(err, "insert store")
	}

	if address != nil {
		address.StoreID = store.ID
		if err := tx.Create(address).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to insert store address", err, map[string]interface{}{
				"store_id": store.ID,
			})
			return errors.Wrap(err, "insert store address")
		}
	}

	if contact != nil {
		contact.StoreID = store.ID
		if err := tx.Create(contact).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to insert store contact", err, map[string]interface{}{
				"store_id": store.ID,
			})
			return errors.Wrap(err, "insert store contact")
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit store creation", err, map[string]interface{}{
			"store_id": store.ID,
		})
		return errors.Wrap(err, "commit store creation")
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return nil
}

func (r *storeRepository) Update(ctx context.Context, id uint, patch StorePatch) error {
	logger.Debug("Updating store in database", map[string]interface{}{
		"store_id":    id,
		"has_address": patch.Address != nil,
		"has_contact": patch.Contact != nil,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := patch.Store.columns()
		updates["updated_at"] = time.Now()

		result := tx.Model(&model.Store{}).Where("ts_id = ?", id).Updates(updates)
		if result.Error != nil {
			return errors.Wrap(result.Error, "update store row")
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if patch.Address != nil {
			var address model.Address
			if err := tx.Where("ts_id = ?", id).First(&address).Error; err != nil {
				return errors.Wrap(err, "load store address")
			}
			patch.Address.applyTo(&address)
			// BeforeSave regenerates full_address
			if err := tx.Save(&address).Error; err != nil {
				return errors.Wrap(err, "save store address")
			}
		}

		if patch.Contact != nil {
			var contact model.Contact
			err := tx.Where("ts_id = ?", id).First(&contact).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				contact = model.Contact{StoreID: id}
			} else if err != nil {
				return errors.Wrap(err, "load store contact")
			}
			patch.Contact.applyTo(&contact)
			if err := tx.Save(&contact).Error; err != nil {
				return errors.Wrap(err, "save store contact")
			}
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to update store in database", err, map[string]interface{}{
				"store_id": id,
			})
		}
		return err
	}

	logger.Debug("Store updated in database", map[string]interface{}{
		"store_id": id,
	})
	return nil
}

// Delete removes the store together with its contact and address rows.
func (r *storeRepository) Delete(ctx context.Context, id uint) error {
	logger.Debug("Deleting store from database", map[string]interface{}{
		"store_id": id,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ts_id = ?", id).Delete(&model.Contact{}).Error; err != nil {
			return errors.Wrap(err, "delete store contact")
		}
		if err := tx.Where("ts_id = ?", id).Delete(&model.Address{}).Error; err != nil {
			return errors.Wrap(err, "delete store address")
		}
		result := tx.Where("ts_id = ?", id).Delete(&model.Store{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "delete store row")
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to delete store from database", err, map[string]interface{}{
				"store_id": id,
			})
		}
		return err
	}

	logger.Debug("Store deleted from database", map[string]interface{}{
		"store_id": id,
	})
	return nil
}

// Rate folds one rating into the aggregates in a single UPDATE statement.
// average_rating is the mean rounded to the nearest whole star.
func (r *storeRepository) Rate(ctx context.Context, id uint, rating int) error {
	if rating < model.MinRating || rating > model.MaxRating {
		return ErrRatingOutOfRange
	}

	logger.Debug("Rating store in database", map[string]interface{}{
		"store_id": id,
		"rating":   rating,
	})

	result := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("ts_id = ?", id).
		UpdateColumns(map[string]interface{}{
			"rating_sum":     gorm.Expr("rating_sum + ?", rating),
			"total_ratings":  gorm.Expr("total_ratings + 1"),
			"average_rating": gorm.Expr("ROUND((rating_sum + ?) * 1.0 / (total_ratings + 1))", rating),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		logger.Error("Failed to rate store", result.Error, map[string]interface{}{
			"store_id": id,
		})
		return errors.Wrap(result.Error, "rate store")
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *storeRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Store{}).Where("ts_id = ?", id).Count(&count).Error; err != nil {
		logger.Error("Failed to check store existence", err, map[string]interface{}{
			"store_id": id,
		})
		return false, errors.Wrap(err, "count store")
	}
	return count > 0, nil
}

// likeEscaper makes search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *storeRepository) FindAll(ctx context.Context, filter StoreFilter) ([]model.Store, error) {
	logger.Debug("Finding stores", map[string]interface{}{
		"city":       filter.City,
		"min_rating": filter.MinRating,
		"max_price":  filter.MaxPrice,
		"search":     filter.Search,
	})

	query := r.withAssociations(r.db.WithContext(ctx).Model(&model.Store{})).
		Joins("JOIN thrift_stores_address AS tsa ON tsa.ts_id = thrift_stores.ts_id")

	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("LOWER(tsa.city) = LOWER(?)", city)
	}
	if filter.MinRating != nil {
		query = query.Where("thrift_stores.average_rating >= ?", *filter.MinRating)
	}
	if filter.MaxPrice != nil {
		query = query.Where("thrift_stores.price_range <= ?", *filter.MaxPrice)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		query = query.Where(
			`(LOWER(thrift_stores.name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(thrift_stores.description, '')) LIKE ? ESCAPE '\')`,
			like, like,
		)
	}

	stores := []model.Store{}
	if err := query.
		Order("thrift_stores.average_rating DESC, thrift_stores.total_ratings DESC, thrift_stores.ts_id ASC").
		Find(&stores).Error; err != nil {
		logger.Error("Failed to find stores", err, map[string]interface{}{
			"city": filter.City,
		})
		return nil, errors.Wrap(err, "find stores")
	}

	logger.Debug("Stores found", map[string]interface{}{
		"count": len(stores),
	})
	return stores, nil
}

func (r *storeRepository) FindByID(ctx context.Context, id uint) (*model.Store, error) {
	logger.Debug("Finding store by ID", map[string]interface{}{
		"store_id": id,
	})

	var store model.Store
	if err := r.withAssociations(r.db.WithContext(ctx)).First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		logger.Error("Failed to find store", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, errors.Wrap(err, "find store")
	}

	logger.Debug("Store found", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return &store, nil
}

// FindByContributorUID lists stores added by the user with the given
// identity-provider uid, newest first.
func (r *storeRepository) FindByContributorUID(ctx context.Context, firebaseUID string) ([]model.Store, error) {
	logger.Debug("Finding stores by contributor", map[string]interface{}{
		"firebase_uid": firebaseUID,
	})

	stores := []model.Store{}
	if err := r.withAssociations(r.db.WithContext(ctx).Model(&model.Store{})).
		Joins("JOIN users ON users.user_id = thrift_stores.added_by").
		Where("users.firebase_uid = ?", firebaseUID).
		Order("thrift_stores.created_at DESC, thrift_stores.ts_id DESC").
		Find(&stores).Error; err != nil {
		logger.Error("Failed to find stores by contributor", err, map[string]interface{}{
			"firebase_uid": firebaseUID,
		})
		return nil, errors.Wrap(err, "find stores by contributor")
	}

	logger.Debug("Contributor stores found", map[string]interface{}{
		"firebase_uid": firebaseUID,
		"count":        len(stores),
	})
	return stores, nil
}

func (f StoreFields) columns() map[string]interface{} {
	updates := map[string]interface{}{}
	if f.Name != nil {
		updates["name"] = *f.Name
	}
	if f.Description != nil {
		updates["description"] = *f.Description
	}
	if f.PriceRange != nil {
		updates["price_range"] = *f.PriceRange
	}
	if f.OperatingHours != nil {
		updates["operating_hours"] = f.OperatingHours
	}
	if f.GoogleMapsLink != nil {
		updates["google_maps_link"] = *f.GoogleMapsLink
	}
	return updates
}

func (f AddressFields) applyTo(a *model.Address) {
	if f.UnitNumber != nil {
		a.UnitNumber = f.UnitNumber
	}
	if f.StreetNumber != nil {
		a.StreetNumber = f.StreetNumber
	}
	if f.AddressLine1 != nil {
		a.AddressLine1 = *f.AddressLine1
	}
	if f.AddressLine2 != nil {
		a.AddressLine2 = f.AddressLine2
	}
	if f.City != nil {
		a.City = *f.City
	}
	if f.State != nil {
		a.State = *f.State
	}
	if f.PostalCode != nil {
		a.PostalCode = f.PostalCode
	}
	if f.Latitude != nil {
		a.Latitude = *f.Latitude
	}
	if f.Longitude != nil {
		a.Longitude = *f.Longitude
	}
}

func (f ContactFields) applyTo(c *model.Contact) {
	if f.PhoneNumber != nil {
		c.PhoneNumber = f.PhoneNumber
	}
	if f.InstagramLink != nil {
		c.InstagramLink = f.InstagramLink
	}
	if f.FacebookLink != nil {
		c.FacebookLink = f.FacebookLink
	}
}
