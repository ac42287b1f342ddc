package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thriftmap/thriftmap-backend/internal/app/model"
	"github.com/thriftmap/thriftmap-backend/internal/app/service"
	apperrors "github.com/thriftmap/thriftmap-backend/internal/errors"
	"github.com/thriftmap/thriftmap-backend/internal/middleware"
)

type StoreController struct {
	storeService service.StoreService
	userService  service.UserService
}

func NewStoreController(storeService service.StoreService, userService service.UserService) *StoreController {
	return &StoreController{
		storeService: storeService,
		userService:  userService,
	}
}

type ListStoresQuery struct {
	City      string   `form:"city"`
	MinRating *float64 `form:"min_rating"`
	MaxPrice  *int     `form:"max_price"`
	Search    string   `form:"search"`
	Lat       *float64 `form:"lat"`
	Lng       *float64 `form:"lng"`
	RadiusKm  *float64 `form:"radius_km"`
	Sort      string   `form:"sort"`
}

type AddressRequest struct {
	UnitNumber   *string  `json:"unit_number"`
	StreetNumber *string  `json:"street_number"`
	AddressLine1 string   `json:"address_line_1" binding:"required"`
	AddressLine2 *string  `json:"address_line_2"`
	City         string   `json:"city" binding:"required"`
	State        string   `json:"state" binding:"required"`
	PostalCode   *string  `json:"postal_code"`
	Latitude     *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude    *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

// AddressPatchRequest changes only the components that are sent.
type AddressPatchRequest struct {
	UnitNumber   *string  `json:"unit_number"`
	StreetNumber *string  `json:"street_number"`
	AddressLine1 *string  `json:"address_line_1"`
	AddressLine2 *string  `json:"address_line_2"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	PostalCode   *string  `json:"postal_code"`
	Latitude     *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
}

type ContactRequest struct {
	PhoneNumber   *string `json:"phone_number"`
	InstagramLink *string `json:"instagram_link"`
	FacebookLink  *string `json:"facebook_link"`
}

type CreateStoreRequest struct {
	Name           string               `json:"name" binding:"required,max=255"`
	Description    *string              `json:"description"`
	PriceRange     *int                 `json:"price_range" binding:"omitempty,min=1,max=5"`
	OperatingHours model.OperatingHours `json:"operating_hours" binding:"omitempty,dive,keys,weekday,endkeys"`
	GoogleMapsLink *string              `json:"google_maps_link"`
	Address        *AddressRequest      `json:"address" binding:"required"`
	Contact        *ContactRequest      `json:"contact"`
	Contacts       *ContactRequest      `json:"contacts"`
}

type UpdateStoreRequest struct {
	Name           *string              `json:"name" binding:"omitempty,max=255"`
	Description    *string              `json:"description"`
	PriceRange     *int                 `json:"price_range" binding:"omitempty,min=1,max=5"`
	OperatingHours model.OperatingHours `json:"operating_hours" binding:"omitempty,dive,keys,weekday,endkeys"`
	GoogleMapsLink *string              `json:"google_maps_link"`
	Address        *AddressPatchRequest `json:"address"`
	Contact        *ContactRequest      `json:"contact"`
	Contacts       *ContactRequest      `json:"contacts"`
}

type RateStoreRequest struct {
	Rating *int `json:"rating" binding:"required"`
}

// contactInput prefers "contact" and falls back to the "contacts" spelling.
func contactInput(contact, contacts *ContactRequest) *service.ContactInput {
	if contact == nil {
		contact = contacts
	}
	if contact == nil {
		return nil
	}
	return &service.ContactInput{
		PhoneNumber:   contact.PhoneNumber,
		InstagramLink: contact.InstagramLink,
		FacebookLink:  contact.FacebookLink,
	}
}

func (ctrl *StoreController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var query ListStoresQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	stores, err := ctrl.storeService.ListStores(c.Request.Context(), service.StoreListOptions{
		City:      query.City,
		MinRating: query.MinRating,
		MaxPrice:  query.MaxPrice,
		Search:    query.Search,
		Lat:       query.Lat,
		Lng:       query.Lng,
		RadiusKm:  query.RadiusKm,
		SortBy:    query.Sort,
	})
	if err != nil {
		respondServiceError(c, err, "store")
		return
	}

	log.Info("Stores listed", map[string]interface{}{
		"count": len(stores),
	})

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}

func (ctrl *StoreController) GetStoreByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	store, err := ctrl.storeService.GetStore(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store": store,
	})
}

func (ctrl *StoreController) CreateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	contributorID, ok := ctrl.contributorID(c)
	if !ok {
		return
	}

	store, err := ctrl.storeService.CreateStore(c.Request.Context(), contributorID, service.CreateStoreInput{
		Name:           req.Name,
		Description:    req.Description,
		PriceRange:     req.PriceRange,
		OperatingHours: req.OperatingHours,
		GoogleMapsLink: req.GoogleMapsLink,
		Address: service.AddressInput{
			UnitNumber:   req.Address.UnitNumber,
			StreetNumber: req.Address.StreetNumber,
			AddressLine1: req.Address.AddressLine1,
			AddressLine2: req.Address.AddressLine2,
			City:         req.Address.City,
			State:        req.Address.State,
			PostalCode:   req.Address.PostalCode,
			Latitude:     req.Address.Latitude,
			Longitude:    req.Address.Longitude,
		},
		Contact: contactInput(req.Contact, req.Contacts),
	})
	if err != nil {
		respondServiceError(c, err, "store")
		return
	}

	log.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Store created successfully",
		"store_id": store.ID,
		"store":    store,
	})
}

// contributorID resolves the verified caller to a local user row.
func (ctrl *StoreController) contributorID(c *gin.Context) (*uint, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return nil, false
	}

	user, err := ctrl.userService.EnsureUser(c.Request.Context(), *id)
	if err != nil {
		respondServiceError(c, err, "user")
		return nil, false
	}
	return &user.ID, true
}

func (ctrl *StoreController) UpdateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	input := service.UpdateStoreInput{
		Name:           req.Name,
		Description:    req.Description,
		PriceRange:     req.PriceRange,
		OperatingHours: req.OperatingHours,
		GoogleMapsLink: req.GoogleMapsLink,
		Contact:        contactInput(req.Contact, req.Contacts),
	}
	if a := req.Address; a != nil {
		input.Address = &service.AddressUpdate{
			UnitNumber:   a.UnitNumber,
			StreetNumber: a.StreetNumber,
			AddressLine1: a.AddressLine1,
			AddressLine2: a.AddressLine2,
			City:         a.City,
			State:        a.State,
			PostalCode:   a.PostalCode,
			Latitude:     a.Latitude,
			Longitude:    a.Longitude,
		}
	}

	store, err := ctrl.storeService.UpdateStore(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err, "store")
		return
	}

	uid, _ := middleware.GetUserUID(c)
	log.Info("Store updated", map[string]interface{}{
		"store_id": id,
		"user_uid": uid,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Store updated successfully",
		"store":   store,
	})
}

func (ctrl *StoreController) DeleteStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.storeService.DeleteStore(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "store")
		return
	}

	uid, _ := middleware.GetUserUID(c)
	log.Info("Store deleted", map[string]interface{}{
		"store_id": id,
		"user_uid": uid,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Store deleted successfully",
	})
}

func (ctrl *StoreController) RateStore(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	store, err := ctrl.storeService.RateStore(c.Request.Context(), id, *req.Rating)
	if err != nil {
		respondServiceError(c, err, "store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rating submitted successfully",
		"store":   store,
	})
}

func (ctrl *StoreController) ListStoresByUser(c *gin.Context) {
	stores, err := ctrl.storeService.ListStoresByUser(c.Request.Context(), c.Param("externalId"))
	if err != nil {
		respondServiceError(c, err, "store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}

// GetStoreQRCode renders a PNG QR code linking to the store's public page.
func (ctrl *StoreController) GetStoreQRCode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	png, err := ctrl.storeService.StoreQRCode(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "store")
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
