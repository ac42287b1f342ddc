package errors

// Error codes returned in the "error" field of every error body.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to their own messages.

const (
	// Authentication
	AuthUnauthorized = "AUTH_UNAUTHORIZED"
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"

	// Authorization
	AuthzUIDMismatch = "AUTHZ_UID_MISMATCH"

	// Validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// Resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// Stores
	StoreNotFound      = "STORE_NOT_FOUND"
	StoreInvalidRating = "STORE_INVALID_RATING"

	// Users
	UserNotFound = "USER_NOT_FOUND"

	// Internal
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalTimeout     = "INTERNAL_TIMEOUT"
)
