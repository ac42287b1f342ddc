package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/thriftmap/thriftmap-backend/internal/app/repository"
	"github.com/thriftmap/thriftmap-backend/internal/app/service"
	"github.com/thriftmap/thriftmap-backend/internal/db"
	"github.com/thriftmap/thriftmap-backend/internal/middleware"
	"github.com/thriftmap/thriftmap-backend/pkg/identity"
	"github.com/thriftmap/thriftmap-backend/pkg/qrcode"
)

const testJWTSecret = "test-jwt-secret-for-controllers"

type testEnv struct {
	router       *gin.Engine
	verifier     *identity.JWTVerifier
	storeService service.StoreService
	userService  service.UserService
}

func setupControllerTest(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	storeService := service.NewStoreService(
		repository.NewStoreRepository(testDB),
		qrcode.NewGenerator(128, "M"),
		"https://thrift.example",
	)
	userService := service.NewUserService(repository.NewUserRepository(testDB))
	verifier := identity.NewJWTVerifier(testJWTSecret, "thriftmap-test")
	auth := middleware.NewAuthMiddleware(verifier)

	storeController := NewStoreController(storeService, userService)
	userController := NewUserController(userService)

	RegisterValidators()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	stores := router.Group("/stores")
	stores.GET("", storeController.ListStores)
	stores.GET("/:id", storeController.GetStoreByID)
	stores.GET("/:id/qrcode", storeController.GetStoreQRCode)
	stores.GET("/user/:externalId", storeController.ListStoresByUser)
	stores.POST("", auth.Authenticate(), storeController.CreateStore)
	stores.PUT("/:id", auth.Authenticate(), storeController.UpdateStore)
	stores.DELETE("/:id", auth.Authenticate(), storeController.DeleteStore)
	stores.POST("/:id/rate", auth.Authenticate(), storeController.RateStore)

	users := router.Group("/users", auth.OptionalAuthenticate())
	users.POST("/sync", userController.SyncUser)
	users.GET("/me", userController.GetMe)

	return &testEnv{
		router:       router,
		verifier:     verifier,
		storeService: storeService,
		userService:  userService,
	}
}

func (e *testEnv) token(t *testing.T, uid, email string) string {
	token, err := e.verifier.Issue(identity.Identity{UID: uid, Email: email}, 15*time.Minute)
	require.NoError(t, err)
	return token
}

// do sends body as JSON; a string body is sent verbatim.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func ptr[T any](v T) *T {
	return &v
}

func storeBody(name, city string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"price_range": 2,
		"address": map[string]interface{}{
			"street_number":  "12",
			"address_line_1": "Jalan Ampang",
			"city":           city,
			"state":          "WP",
			"postal_code":    "50450",
			"latitude":       3.1579,
			"longitude":      101.7123,
		},
	}
}

