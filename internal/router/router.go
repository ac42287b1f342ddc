package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/thriftmap/thriftmap-backend/config"
	"github.com/thriftmap/thriftmap-backend/internal/app/controller"
	apperrors "github.com/thriftmap/thriftmap-backend/internal/errors"
	"github.com/thriftmap/thriftmap-backend/internal/middleware"
)

type Router struct {
	storeController *controller.StoreController
	userController  *controller.UserController
	authMiddleware  *middleware.AuthMiddleware
	config          *config.Config
}

func NewRouter(
	storeController *controller.StoreController,
	userController *controller.UserController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		storeController: storeController,
		userController:  userController,
		authMiddleware:  authMiddleware,
		config:          cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	controller.RegisterValidators()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(middleware.TimeoutMiddleware(r.config.Server.RequestTimeout))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "ThriftMap API is running",
		})
	})

	stores := router.Group("/stores")
	{
		stores.GET("", r.storeController.ListStores)
		stores.GET("/user/:externalId", r.storeController.ListStoresByUser)
		stores.GET("/:id", r.storeController.GetStoreByID)
		stores.GET("/:id/qrcode", r.storeController.GetStoreQRCode)

		stores.POST("",
			r.authMiddleware.Authenticate(),
			r.storeController.CreateStore,
		)
		stores.PUT("/:id",
			r.authMiddleware.Authenticate(),
			r.storeController.UpdateStore,
		)
		stores.DELETE("/:id",
			r.authMiddleware.Authenticate(),
			r.storeController.DeleteStore,
		)
		stores.POST("/:id/rate",
			r.authMiddleware.Authenticate(),
			r.storeController.RateStore,
		)
	}

	users := router.Group("/users", r.authMiddleware.OptionalAuthenticate())
	{
		users.POST("/sync", r.userController.SyncUser)
		users.GET("/me", r.userController.GetMe)
	}

	router.NoRoute(func(c *gin.Context) {
		apperrors.RespondWithError(c, http.StatusNotFound, apperrors.ResourceNotFound, "Route not found")
	})

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cors.New(cfg)
	}
	cfg.AllowOrigins = allowedOrigins
	return cors.New(cfg)
}
