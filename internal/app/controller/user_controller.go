package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thriftmap/thriftmap-backend/internal/app/service"
	apperrors "github.com/thriftmap/thriftmap-backend/internal/errors"
	"github.com/thriftmap/thriftmap-backend/internal/middleware"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{userService: userService}
}

type SyncUserRequest struct {
	FirebaseUID string `json:"firebase_uid" binding:"required,max=128"`
	Email       string `json:"email" binding:"omitempty,email"`
	Username    string `json:"username" binding:"max=100"`
}

// SyncUser records a provider account locally. When the caller sends a
// verified token it must belong to the account being synced.
func (ctrl *UserController) SyncUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if uid, ok := middleware.GetUserUID(c); ok && uid != req.FirebaseUID {
		log.Warn("Sync uid does not match token", map[string]interface{}{
			"token_uid": uid,
			"body_uid":  req.FirebaseUID,
		})
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzUIDMismatch, "You can only sync your own account")
		return
	}

	user, created, err := ctrl.userService.SyncUser(c.Request.Context(), service.SyncUserInput{
		FirebaseUID: req.FirebaseUID,
		Email:       req.Email,
		Username:    req.Username,
	})
	if err != nil {
		respondServiceError(c, err, "user")
		return
	}

	status := http.StatusOK
	message := "User updated successfully"
	if created {
		status = http.StatusCreated
		message = "User created successfully"
	}
	c.JSON(status, gin.H{
		"message": message,
		"user":    user,
	})
}

// GetMe looks up a user by the uid query parameter, defaulting to the
// verified caller.
func (ctrl *UserController) GetMe(c *gin.Context) {
	uid := c.Query("uid")
	if uid == "" {
		uid, _ = middleware.GetUserUID(c)
	}

	user, err := ctrl.userService.GetUserByFirebaseUID(c.Request.Context(), uid)
	if err != nil {
		respondServiceError(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
