package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/repos"
	"github.com/hirebridge/hirebridge-backend/internal/types"
)

type UserHandler struct {
	log   *logger.Logger
	users repos.UserRepo
}

func NewUserHandler(log *logger.Logger, users repos.UserRepo) *UserHandler {
	return &UserHandler{
		log:   log.With("handler", "UserHandler"),
		users: users,
	}
}

type createUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if existing, err := h.users.GetByEmail(c.Request.Context(), nil, req.Email); err == nil && existing != nil {
		RespondError(c, http.StatusConflict, "email_taken", errors.New("a user with this email already exists"))
		return
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		RespondError(c, http.StatusInternalServerError, "user_lookup_failed", err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), nil, &types.User{
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "user_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "user_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "user_lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}
