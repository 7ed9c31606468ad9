package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"recipehub/internal/apperrors"
	"recipehub/internal/middleware"
	"recipehub/internal/models"
	"recipehub/internal/pagination"
	"recipehub/internal/repository"
	"recipehub/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// adminUserView is the output shape for admin callers; it exposes lifecycle
// fields the public shape hides.
type adminUserView struct {
	ID              uuid.UUID   `json:"id"`
	TenantID        *uuid.UUID  `json:"tenant_id"`
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	FirstName       string      `json:"first_name"`
	LastName        string      `json:"last_name"`
	Role            models.Role `json:"role"`
	IsActive        bool        `json:"is_active"`
	IsEmailVerified bool        `json:"is_email_verified"`
	DeletedBy       *uuid.UUID  `json:"deleted_by"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	DeletedAt       *time.Time  `json:"deleted_at"`
}

type publicUserView struct {
	ID        uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func toAdminView(u *models.User) adminUserView {
	return adminUserView{
		ID:              u.ID,
		TenantID:        u.TenantID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		DeletedBy:       u.DeletedBy,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
		DeletedAt:       u.DeletedAt,
	}
}

func toPublicView(u *models.User) publicUserView {
	return publicUserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := pagination.FromQuery(c)

	filter := repository.UserFilter{Status: c.Query("status")}

	users, count, err := h.userService.List(actor, filter, params.Offset(), params.Limit())
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]adminUserView, 0, len(users))
	for i := range users {
		views = append(views, toAdminView(&users[i]))
	}
	c.JSON(http.StatusOK, pagination.Envelope(c, params, count, views))
}

func (h *UserHandler) Retrieve(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	user, err := h.userService.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAdminView(user))
}

func (h *UserHandler) PartialUpdate(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	var req services.AdminUserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.AdminUpdate(actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAdminView(user))
}

func (h *UserHandler) Destroy(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	if err := h.userService.AdminDelete(actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Me(c *gin.Context) {
	actor := middleware.GetActor(c)

	user, err := h.userService.GetSelf(actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPublicView(user))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req services.SelfUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.SelfUpdate(actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPublicView(user))
}

// DeleteMe is the self-service deletion path with the short recovery window.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	actor := middleware.GetActor(c)

	if err := h.userService.SelfDelete(actor); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
