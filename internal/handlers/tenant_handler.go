package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"recipehub/internal/apperrors"
	"recipehub/internal/middleware"
	"recipehub/internal/pagination"
	"recipehub/internal/repository"
	"recipehub/internal/services"
)

type TenantHandler struct {
	tenantService services.TenantService
}

func NewTenantHandler(tenantService services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

func (h *TenantHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := pagination.FromQuery(c)

	filter := repository.TenantFilter{
		IsActive:  parseBoolParam(c.Query("is_active")),
		IsPremium: parseBoolParam(c.Query("is_premium")),
	}

	tenants, count, err := h.tenantService.List(actor, filter, params.Offset(), params.Limit())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope(c, params, count, tenants))
}

func (h *TenantHandler) Retrieve(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	tenant, err := h.tenantService.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req services.TenantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenant, _, err := h.tenantService.Create(actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

func (h *TenantHandler) PartialUpdate(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	var req services.TenantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenant, err := h.tenantService.Update(actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandler) Destroy(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	if err := h.tenantService.Delete(actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseBoolParam(value string) *bool {
	switch strings.ToLower(value) {
	case "true":
		b := true
		return &b
	case "false":
		b := false
		return &b
	}
	return nil
}
