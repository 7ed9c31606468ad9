package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"recipehub/internal/apperrors"
	"recipehub/internal/middleware"
	"recipehub/internal/pagination"
	"recipehub/internal/services"
)

type CuisineHandler struct {
	cuisineService services.CuisineService
}

func NewCuisineHandler(cuisineService services.CuisineService) *CuisineHandler {
	return &CuisineHandler{cuisineService: cuisineService}
}

func (h *CuisineHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := pagination.FromQuery(c)

	cuisines, count, err := h.cuisineService.List(actor, params.Offset(), params.Limit())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope(c, params, count, cuisines))
}

func (h *CuisineHandler) Retrieve(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	cuisine, err := h.cuisineService.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cuisine)
}

// Create resurrects a soft-deleted cuisine of the same name instead of
// creating a duplicate; both paths report 201 with the resulting record.
func (h *CuisineHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req services.CuisineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cuisine, _, err := h.cuisineService.Create(actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cuisine)
}

func (h *CuisineHandler) PartialUpdate(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	var req services.CuisineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cuisine, err := h.cuisineService.Update(actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cuisine)
}

func (h *CuisineHandler) Destroy(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	if err := h.cuisineService.Delete(actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
