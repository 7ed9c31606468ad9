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

type IngredientHandler struct {
	ingredientService services.IngredientService
}

func NewIngredientHandler(ingredientService services.IngredientService) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService}
}

func (h *IngredientHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := pagination.FromQuery(c)

	ingredients, count, err := h.ingredientService.List(actor, params.Offset(), params.Limit())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope(c, params, count, ingredients))
}

func (h *IngredientHandler) Retrieve(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	ingredient, err := h.ingredientService.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req services.IngredientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ingredient, _, err := h.ingredientService.Create(actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (h *IngredientHandler) PartialUpdate(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	var req services.IngredientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ingredient, err := h.ingredientService.Update(actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) Destroy(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	if err := h.ingredientService.Delete(actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
