package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"recipehub/internal/apperrors"
	"recipehub/internal/middleware"
	"recipehub/internal/models"
	"recipehub/internal/pagination"
	"recipehub/internal/repository"
	"recipehub/internal/services"
)

type RecipeHandler struct {
	recipeService services.RecipeService
}

func NewRecipeHandler(recipeService services.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

func (h *RecipeHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := pagination.FromQuery(c)

	filter, err := recipeFilterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	recipes, count, err := h.recipeService.List(actor, filter, params.Offset(), params.Limit())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope(c, params, count, recipes))
}

func (h *RecipeHandler) Retrieve(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	recipe, err := h.recipeService.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req services.RecipeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipeService.Create(actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) PartialUpdate(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	var req services.RecipeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipeService.Update(actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Destroy(c *gin.Context) {
	actor := middleware.GetActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return
	}

	if err := h.recipeService.Delete(actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipeFilterFromQuery reads cuisine_id and ingredient_id as comma separated
// UUID sets. Multiple ingredient ids narrow the result: a recipe must contain
// all of them.
func recipeFilterFromQuery(c *gin.Context) (repository.RecipeFilter, error) {
	var filter repository.RecipeFilter

	cuisineIDs, err := parseUUIDSet(c.Query("cuisine_id"), "cuisine_id")
	if err != nil {
		return filter, err
	}
	ingredientIDs, err := parseUUIDSet(c.Query("ingredient_id"), "ingredient_id")
	if err != nil {
		return filter, err
	}
	filter.CuisineIDs = cuisineIDs
	filter.IngredientIDs = ingredientIDs

	if raw := c.Query("sharing_status"); raw != "" {
		status := models.SharingStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return filter, apperrors.Validation("sharing_status", "must be PRIVATE or PUBLIC")
		}
		filter.SharingStatus = status
	}
	return filter, nil
}

func parseUUIDSet(raw, field string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, apperrors.Validation(field, "must be a comma separated list of UUIDs")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
