// internal/interfaces/http/handlers/category.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/bakery-storefront/internal/domain/catalog"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	catalog *catalog.Service
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(catalogService *catalog.Service) *CategoryHandler {
	return &CategoryHandler{catalog: catalogService}
}

// GetCategories handles GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	categories, err := h.catalog.Categories(c.Request.Context(), d.Session)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Categories retrieved successfully", categories)
}

// AdminCreateCategory handles POST /admin/categories
func (h *CategoryHandler) AdminCreateCategory(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	var req catalog.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), d.Session, req)
	if err != nil {
		respondError(c, err)
		return
	}

	d.Feed.Success("Category created")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Category created successfully",
		"data":    category,
	})
}

// AdminUpdateCategory handles PUT /admin/categories/:id
func (h *CategoryHandler) AdminUpdateCategory(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req catalog.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), d.Session, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	d.Feed.Success("Category updated")
	respondOK(c, "Category updated successfully", category)
}

// AdminDeleteCategory handles DELETE /admin/categories/:id
func (h *CategoryHandler) AdminDeleteCategory(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(c.Request.Context(), d.Session, id); err != nil {
		respondError(c, err)
		return
	}

	d.Feed.Success("Category deleted")
	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}
