package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/api/middleware"
	"github.com/psgpraveen/PolicyPilot/internal/services"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
	logger          *zap.Logger
}

func NewCategoryHandler(categoryService *services.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger.With(zap.String("handler", "categories")),
	}
}

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)

	categories, err := h.categoryService.List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	response := make([]categoryResponse, len(categories))
	for i, category := range categories {
		response[i] = categoryResponse{ID: category.ID, Name: category.Name}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": response,
	})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	categoryID, err := h.categoryService.Create(c.Request.Context(), ownerID, services.CategoryInput{Name: req.Name})
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Category created successfully",
		"categoryId": categoryID,
	})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)
	id := c.Param("id")

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	changed, err := h.categoryService.Update(c.Request.Context(), id, ownerID, services.CategoryInput{Name: req.Name})
	if err != nil {
		respondError(c, h.logger, err, "Category not found")
		return
	}
	if !changed {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Category updated successfully",
	})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	ownerID := c.GetString(middleware.ContextUserID)
	id := c.Param("id")

	removed, err := h.categoryService.Delete(c.Request.Context(), id, ownerID)
	if err != nil {
		respondError(c, h.logger, err, "Category not found")
		return
	}
	if !removed {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Category deleted successfully",
	})
}
