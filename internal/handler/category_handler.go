package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
	"github.com/mmikleusevic/Questionaire-sub000/internal/service"
)

// CategoryHandler обрабатывает запросы, связанные с категориями
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler создает новый обработчик категорий
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// CategoryRequest представляет запрос на создание/обновление категории
type CategoryRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	ParentID *uint  `json:"parent_id"`
}

// GetCategoryTree возвращает дерево категорий
// GET /api/categories
func (h *CategoryHandler) GetCategoryTree(c *gin.Context) {
	tree, err := h.categoryService.GetCategoryTree()
	if err != nil {
		h.handleCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": tree})
}

// CreateCategory создает новую категорию
// POST /api/admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.categoryService.CreateCategory(req.Name, req.ParentID)
	if err != nil {
		h.handleCategoryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory переименовывает или перевешивает категорию
// PUT /api/admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.categoryService.UpdateCategory(categoryID, req.Name, req.ParentID)
	if err != nil {
		h.handleCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory удаляет категорию без потомков и связей
// DELETE /api/admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	if err := h.categoryService.DeleteCategory(categoryID); err != nil {
		h.handleCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// handleCategoryError обрабатывает ошибки от сервиса категорий и отправляет соответствующий HTTP ответ
func (h *CategoryHandler) handleCategoryError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in CategoryHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
