package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mmikleusevic/Questionaire-sub000/internal/handler/dto"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
	"github.com/mmikleusevic/Questionaire-sub000/internal/service"
)

// PendingQuestionHandler обрабатывает запросы, связанные с черновиками вопросов
type PendingQuestionHandler struct {
	pendingService *service.PendingQuestionService
}

// NewPendingQuestionHandler создает новый обработчик черновиков
func NewPendingQuestionHandler(pendingService *service.PendingQuestionService) *PendingQuestionHandler {
	return &PendingQuestionHandler{
		pendingService: pendingService,
	}
}

// SubmitQuestion обрабатывает заявку пользователя на новый вопрос
// POST /api/pending-questions
func (h *PendingQuestionHandler) SubmitQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("userID").(uint)

	pending, err := h.pendingService.SubmitPendingQuestion(req.toInput(), userID)
	if err != nil {
		h.handlePendingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewPendingQuestionResponse(pending))
}

// ListPendingQuestions возвращает черновики: администратору все, автору свои
// GET /api/pending-questions
func (h *PendingQuestionHandler) ListPendingQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	userID := c.MustGet("userID").(uint)
	userRole := c.MustGet("userRole").(string)

	pending, total, err := h.pendingService.ListPendingQuestions(userID, userRole, page, pageSize)
	if err != nil {
		log.Printf("[PendingQuestionHandler] Ошибка при получении списка черновиков: %v", err)
		h.handlePendingError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedPendingQuestionResponse(pending, total, page, pageSize))
}

// UpdatePendingQuestion обновляет черновик (автор либо администратор)
// PUT /api/pending-questions/:id
func (h *PendingQuestionHandler) UpdatePendingQuestion(c *gin.Context) {
	pendingID := c.MustGet("pendingQuestionID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("userID").(uint)
	userRole := c.MustGet("userRole").(string)

	pending, err := h.pendingService.UpdatePendingQuestion(pendingID, req.toInput(), userID, userRole)
	if err != nil {
		h.handlePendingError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPendingQuestionResponse(pending))
}

// DiscardPendingQuestion жёстко удаляет черновик
// DELETE /api/pending-questions/:id
func (h *PendingQuestionHandler) DiscardPendingQuestion(c *gin.Context) {
	pendingID := c.MustGet("pendingQuestionID").(uint)
	userID := c.MustGet("userID").(uint)
	userRole := c.MustGet("userRole").(string)

	if err := h.pendingService.DiscardPendingQuestion(pendingID, userID, userRole); err != nil {
		h.handlePendingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pending question discarded successfully"})
}

// ApprovePendingQuestion превращает черновик в утверждённый вопрос
// POST /api/admin/pending-questions/:id/approve
func (h *PendingQuestionHandler) ApprovePendingQuestion(c *gin.Context) {
	pendingID := c.MustGet("pendingQuestionID").(uint)
	approverID := c.MustGet("userID").(uint)

	question, err := h.pendingService.ApprovePendingQuestion(pendingID, approverID)
	if err != nil {
		h.handlePendingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question))
}

// handlePendingError обрабатывает ошибки от сервиса черновиков и отправляет соответствующий HTTP ответ
func (h *PendingQuestionHandler) handlePendingError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in PendingQuestionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
