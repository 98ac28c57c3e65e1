package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/repository"
	"github.com/mmikleusevic/Questionaire-sub000/internal/handler/dto"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
	"github.com/mmikleusevic/Questionaire-sub000/internal/service"
)

// QuestionHandler обрабатывает запросы, связанные с банком вопросов
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
	}
}

// AnswerRequest представляет один вариант ответа в запросе
type AnswerRequest struct {
	ID        uint   `json:"id"` // 0 - новый ответ
	Text      string `json:"text" binding:"required,min=1,max=200"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionRequest представляет запрос на создание/обновление вопроса
type QuestionRequest struct {
	Text        string          `json:"text" binding:"required,min=3,max=500"`
	Difficulty  int             `json:"difficulty" binding:"omitempty,min=1,max=3"`
	Answers     []AnswerRequest `json:"answers" binding:"required"`
	CategoryIDs []uint          `json:"category_ids" binding:"required,min=1"`
}

// toInput преобразует запрос в формат для сервиса
func (r *QuestionRequest) toInput() service.QuestionInput {
	answers := make([]service.AnswerInput, 0, len(r.Answers))
	for _, answer := range r.Answers {
		answers = append(answers, service.AnswerInput{
			ID:        answer.ID,
			Text:      answer.Text,
			IsCorrect: answer.IsCorrect,
		})
	}
	return service.QuestionInput{
		Text:        r.Text,
		Difficulty:  r.Difficulty,
		Answers:     answers,
		CategoryIDs: r.CategoryIDs,
	}
}

// CreateQuestion обрабатывает запрос на создание утверждённого вопроса
// POST /api/admin/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("userID").(uint)

	question, err := h.questionService.CreateQuestion(req.toInput(), userID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question))
}

// GetQuestion возвращает вопрос с ответами и категориями
// GET /api/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint) // Получаем из контекста

	question, err := h.questionService.GetQuestion(questionID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// ListQuestions возвращает вопросы под фильтрами с пагинацией
// GET /api/questions
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filters := repository.QuestionFilters{
		Search: c.Query("search"),
	}
	if difficulty := entity.ParseDifficulty(c.Query("difficulty")); difficulty != 0 {
		filters.Difficulty = difficulty
	}
	if categoryID, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil {
		filters.CategoryID = uint(categoryID)
	}
	if approvedStr := c.Query("approved"); approvedStr != "" {
		approved := approvedStr == "true"
		filters.Approved = &approved
	}
	// Удалённые вопросы по умолчанию скрыты
	notDeleted := false
	filters.Deleted = &notDeleted
	if c.Query("deleted") == "true" {
		deleted := true
		filters.Deleted = &deleted
	}

	questions, total, err := h.questionService.ListQuestions(filters, page, pageSize)
	if err != nil {
		log.Printf("[QuestionHandler] Ошибка при получении списка вопросов: %v", err)
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedQuestionResponse(questions, total, page, pageSize))
}

// UpdateQuestion обновляет вопрос, согласовывая ответы и категории
// PUT /api/admin/questions/:id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("userID").(uint)

	question, err := h.questionService.UpdateQuestion(questionID, req.toInput(), userID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// DeleteQuestion помечает вопрос удалённым
// DELETE /api/admin/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)
	userID := c.MustGet("userID").(uint)
	userRole := c.MustGet("userRole").(string)

	if err := h.questionService.DeleteQuestion(questionID, userID, userRole); err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// ExportQuestions выгружает утверждённые вопросы в CSV или Excel
// GET /api/admin/questions/export?format=csv|xlsx
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	// Все утверждённые вопросы без пагинации
	questions, err := h.questionService.ExportQuestions()
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	filename := fmt.Sprintf("questions_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, questions, filename)
	default:
		h.exportCSV(c, questions, filename)
	}
}

// exportRow формирует плоскую строку выгрузки для одного вопроса
func exportRow(question *entity.Question) []string {
	answerTexts := make([]string, 0, len(question.Answers))
	correctText := ""
	for _, answer := range question.Answers {
		answerTexts = append(answerTexts, answer.Text)
		if answer.IsCorrect {
			correctText = answer.Text
		}
	}

	categoryIDs := make([]string, 0, len(question.Categories))
	for _, link := range question.Categories {
		categoryIDs = append(categoryIDs, strconv.FormatUint(uint64(link.CategoryID), 10))
	}

	return []string{
		strconv.FormatUint(uint64(question.ID), 10),
		sanitizeForExcel(question.Text),
		entity.DifficultyName(question.Difficulty),
		sanitizeForExcel(strings.Join(answerTexts, " | ")),
		sanitizeForExcel(correctText),
		strings.Join(categoryIDs, ","),
	}
}

var exportHeaders = []string{"ID", "Вопрос", "Сложность", "Варианты", "Правильный", "Категории"}

// exportCSV экспортирует вопросы в CSV с правильным экранированием спецсимволов
func (h *QuestionHandler) exportCSV(c *gin.Context, questions []entity.Question, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range questions {
		writer.Write(exportRow(&questions[i]))
	}
}

// exportXLSX экспортирует вопросы в Excel с использованием StreamWriter
func (h *QuestionHandler) exportXLSX(c *gin.Context, questions []entity.Question, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Вопросы"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[QuestionHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, header := range exportHeaders {
		headers[i] = header
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[QuestionHandler] Ошибка записи заголовков: %v", err)
	}

	for i := range questions {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		fields := exportRow(&questions[i])
		row := make([]interface{}, len(fields))
		for j, field := range fields {
			row[j] = field
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[QuestionHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[QuestionHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[QuestionHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleQuestionError обрабатывает ошибки от сервиса вопросов и отправляет соответствующий HTTP ответ
func (h *QuestionHandler) handleQuestionError(c *gin.Context, err error) {
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
		log.Printf("ERROR: Internal server error in QuestionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
