package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mmikleusevic/Questionaire-sub000/internal/config"
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/handler/dto"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
	"github.com/mmikleusevic/Questionaire-sub000/internal/service"
)

// playerIDHeader - заголовок с идентификатором анонимного игрока
const playerIDHeader = "X-Player-ID"

// PlayHandler обрабатывает игровые запросы на выдачу вопросов
type PlayHandler struct {
	playService *service.PlayService
	playConfig  config.PlayConfig
}

// NewPlayHandler создает новый игровой обработчик
func NewPlayHandler(playService *service.PlayService, playConfig config.PlayConfig) *PlayHandler {
	if playConfig.DefaultQuestionCount <= 0 {
		playConfig.DefaultQuestionCount = 10
	}
	if playConfig.MaxQuestionCount <= 0 {
		playConfig.MaxQuestionCount = 50
	}
	return &PlayHandler{
		playService: playService,
		playConfig:  playConfig,
	}
}

// resolvePlayerID определяет идентичность игрока.
// Приоритет: userID из JWT (если клиент аутентифицирован), затем заголовок
// X-Player-ID; без обоих выпускается новый uuid. Идентификатор всегда
// возвращается в заголовке ответа, чтобы клиент переиспользовал его.
func (h *PlayHandler) resolvePlayerID(c *gin.Context) string {
	var playerID string

	if userID, exists := c.Get("userID"); exists {
		playerID = "user:" + strconv.FormatUint(uint64(userID.(uint)), 10)
	} else if headerID := strings.TrimSpace(c.GetHeader(playerIDHeader)); headerID != "" && len(headerID) <= 64 {
		playerID = headerID
	} else {
		playerID = uuid.NewString()
	}

	c.Header(playerIDHeader, playerID)
	return playerID
}

// parsePlayFilter собирает фильтр выдачи из query-параметров
func parsePlayFilter(c *gin.Context) service.PlayFilter {
	filter := service.PlayFilter{
		Mode: service.PlayMode(c.DefaultQuery("mode", string(service.PlayModeSingle))),
	}

	for _, raw := range c.QueryArray("category_id") {
		if categoryID, err := strconv.ParseUint(raw, 10, 32); err == nil && categoryID != 0 {
			filter.CategoryIDs = append(filter.CategoryIDs, uint(categoryID))
		}
	}

	for _, raw := range c.QueryArray("difficulty") {
		if difficulty := entity.ParseDifficulty(raw); difficulty != 0 {
			filter.Difficulties = append(filter.Difficulties, difficulty)
		}
	}

	return filter
}

// GetQuestions выдает игроку партию ещё не виденных вопросов
// GET /api/play/questions?count=10&mode=multi&category_id=1&difficulty=easy
func (h *PlayHandler) GetQuestions(c *gin.Context) {
	playerID := h.resolvePlayerID(c)

	count, err := strconv.Atoi(c.DefaultQuery("count", strconv.Itoa(h.playConfig.DefaultQuestionCount)))
	if err != nil || count < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid count"})
		return
	}
	if count > h.playConfig.MaxQuestionCount {
		count = h.playConfig.MaxQuestionCount
	}

	questions, err := h.playService.GetUniqueQuestions(playerID, parsePlayFilter(c), count)
	if err != nil {
		h.handlePlayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id": playerID,
		"requested": count,
		"delivered": len(questions),
		"questions": dto.NewListPlayQuestionResponse(questions),
	})
}

// GetHistoryCount возвращает количество вопросов в истории игрока
// GET /api/play/history
func (h *PlayHandler) GetHistoryCount(c *gin.Context) {
	playerID := h.resolvePlayerID(c)

	count, err := h.playService.CountHistory(playerID)
	if err != nil {
		h.handlePlayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id": playerID,
		"seen":      count,
	})
}

// ResetHistory вручную сбрасывает историю игрока в области фильтра
// DELETE /api/play/history?category_id=1&difficulty=easy
func (h *PlayHandler) ResetHistory(c *gin.Context) {
	playerID := h.resolvePlayerID(c)

	deleted, err := h.playService.ResetHistory(playerID, parsePlayFilter(c))
	if err != nil {
		h.handlePlayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id": playerID,
		"deleted":   deleted,
	})
}

// handlePlayError обрабатывает ошибки от игрового сервиса и отправляет соответствующий HTTP ответ
func (h *PlayHandler) handlePlayError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in PlayHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
