package dto

import (
	"time"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/handler/helper"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту
type QuestionResponse struct {
	ID          uint                  `json:"id"`
	Text        string                `json:"text"`
	Difficulty  int                   `json:"difficulty"`
	DifficultyN string                `json:"difficulty_name"`
	Answers     []helper.AnswerOption `json:"answers"`
	CategoryIDs []uint                `json:"category_ids"`
	IsApproved  bool                  `json:"is_approved"`
	IsDeleted   bool                  `json:"is_deleted,omitempty"`
	CreatedByID uint                  `json:"created_by_id"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// PlayQuestionResponse представляет вопрос в игровой выдаче.
// Правильность вариантов никогда не раскрывается.
type PlayQuestionResponse struct {
	ID          uint                  `json:"id"`
	Text        string                `json:"text"`
	Difficulty  int                   `json:"difficulty"`
	DifficultyN string                `json:"difficulty_name"`
	Answers     []helper.AnswerOption `json:"answers"`
}

// PendingQuestionResponse представляет черновик вопроса для ответа клиенту
type PendingQuestionResponse struct {
	ID          uint                  `json:"id"`
	Text        string                `json:"text"`
	Difficulty  int                   `json:"difficulty"`
	DifficultyN string                `json:"difficulty_name"`
	Answers     []helper.AnswerOption `json:"answers"`
	CategoryIDs []uint                `json:"category_ids"`
	CreatedByID uint                  `json:"created_by_id"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// PaginatedQuestionResponse представляет пагинированный список вопросов
type PaginatedQuestionResponse struct {
	Questions []*QuestionResponse `json:"questions"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	PerPage   int                 `json:"per_page"`
}

// PaginatedPendingQuestionResponse представляет пагинированный список черновиков
type PaginatedPendingQuestionResponse struct {
	Questions []*PendingQuestionResponse `json:"questions"`
	Total     int64                      `json:"total"`
	Page      int                        `json:"page"`
	PerPage   int                        `json:"per_page"`
}

// NewQuestionResponse создает DTO для вопроса (административное представление,
// правильность ответов раскрыта)
func NewQuestionResponse(question *entity.Question) *QuestionResponse {
	if question == nil {
		return nil
	}
	return &QuestionResponse{
		ID:          question.ID,
		Text:        question.Text,
		Difficulty:  question.Difficulty,
		DifficultyN: entity.DifficultyName(question.Difficulty),
		Answers:     helper.ConvertAnswersToOptions(question.Answers, true),
		CategoryIDs: question.CategoryIDs(),
		IsApproved:  question.IsApproved,
		IsDeleted:   question.IsDeleted,
		CreatedByID: question.CreatedByID,
		CreatedAt:   question.CreatedAt,
		UpdatedAt:   question.UpdatedAt,
	}
}

// NewPlayQuestionResponse создает DTO для игровой выдачи
func NewPlayQuestionResponse(question *entity.Question) *PlayQuestionResponse {
	if question == nil {
		return nil
	}
	return &PlayQuestionResponse{
		ID:          question.ID,
		Text:        question.Text,
		Difficulty:  question.Difficulty,
		DifficultyN: entity.DifficultyName(question.Difficulty),
		Answers:     helper.ConvertAnswersToOptions(question.Answers, false),
	}
}

// NewPendingQuestionResponse создает DTO для черновика
func NewPendingQuestionResponse(pending *entity.PendingQuestion) *PendingQuestionResponse {
	if pending == nil {
		return nil
	}
	categoryIDs := make([]uint, 0, len(pending.Categories))
	for _, link := range pending.Categories {
		categoryIDs = append(categoryIDs, link.CategoryID)
	}
	return &PendingQuestionResponse{
		ID:          pending.ID,
		Text:        pending.Text,
		Difficulty:  pending.Difficulty,
		DifficultyN: entity.DifficultyName(pending.Difficulty),
		Answers:     helper.ConvertPendingAnswersToOptions(pending.Answers),
		CategoryIDs: categoryIDs,
		CreatedByID: pending.CreatedByID,
		CreatedAt:   pending.CreatedAt,
		UpdatedAt:   pending.UpdatedAt,
	}
}

// NewListPlayQuestionResponse создает слайс DTO для игровой партии
func NewListPlayQuestionResponse(questions []entity.Question) []*PlayQuestionResponse {
	list := make([]*PlayQuestionResponse, len(questions))
	for i := range questions {
		list[i] = NewPlayQuestionResponse(&questions[i])
	}
	return list
}

// NewPaginatedQuestionResponse создает DTO для пагинированного списка вопросов
func NewPaginatedQuestionResponse(questions []entity.Question, total int64, page, perPage int) *PaginatedQuestionResponse {
	list := make([]*QuestionResponse, len(questions))
	for i := range questions {
		list[i] = NewQuestionResponse(&questions[i])
	}
	return &PaginatedQuestionResponse{
		Questions: list,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}
}

// NewPaginatedPendingQuestionResponse создает DTO для пагинированного списка черновиков
func NewPaginatedPendingQuestionResponse(pending []entity.PendingQuestion, total int64, page, perPage int) *PaginatedPendingQuestionResponse {
	list := make([]*PendingQuestionResponse, len(pending))
	for i := range pending {
		list[i] = NewPendingQuestionResponse(&pending[i])
	}
	return &PaginatedPendingQuestionResponse{
		Questions: list,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}
}
