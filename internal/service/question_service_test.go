package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/repository"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
)

// Моки определены в play_service_test.go: MockQuestionRepository

func validQuestionInput() QuestionInput {
	return QuestionInput{
		Text:       "Столица Франции?",
		Difficulty: entity.DifficultyEasy,
		Answers: []AnswerInput{
			{Text: "Париж", IsCorrect: true},
			{Text: "Лион", IsCorrect: false},
			{Text: "Марсель", IsCorrect: false},
		},
		CategoryIDs: []uint{1},
	}
}

// ============================================================================
// CreateQuestion
// ============================================================================

func TestQuestionService_CreateQuestion_Success(t *testing.T) {
	// Arrange
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("Create", mock.MatchedBy(func(q *entity.Question) bool {
		return q.Text == "Столица Франции?" &&
			q.IsApproved &&
			len(q.Answers) == 3 &&
			len(q.Categories) == 1 &&
			q.CreatedByID == 5
	})).Return(nil)

	questionService := NewQuestionService(mockQuestionRepo)

	// Act
	question, err := questionService.CreateQuestion(validQuestionInput(), 5)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, question)
	assert.True(t, question.IsApproved, "Административный путь создаёт сразу утверждённый вопрос")
	require.NotNil(t, question.ApprovedByID)
	assert.Equal(t, uint(5), *question.ApprovedByID)
	mockQuestionRepo.AssertExpectations(t)
}

func TestQuestionService_CreateQuestion_InvalidContent(t *testing.T) {
	mockQuestionRepo := new(MockQuestionRepository)
	questionService := NewQuestionService(mockQuestionRepo)

	input := validQuestionInput()
	input.Answers = input.Answers[:2] // Только 2 ответа

	_, err := questionService.CreateQuestion(input, 5)
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "Ожидается ErrValidation, получено: %v", err)
	mockQuestionRepo.AssertNotCalled(t, "Create")
}

func TestQuestionService_CreateQuestion_AnonymousCreator(t *testing.T) {
	questionService := NewQuestionService(new(MockQuestionRepository))

	_, err := questionService.CreateQuestion(validQuestionInput(), 0)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

// ============================================================================
// UpdateQuestion
// ============================================================================

func TestQuestionService_UpdateQuestion_AppliesDeltas(t *testing.T) {
	// Arrange: существующий вопрос с тремя ответами; desired меняет текст
	// одного и заменяет другой
	existing := &entity.Question{
		ID:         1,
		Text:       "Old text",
		Difficulty: entity.DifficultyMedium,
		Answers: []entity.Answer{
			{ID: 1, QuestionID: 1, Text: "A", IsCorrect: false},
			{ID: 2, QuestionID: 1, Text: "B", IsCorrect: true},
			{ID: 3, QuestionID: 1, Text: "C", IsCorrect: false},
		},
		Categories: []entity.QuestionCategory{
			{QuestionID: 1, CategoryID: 1},
		},
	}

	input := QuestionInput{
		Text:       "New text",
		Difficulty: entity.DifficultyHard,
		Answers: []AnswerInput{
			{ID: 1, Text: "A", IsCorrect: false},
			{ID: 2, Text: "B2", IsCorrect: true},
			{ID: 0, Text: "D", IsCorrect: false},
		},
		CategoryIDs: []uint{1, 2},
	}

	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("GetByID", uint(1)).Return(existing, nil).Once()
	mockQuestionRepo.On("Update", uint(1),
		mock.MatchedBy(func(fields map[string]interface{}) bool {
			return fields["text"] == "New text" &&
				fields["difficulty"] == entity.DifficultyHard &&
				fields["last_updated_by_id"] == uint(9)
		}),
		mock.MatchedBy(func(d repository.AnswerDelta) bool {
			return len(d.ToUpdate) == 1 && d.ToUpdate[0].ID == 2 &&
				len(d.ToAdd) == 1 && d.ToAdd[0].Text == "D" &&
				len(d.ToRemoveIDs) == 1 && d.ToRemoveIDs[0] == 3
		}),
		mock.MatchedBy(func(d repository.CategoryLinkDelta) bool {
			return len(d.ToAdd) == 1 && d.ToAdd[0].CategoryID == 2 &&
				len(d.ToRemoveCategoryIDs) == 0
		}),
	).Return(nil).Once()
	// Повторное чтение после применения
	updated := *existing
	updated.Text = "New text"
	mockQuestionRepo.On("GetByID", uint(1)).Return(&updated, nil).Once()

	questionService := NewQuestionService(mockQuestionRepo)

	// Act
	result, err := questionService.UpdateQuestion(1, input, 9)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "New text", result.Text)
	mockQuestionRepo.AssertExpectations(t)
}

func TestQuestionService_UpdateQuestion_NotFound(t *testing.T) {
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("GetByID", uint(77)).Return(nil, apperrors.ErrNotFound)

	questionService := NewQuestionService(mockQuestionRepo)

	_, err := questionService.UpdateQuestion(77, validQuestionInput(), 9)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	mockQuestionRepo.AssertNotCalled(t, "Update")
}

func TestQuestionService_UpdateQuestion_InvalidContentBlocksWrite(t *testing.T) {
	existing := &entity.Question{ID: 1, Answers: []entity.Answer{{ID: 1, Text: "A", IsCorrect: true}}}

	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("GetByID", uint(1)).Return(existing, nil)

	questionService := NewQuestionService(mockQuestionRepo)

	input := validQuestionInput()
	input.CategoryIDs = nil // Без категорий

	_, err := questionService.UpdateQuestion(1, input, 9)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	mockQuestionRepo.AssertNotCalled(t, "Update")
}

// ============================================================================
// DeleteQuestion
// ============================================================================

func TestQuestionService_DeleteQuestion_OwnerAllowed(t *testing.T) {
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("GetByID", uint(1)).Return(&entity.Question{ID: 1, CreatedByID: 5}, nil)
	mockQuestionRepo.On("SoftDelete", uint(1), uint(5)).Return(nil)

	questionService := NewQuestionService(mockQuestionRepo)

	err := questionService.DeleteQuestion(1, 5, entity.RoleUser)
	require.NoError(t, err)
	mockQuestionRepo.AssertExpectations(t)
}

func TestQuestionService_DeleteQuestion_AdminAllowed(t *testing.T) {
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("GetByID", uint(1)).Return(&entity.Question{ID: 1, CreatedByID: 5}, nil)
	mockQuestionRepo.On("SoftDelete", uint(1), uint(99)).Return(nil)

	questionService := NewQuestionService(mockQuestionRepo)

	err := questionService.DeleteQuestion(1, 99, entity.RoleAdmin)
	require.NoError(t, err)
}

func TestQuestionService_DeleteQuestion_StrangerForbidden(t *testing.T) {
	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("GetByID", uint(1)).Return(&entity.Question{ID: 1, CreatedByID: 5}, nil)

	questionService := NewQuestionService(mockQuestionRepo)

	err := questionService.DeleteQuestion(1, 8, entity.RoleUser)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden), "Ожидается ErrForbidden, получено: %v", err)
	mockQuestionRepo.AssertNotCalled(t, "SoftDelete")
}

// ============================================================================
// normalizeDifficulty
// ============================================================================

func TestNormalizeDifficulty(t *testing.T) {
	assert.Equal(t, entity.DifficultyEasy, normalizeDifficulty(entity.DifficultyEasy))
	assert.Equal(t, entity.DifficultyHard, normalizeDifficulty(entity.DifficultyHard))
	assert.Equal(t, entity.DifficultyMedium, normalizeDifficulty(0), "Неизвестная сложность приводится к средней")
	assert.Equal(t, entity.DifficultyMedium, normalizeDifficulty(42))
}
