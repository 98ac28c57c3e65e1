package service

import (
	"fmt"
	"log"
	"time"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/repository"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
)

// QuestionService предоставляет методы для работы с банком вопросов
type QuestionService struct {
	questionRepo repository.QuestionRepository
}

// NewQuestionService создает новый сервис вопросов
func NewQuestionService(questionRepo repository.QuestionRepository) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
	}
}

// CreateQuestion создает новый утверждённый вопрос (административный путь).
// Вопрос сохраняется вместе с ответами и категориями в одной транзакции:
// он никогда не виден без ответов или без категорий.
func (s *QuestionService) CreateQuestion(input QuestionInput, creatorID uint) (*entity.Question, error) {
	if creatorID == 0 {
		return nil, fmt.Errorf("creator identity is required: %w", apperrors.ErrUnauthorized)
	}
	if err := validateQuestionContent(input.Answers, len(input.CategoryIDs)); err != nil {
		return nil, err
	}

	now := time.Now()
	question := &entity.Question{
		Text:         input.Text,
		Difficulty:   normalizeDifficulty(input.Difficulty),
		CreatedByID:  creatorID,
		IsApproved:   true,
		ApprovedByID: &creatorID,
		ApprovedAt:   &now,
	}
	for _, answer := range input.Answers {
		question.Answers = append(question.Answers, entity.Answer{
			Text:      answer.Text,
			IsCorrect: answer.IsCorrect,
		})
	}
	for _, categoryID := range input.CategoryIDs {
		question.Categories = append(question.Categories, entity.QuestionCategory{
			CategoryID: categoryID,
		})
	}

	if err := s.questionRepo.Create(question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	log.Printf("[QuestionService] Создан вопрос ID=%d (автор %d, %d ответов, %d категорий)",
		question.ID, creatorID, len(question.Answers), len(question.Categories))
	return question, nil
}

// UpdateQuestion обновляет текст/сложность вопроса и согласовывает дочерние
// коллекции с присланным представлением. Родительские поля и обе дельты
// применяются в одной транзакции: новый текст со старыми ответами -
// нарушение инварианта, поэтому частичное обновление откатывается целиком.
func (s *QuestionService) UpdateQuestion(questionID uint, input QuestionInput, updaterID uint) (*entity.Question, error) {
	if updaterID == 0 {
		return nil, fmt.Errorf("updater identity is required: %w", apperrors.ErrUnauthorized)
	}

	existing, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	if err := validateQuestionContent(input.Answers, len(input.CategoryIDs)); err != nil {
		return nil, err
	}

	answerDelta := reconcileAnswers(questionID, existing.Answers, input.Answers)
	linkDelta := reconcileCategoryLinks(questionID, existing.Categories, input.CategoryIDs)

	fields := map[string]interface{}{
		"text":               input.Text,
		"difficulty":         normalizeDifficulty(input.Difficulty),
		"last_updated_by_id": updaterID,
	}

	if err := s.questionRepo.Update(questionID, fields, answerDelta, linkDelta); err != nil {
		return nil, fmt.Errorf("error while updating the question with ID %d: %w", questionID, err)
	}

	log.Printf("[QuestionService] Обновлён вопрос ID=%d: ответы +%d ~%d -%d, категории +%d -%d",
		questionID,
		len(answerDelta.ToAdd), len(answerDelta.ToUpdate), len(answerDelta.ToRemoveIDs),
		len(linkDelta.ToAdd), len(linkDelta.ToRemoveCategoryIDs))

	return s.questionRepo.GetByID(questionID)
}

// DeleteQuestion помечает вопрос удалённым (мягкое удаление).
// Удалять может автор вопроса либо администратор.
func (s *QuestionService) DeleteQuestion(questionID uint, actorID uint, actorRole string) error {
	if actorID == 0 {
		return fmt.Errorf("actor identity is required: %w", apperrors.ErrUnauthorized)
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return err
	}

	isAdmin := actorRole == entity.RoleAdmin || actorRole == entity.RoleSuperAdmin
	if !isAdmin && question.CreatedByID != actorID {
		return fmt.Errorf("only the owner or an admin may delete a question: %w", apperrors.ErrForbidden)
	}

	if err := s.questionRepo.SoftDelete(questionID, actorID); err != nil {
		return fmt.Errorf("error while deleting the question with ID %d: %w", questionID, err)
	}

	log.Printf("[QuestionService] Вопрос ID=%d помечен удалённым (актор %d)", questionID, actorID)
	return nil
}

// GetQuestion возвращает вопрос с дочерними коллекциями
func (s *QuestionService) GetQuestion(questionID uint) (*entity.Question, error) {
	return s.questionRepo.GetByID(questionID)
}

// ListQuestions возвращает вопросы под фильтрами с пагинацией
func (s *QuestionService) ListQuestions(filters repository.QuestionFilters, page, pageSize int) ([]entity.Question, int64, error) {
	offset := (page - 1) * pageSize
	return s.questionRepo.List(filters, pageSize, offset)
}

// ExportQuestions возвращает все утверждённые вопросы для выгрузки
func (s *QuestionService) ExportQuestions() ([]entity.Question, error) {
	return s.questionRepo.ListApproved()
}

// normalizeDifficulty приводит сложность к допустимому уровню
func normalizeDifficulty(difficulty int) int {
	switch difficulty {
	case entity.DifficultyEasy, entity.DifficultyMedium, entity.DifficultyHard:
		return difficulty
	default:
		return entity.DifficultyMedium
	}
}
