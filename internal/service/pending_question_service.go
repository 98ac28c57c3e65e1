package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/repository"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
)

// PendingQuestionService предоставляет методы для работы с черновиками вопросов
type PendingQuestionService struct {
	pendingRepo  repository.PendingQuestionRepository
	userRepo     repository.UserRepository
	emailService EmailService
	db           *gorm.DB
}

// NewPendingQuestionService создает новый сервис черновиков
func NewPendingQuestionService(
	pendingRepo repository.PendingQuestionRepository,
	userRepo repository.UserRepository,
	emailService EmailService,
	db *gorm.DB,
) *PendingQuestionService {
	return &PendingQuestionService{
		pendingRepo:  pendingRepo,
		userRepo:     userRepo,
		emailService: emailService,
		db:           db,
	}
}

// SubmitPendingQuestion создает черновик вопроса от имени автора
func (s *PendingQuestionService) SubmitPendingQuestion(input QuestionInput, creatorID uint) (*entity.PendingQuestion, error) {
	if creatorID == 0 {
		return nil, fmt.Errorf("creator identity is required: %w", apperrors.ErrUnauthorized)
	}
	if err := validateQuestionContent(input.Answers, len(input.CategoryIDs)); err != nil {
		return nil, err
	}

	pending := &entity.PendingQuestion{
		Text:        input.Text,
		Difficulty:  normalizeDifficulty(input.Difficulty),
		CreatedByID: creatorID,
	}
	for _, answer := range input.Answers {
		pending.Answers = append(pending.Answers, entity.PendingAnswer{
			Text:      answer.Text,
			IsCorrect: answer.IsCorrect,
		})
	}
	for _, categoryID := range input.CategoryIDs {
		pending.Categories = append(pending.Categories, entity.PendingQuestionCategory{
			CategoryID: categoryID,
		})
	}

	if err := s.pendingRepo.Create(pending); err != nil {
		return nil, fmt.Errorf("failed to create pending question: %w", err)
	}

	log.Printf("[PendingQuestionService] Создан черновик ID=%d (автор %d)", pending.ID, creatorID)
	return pending, nil
}

// UpdatePendingQuestion согласовывает черновик с присланным представлением.
// Редактировать черновик может его автор либо администратор.
func (s *PendingQuestionService) UpdatePendingQuestion(pendingID uint, input QuestionInput, actorID uint, actorRole string) (*entity.PendingQuestion, error) {
	if actorID == 0 {
		return nil, fmt.Errorf("actor identity is required: %w", apperrors.ErrUnauthorized)
	}

	existing, err := s.pendingRepo.GetByID(pendingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(existing, actorID, actorRole); err != nil {
		return nil, err
	}

	if err := validateQuestionContent(input.Answers, len(input.CategoryIDs)); err != nil {
		return nil, err
	}

	answerDelta := reconcilePendingAnswers(pendingID, existing.Answers, input.Answers)
	linkDelta := reconcilePendingCategoryLinks(pendingID, existing.Categories, input.CategoryIDs)

	fields := map[string]interface{}{
		"text":       input.Text,
		"difficulty": normalizeDifficulty(input.Difficulty),
	}

	if err := s.pendingRepo.Update(pendingID, fields, answerDelta, linkDelta); err != nil {
		return nil, fmt.Errorf("error while updating the pending question with ID %d: %w", pendingID, err)
	}

	return s.pendingRepo.GetByID(pendingID)
}

// DiscardPendingQuestion жёстко удаляет черновик (автор либо администратор)
func (s *PendingQuestionService) DiscardPendingQuestion(pendingID uint, actorID uint, actorRole string) error {
	if actorID == 0 {
		return fmt.Errorf("actor identity is required: %w", apperrors.ErrUnauthorized)
	}

	pending, err := s.pendingRepo.GetByID(pendingID)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(pending, actorID, actorRole); err != nil {
		return err
	}

	if err := s.pendingRepo.Delete(pendingID); err != nil {
		return fmt.Errorf("error while deleting the pending question with ID %d: %w", pendingID, err)
	}

	log.Printf("[PendingQuestionService] Черновик ID=%d отклонён (актор %d)", pendingID, actorID)
	return nil
}

// ListPendingQuestions возвращает черновики: администратору все, автору только свои
func (s *PendingQuestionService) ListPendingQuestions(actorID uint, actorRole string, page, pageSize int) ([]entity.PendingQuestion, int64, error) {
	offset := (page - 1) * pageSize

	createdByID := actorID
	if actorRole == entity.RoleAdmin || actorRole == entity.RoleSuperAdmin {
		createdByID = 0 // Без фильтра по автору
	}

	return s.pendingRepo.List(createdByID, pageSize, offset)
}

// ApprovePendingQuestion превращает черновик в первоклассный вопрос.
// Вырожденный однонаправленный случай согласования: desired - все дочерние
// записи черновика, existing - пусто; копируются те же поля, что и в ветке
// добавления общего согласования (текст, правильность). Создание вопроса с
// детьми и удаление черновика выполняются в одной транзакции.
func (s *PendingQuestionService) ApprovePendingQuestion(pendingID uint, approverID uint) (*entity.Question, error) {
	if approverID == 0 {
		return nil, fmt.Errorf("approver identity is required: %w", apperrors.ErrUnauthorized)
	}

	pending, err := s.pendingRepo.GetByID(pendingID)
	if err != nil {
		return nil, err
	}

	// Инварианты проверяются перед промоцией так же, как перед записью
	answers := make([]AnswerInput, 0, len(pending.Answers))
	for _, pendingAnswer := range pending.Answers {
		answers = append(answers, AnswerInput{
			ID:        pendingAnswer.ID,
			Text:      pendingAnswer.Text,
			IsCorrect: pendingAnswer.IsCorrect,
		})
	}
	if err := validateQuestionContent(answers, len(pending.Categories)); err != nil {
		return nil, err
	}

	now := time.Now()
	question := &entity.Question{
		Text:         pending.Text,
		Difficulty:   pending.Difficulty,
		CreatedByID:  pending.CreatedByID,
		IsApproved:   true,
		ApprovedByID: &approverID,
		ApprovedAt:   &now,
	}
	// Новые строки, не согласованные ни с чем: идентичность pending-детей
	// отбрасывается
	for _, pendingAnswer := range pending.Answers {
		question.Answers = append(question.Answers, entity.Answer{
			Text:      pendingAnswer.Text,
			IsCorrect: pendingAnswer.IsCorrect,
		})
	}
	for _, link := range pending.Categories {
		question.Categories = append(question.Categories, entity.QuestionCategory{
			CategoryID: link.CategoryID,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return fmt.Errorf("failed to create promoted question: %w", err)
		}
		if err := tx.Delete(&entity.PendingQuestion{}, pendingID).Error; err != nil {
			return fmt.Errorf("failed to delete pending question %d after promotion: %w", pendingID, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error while approving the pending question with ID %d: %w", pendingID, err)
	}

	log.Printf("[PendingQuestionService] Черновик ID=%d утверждён как вопрос ID=%d (утвердил %d)",
		pendingID, question.ID, approverID)

	s.notifyCreator(pending.CreatedByID, question.Text)

	return question, nil
}

// notifyCreator уведомляет автора об утверждении вопроса.
// Строго best-effort: ошибка уведомления не откатывает промоцию.
func (s *PendingQuestionService) notifyCreator(creatorID uint, questionText string) {
	if s.emailService == nil {
		return
	}

	creator, err := s.userRepo.GetByID(creatorID)
	if err != nil {
		log.Printf("[PendingQuestionService] Не удалось найти автора %d для уведомления: %v", creatorID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.emailService.SendQuestionApproved(ctx, creator.Email, questionText); err != nil {
		log.Printf("[PendingQuestionService] Не удалось отправить уведомление автору %d: %v", creatorID, err)
	}
}

// checkOwnership проверяет, что актор - автор черновика либо администратор
func (s *PendingQuestionService) checkOwnership(pending *entity.PendingQuestion, actorID uint, actorRole string) error {
	isAdmin := actorRole == entity.RoleAdmin || actorRole == entity.RoleSuperAdmin
	if !isAdmin && pending.CreatedByID != actorID {
		return fmt.Errorf("only the owner or an admin may modify a pending question: %w", apperrors.ErrForbidden)
	}
	return nil
}
