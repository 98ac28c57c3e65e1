package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/repository"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
)

// PendingQuestionRepo реализует repository.PendingQuestionRepository
type PendingQuestionRepo struct {
	db *gorm.DB
}

// NewPendingQuestionRepo создает новый репозиторий черновиков вопросов
func NewPendingQuestionRepo(db *gorm.DB) *PendingQuestionRepo {
	return &PendingQuestionRepo{db: db}
}

// Create сохраняет черновик вместе с дочерними коллекциями
func (r *PendingQuestionRepo) Create(pending *entity.PendingQuestion) error {
	return r.db.Create(pending).Error
}

// GetByID возвращает черновик с дочерними коллекциями по ID
func (r *PendingQuestionRepo) GetByID(id uint) (*entity.PendingQuestion, error) {
	var pending entity.PendingQuestion
	err := r.db.Preload("Answers").Preload("Categories").First(&pending, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &pending, nil
}

// List возвращает черновики с пагинацией; createdByID=0 - без фильтра по автору
func (r *PendingQuestionRepo) List(createdByID uint, limit, offset int) ([]entity.PendingQuestion, int64, error) {
	query := r.db.Model(&entity.PendingQuestion{})
	if createdByID != 0 {
		query = query.Where("created_by_id = ?", createdByID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count pending questions: %w", err)
	}

	var pending []entity.PendingQuestion
	err := query.Preload("Answers").Preload("Categories").
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&pending).Error
	if err != nil {
		return nil, 0, err
	}
	return pending, total, nil
}

// Update применяет изменения родительских полей и дельты дочерних коллекций
// в одной транзакции, аналогично QuestionRepo.Update
func (r *PendingQuestionRepo) Update(pendingID uint, fields map[string]interface{}, answers repository.PendingAnswerDelta, links repository.PendingCategoryLinkDelta) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			result := tx.Model(&entity.PendingQuestion{}).Where("id = ?", pendingID).Updates(fields)
			if result.Error != nil {
				return fmt.Errorf("failed to update pending question fields: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return apperrors.ErrNotFound
			}
		}

		if len(answers.ToRemoveIDs) > 0 {
			if err := tx.Where("pending_question_id = ? AND id IN ?", pendingID, answers.ToRemoveIDs).
				Delete(&entity.PendingAnswer{}).Error; err != nil {
				return fmt.Errorf("failed to remove pending answers: %w", err)
			}
		}
		for _, answer := range answers.ToUpdate {
			err := tx.Model(&entity.PendingAnswer{}).
				Where("id = ? AND pending_question_id = ?", answer.ID, pendingID).
				Updates(map[string]interface{}{
					"text":       answer.Text,
					"is_correct": answer.IsCorrect,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to update pending answer %d: %w", answer.ID, err)
			}
		}
		if len(answers.ToAdd) > 0 {
			if err := tx.Create(&answers.ToAdd).Error; err != nil {
				return fmt.Errorf("failed to add pending answers: %w", err)
			}
		}

		if len(links.ToRemoveCategoryIDs) > 0 {
			if err := tx.Where("pending_question_id = ? AND category_id IN ?", pendingID, links.ToRemoveCategoryIDs).
				Delete(&entity.PendingQuestionCategory{}).Error; err != nil {
				return fmt.Errorf("failed to remove pending category links: %w", err)
			}
		}
		if len(links.ToAdd) > 0 {
			if err := tx.Create(&links.ToAdd).Error; err != nil {
				return fmt.Errorf("failed to add pending category links: %w", err)
			}
		}

		return nil
	})
}

// Delete жёстко удаляет черновик; дочерние строки уходят каскадом по FK
func (r *PendingQuestionRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.PendingQuestion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
