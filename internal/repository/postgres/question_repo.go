package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/repository"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create сохраняет вопрос вместе с ответами и связями категорий.
// GORM вставляет дочерние коллекции в одной транзакции с родителем,
// поэтому вопрос никогда не виден без ответов или категорий.
func (r *QuestionRepo) Create(question *entity.Question) error {
	return r.db.Create(question).Error
}

// GetByID возвращает вопрос с дочерними коллекциями по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.Preload("Answers").Preload("Categories").First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByIDs возвращает вопросы с дочерними коллекциями по списку ID
func (r *QuestionRepo) GetByIDs(ids []uint) ([]entity.Question, error) {
	if len(ids) == 0 {
		return []entity.Question{}, nil
	}
	var questions []entity.Question
	err := r.db.Preload("Answers").Preload("Categories").
		Where("id IN ?", ids).Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// List возвращает вопросы под фильтрами с пагинацией и общим количеством
func (r *QuestionRepo) List(filters repository.QuestionFilters, limit, offset int) ([]entity.Question, int64, error) {
	query := r.db.Model(&entity.Question{})

	if filters.Approved != nil {
		query = query.Where("is_approved = ?", *filters.Approved)
	}
	if filters.Deleted != nil {
		query = query.Where("is_deleted = ?", *filters.Deleted)
	}
	if filters.Difficulty != 0 {
		query = query.Where("difficulty = ?", filters.Difficulty)
	}
	if filters.CreatedByID != 0 {
		query = query.Where("created_by_id = ?", filters.CreatedByID)
	}
	if filters.CategoryID != 0 {
		linkSubQuery := r.db.Model(&entity.QuestionCategory{}).
			Select("question_id").
			Where("category_id = ?", filters.CategoryID)
		query = query.Where("id IN (?)", linkSubQuery)
	}
	if filters.Search != "" {
		query = query.Where("text ILIKE ?", "%"+filters.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	var questions []entity.Question
	err := query.Preload("Answers").Preload("Categories").
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&questions).Error
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// ListApproved возвращает все утверждённые и не удалённые вопросы (для экспорта)
func (r *QuestionRepo) ListApproved() ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Preload("Answers").Preload("Categories").
		Where("is_approved = ? AND is_deleted = ?", true, false).
		Order("id").Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Update применяет изменения родительских полей и дельты дочерних коллекций
// в одной транзакции. Откат любой части откатывает всё обновление, включая
// изменение текста вопроса: частичное обновление - нарушение инварианта.
func (r *QuestionRepo) Update(questionID uint, fields map[string]interface{}, answers repository.AnswerDelta, links repository.CategoryLinkDelta) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			result := tx.Model(&entity.Question{}).Where("id = ?", questionID).Updates(fields)
			if result.Error != nil {
				return fmt.Errorf("failed to update question fields: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return apperrors.ErrNotFound
			}
		}

		// Порядок фиксирован: сначала удаление, затем обновление и добавление
		if len(answers.ToRemoveIDs) > 0 {
			if err := tx.Where("question_id = ? AND id IN ?", questionID, answers.ToRemoveIDs).
				Delete(&entity.Answer{}).Error; err != nil {
				return fmt.Errorf("failed to remove answers: %w", err)
			}
		}
		for _, answer := range answers.ToUpdate {
			// Обновляем только мутабельные поля, идентичность строки сохраняется
			err := tx.Model(&entity.Answer{}).
				Where("id = ? AND question_id = ?", answer.ID, questionID).
				Updates(map[string]interface{}{
					"text":       answer.Text,
					"is_correct": answer.IsCorrect,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to update answer %d: %w", answer.ID, err)
			}
		}
		if len(answers.ToAdd) > 0 {
			if err := tx.Create(&answers.ToAdd).Error; err != nil {
				return fmt.Errorf("failed to add answers: %w", err)
			}
		}

		if len(links.ToRemoveCategoryIDs) > 0 {
			if err := tx.Where("question_id = ? AND category_id IN ?", questionID, links.ToRemoveCategoryIDs).
				Delete(&entity.QuestionCategory{}).Error; err != nil {
				return fmt.Errorf("failed to remove category links: %w", err)
			}
		}
		if len(links.ToAdd) > 0 {
			if err := tx.Create(&links.ToAdd).Error; err != nil {
				return fmt.Errorf("failed to add category links: %w", err)
			}
		}

		return nil
	})
}

// SoftDelete помечает вопрос удалённым с актором и временем перехода
func (r *QuestionRepo) SoftDelete(questionID uint, deletedByID uint) error {
	result := r.db.Model(&entity.Question{}).
		Where("id = ? AND is_deleted = ?", questionID, false).
		Updates(map[string]interface{}{
			"is_deleted":    true,
			"deleted_by_id": deletedByID,
			"deleted_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetEligibleIDs возвращает ID вопросов пула кандидатов.
// Исключение мягко удалённых вопросов здесь явное, без глобальных фильтров,
// чтобы предикат пула был виден и тестируем целиком.
func (r *QuestionRepo) GetEligibleIDs(filter repository.PoolFilter) ([]uint, error) {
	query := applyPoolPredicates(r.db.Model(&entity.Question{}), r.db, filter)

	if filter.ExcludeSeenByUserID != "" {
		seenSubQuery := r.db.Model(&entity.UserQuestionHistory{}).
			Select("question_id").
			Where("user_id = ?", filter.ExcludeSeenByUserID)
		query = query.Where("questions.id NOT IN (?)", seenSubQuery)
	}
	if len(filter.ExcludeQuestionIDs) > 0 {
		query = query.Where("questions.id NOT IN ?", filter.ExcludeQuestionIDs)
	}

	var ids []uint
	if err := query.Pluck("questions.id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query candidate pool: %w", err)
	}
	return ids, nil
}

// CountByCategory возвращает количество связей вопросов с категорией
func (r *QuestionRepo) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.QuestionCategory{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// applyPoolPredicates накладывает предикаты пула кандидатов на запрос по вопросам.
// Используется и селектором, и scoped-сбросом истории: область сброса обязана
// совпадать с областью исходного фильтра.
func applyPoolPredicates(query *gorm.DB, db *gorm.DB, filter repository.PoolFilter) *gorm.DB {
	query = query.Where("questions.is_approved = ? AND questions.is_deleted = ?", true, false)

	if len(filter.CategoryIDs) > 0 {
		linkSubQuery := db.Model(&entity.QuestionCategory{}).
			Select("question_id").
			Where("category_id IN ?", filter.CategoryIDs)
		query = query.Where("questions.id IN (?)", linkSubQuery)
	}
	if len(filter.Difficulties) > 0 {
		query = query.Where("questions.difficulty IN ?", filter.Difficulties)
	}
	if filter.MinAnswerCount > 0 {
		query = query.Where("(SELECT COUNT(*) FROM answers a WHERE a.question_id = questions.id) >= ?", filter.MinAnswerCount)
	}
	// Вопрос без правильного ответа не выдаётся ни в одном режиме
	query = query.Where("EXISTS (SELECT 1 FROM answers a WHERE a.question_id = questions.id AND a.is_correct)")

	return query
}
