package postgres

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/repository"
)

// HistoryRepo реализует repository.HistoryRepository
type HistoryRepo struct {
	db *gorm.DB
}

// NewHistoryRepo создает новый репозиторий истории выдачи вопросов
func NewHistoryRepo(db *gorm.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// RecordBatch вставляет строки истории выдачи.
// Конфликт по уникальному индексу (user_id, question_id) деградирует в no-op:
// при конкурентной игре одного игрока выдача не должна падать из-за журнала.
func (r *HistoryRepo) RecordBatch(rows []entity.UserQuestionHistory) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoNothing: true,
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to record question history: %w", err)
	}
	return nil
}

// CountByUser возвращает количество строк истории игрока
func (r *HistoryRepo) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.UserQuestionHistory{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// DeleteScoped удаляет историю игрока в пределах фильтра пула.
// Область удаления совпадает с предикатами исходного фильтра выдачи,
// поэтому история по другим категориям и сложностям сохраняется.
func (r *HistoryRepo) DeleteScoped(userID string, scope repository.PoolFilter) (int64, error) {
	query := r.db.Where("user_id = ?", userID)

	// Без предикатов пула сбрасывается вся история игрока
	if len(scope.CategoryIDs) > 0 || len(scope.Difficulties) > 0 || scope.MinAnswerCount > 0 {
		scopedQuestions := applyPoolPredicates(r.db.Model(&entity.Question{}), r.db, scope).
			Select("questions.id")
		query = query.Where("question_id IN (?)", scopedQuestions)
	}

	result := query.Delete(&entity.UserQuestionHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reset question history for user %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}
