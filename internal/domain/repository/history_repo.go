package repository

import (
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
)

// HistoryRepository определяет методы для журнала выдачи вопросов игрокам
type HistoryRepository interface {
	// RecordBatch вставляет строки истории; конфликт по (user_id, question_id)
	// игнорируется, выдача из-за него не падает
	RecordBatch(rows []entity.UserQuestionHistory) error

	CountByUser(userID string) (int64, error)

	// DeleteScoped удаляет историю игрока в пределах фильтра пула.
	// Возвращает количество удалённых строк.
	DeleteScoped(userID string, scope PoolFilter) (int64, error)
}
