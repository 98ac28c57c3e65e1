package repository

import (
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
)

// PendingAnswerDelta - дельта изменений коллекции ответов черновика
type PendingAnswerDelta struct {
	ToAdd       []entity.PendingAnswer
	ToUpdate    []entity.PendingAnswer
	ToRemoveIDs []uint
}

// IsEmpty возвращает true, если дельта не содержит изменений
func (d PendingAnswerDelta) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToUpdate) == 0 && len(d.ToRemoveIDs) == 0
}

// PendingCategoryLinkDelta - дельта изменений связей черновика с категориями
type PendingCategoryLinkDelta struct {
	ToAdd               []entity.PendingQuestionCategory
	ToRemoveCategoryIDs []uint
}

// IsEmpty возвращает true, если дельта не содержит изменений
func (d PendingCategoryLinkDelta) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemoveCategoryIDs) == 0
}

// PendingQuestionRepository определяет методы для работы с черновиками вопросов
type PendingQuestionRepository interface {
	Create(pending *entity.PendingQuestion) error
	GetByID(id uint) (*entity.PendingQuestion, error)

	// List возвращает черновики с пагинацией; createdByID=0 - без фильтра по автору
	List(createdByID uint, limit, offset int) ([]entity.PendingQuestion, int64, error)

	// Update применяет изменения родительских полей и обе дельты дочерних
	// коллекций в одной транзакции
	Update(pendingID uint, fields map[string]interface{}, answers PendingAnswerDelta, links PendingCategoryLinkDelta) error

	// Delete жёстко удаляет черновик вместе с дочерними строками
	Delete(id uint) error
}
