package repository

import (
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
)

// QuestionFilters определяет фильтры для административного списка вопросов
type QuestionFilters struct {
	Approved    *bool  // nil - без фильтра
	Deleted     *bool  // nil - без фильтра
	Difficulty  int    // 0 - без фильтра
	CategoryID  uint   // 0 - без фильтра
	CreatedByID uint   // 0 - без фильтра
	Search      string // Поиск по тексту вопроса
}

// PoolFilter описывает пул кандидатов для выдачи игроку.
// Те же предикаты используются и для scoped-сброса истории, чтобы
// сброс не затрагивал историю по другим категориям/сложностям.
type PoolFilter struct {
	CategoryIDs    []uint // Вопрос должен входить хотя бы в одну из категорий
	Difficulties   []int  // Пусто - любая сложность
	MinAnswerCount int    // >=1 для одиночного режима, >=3 для мульти-режима

	// ExcludeSeenByUserID исключает вопросы из истории данного игрока
	ExcludeSeenByUserID string

	// ExcludeQuestionIDs исключает уже выданные в текущем запросе вопросы
	// (используется при повторном заборе после сброса истории)
	ExcludeQuestionIDs []uint
}

// AnswerDelta - явная дельта изменений коллекции ответов вопроса.
// Применяется персистентным слоем целиком внутри одной транзакции.
type AnswerDelta struct {
	ToAdd       []entity.Answer
	ToUpdate    []entity.Answer
	ToRemoveIDs []uint
}

// IsEmpty возвращает true, если дельта не содержит изменений
func (d AnswerDelta) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToUpdate) == 0 && len(d.ToRemoveIDs) == 0
}

// CategoryLinkDelta - дельта изменений связей вопроса с категориями.
// У join-строк нет мутабельных полей, поэтому дельта двухсписочная.
type CategoryLinkDelta struct {
	ToAdd               []entity.QuestionCategory
	ToRemoveCategoryIDs []uint
}

// IsEmpty возвращает true, если дельта не содержит изменений
func (d CategoryLinkDelta) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemoveCategoryIDs) == 0
}

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	// Create сохраняет вопрос вместе с дочерними коллекциями в одной транзакции
	Create(question *entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetByIDs(ids []uint) ([]entity.Question, error)
	List(filters QuestionFilters, limit, offset int) ([]entity.Question, int64, error)
	ListApproved() ([]entity.Question, error)

	// Update применяет изменения родительских полей и обе дельты дочерних
	// коллекций в одной транзакции
	Update(questionID uint, fields map[string]interface{}, answers AnswerDelta, links CategoryLinkDelta) error

	// SoftDelete помечает вопрос удалённым, строки не удаляются
	SoftDelete(questionID uint, deletedByID uint) error

	// GetEligibleIDs возвращает ID вопросов пула кандидатов под фильтром
	GetEligibleIDs(filter PoolFilter) ([]uint, error)

	CountByCategory(categoryID uint) (int64, error)
}
