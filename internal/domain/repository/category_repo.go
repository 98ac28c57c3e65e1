package repository

import (
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
)

// CategoryRepository определяет методы для работы с деревом категорий
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id uint) (*entity.Category, error)
	GetAll() ([]entity.Category, error)
	Update(category *entity.Category) error
	Delete(id uint) error

	// CountChildren возвращает количество прямых потомков категории
	CountChildren(id uint) (int64, error)
}
