package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
)

// CategoryRepo реализует repository.CategoryRepository
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo создает новый репозиторий категорий
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create сохраняет новую категорию; дубликат имени - конфликт состояния
func (r *CategoryRepo) Create(category *entity.Category) error {
	err := r.db.Create(category).Error
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("category name %q already exists: %w", category.Name, apperrors.ErrConflict)
	}
	return err
}

// GetByID возвращает категорию по ID
func (r *CategoryRepo) GetByID(id uint) (*entity.Category, error) {
	var category entity.Category
	err := r.db.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetAll возвращает все категории, отсортированные по имени
func (r *CategoryRepo) GetAll() ([]entity.Category, error) {
	var categories []entity.Category
	err := r.db.Order("name").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Update обновляет категорию
func (r *CategoryRepo) Update(category *entity.Category) error {
	err := r.db.Save(category).Error
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("category name %q already exists: %w", category.Name, apperrors.ErrConflict)
	}
	return err
}

// Delete удаляет категорию
func (r *CategoryRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountChildren возвращает количество прямых потомков категории
func (r *CategoryRepo) CountChildren(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Category{}).
		Where("parent_id = ?", id).
		Count(&count).Error
	return count, err
}

// isUniqueViolation распознаёт нарушение уникального ограничения PostgreSQL
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}
