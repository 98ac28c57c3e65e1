package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/repository"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
)

// Ключ и TTL кеша дерева категорий
const (
	categoryTreeCacheKey = "categories:tree"
	categoryTreeCacheTTL = 10 * time.Minute
)

// CategoryNode - узел дерева категорий для выдачи клиенту
type CategoryNode struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	ParentID *uint           `json:"parent_id,omitempty"`
	Children []*CategoryNode `json:"children,omitempty"`
}

// CategoryService предоставляет методы для работы с деревом категорий.
// Дерево read-mostly и кешируется в Redis; любая запись сбрасывает кеш.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
}

// NewCategoryService создает новый сервис категорий
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
	}
}

// GetCategoryTree возвращает дерево категорий, по возможности из кеша
func (s *CategoryService) GetCategoryTree() ([]*CategoryNode, error) {
	if s.cacheRepo != nil {
		var cached []*CategoryNode
		err := s.cacheRepo.GetJSON(categoryTreeCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			// Ошибка кеша не фатальна, читаем из БД
			log.Printf("[CategoryService] Ошибка чтения кеша дерева категорий: %v", err)
		}
	}

	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	tree := buildCategoryTree(categories)

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(categoryTreeCacheKey, tree, categoryTreeCacheTTL); err != nil {
			log.Printf("[CategoryService] Ошибка записи кеша дерева категорий: %v", err)
		}
	}

	return tree, nil
}

// CreateCategory создает новую категорию, опционально с родителем
func (s *CategoryService) CreateCategory(name string, parentID *uint) (*entity.Category, error) {
	if parentID != nil {
		if _, err := s.categoryRepo.GetByID(*parentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("parent category %d does not exist: %w", *parentID, apperrors.ErrValidation)
			}
			return nil, err
		}
	}

	category := &entity.Category{Name: name, ParentID: parentID}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateTreeCache()
	log.Printf("[CategoryService] Создана категория ID=%d (%s)", category.ID, category.Name)
	return category, nil
}

// UpdateCategory переименовывает категорию и/или перевешивает её в дереве.
// Перевешивание проверяется на цикл: категория не может стать потомком
// самой себя.
func (s *CategoryService) UpdateCategory(categoryID uint, name string, parentID *uint) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if *parentID == categoryID {
			return nil, fmt.Errorf("category cannot be its own parent: %w", apperrors.ErrValidation)
		}
		if err := s.checkNoCycle(categoryID, *parentID); err != nil {
			return nil, err
		}
	}

	category.Name = name
	category.ParentID = parentID
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("error while updating the category with ID %d: %w", categoryID, err)
	}

	s.invalidateTreeCache()
	return category, nil
}

// DeleteCategory удаляет категорию. Категория с потомками или со связанными
// вопросами не удаляется - это конфликт состояния, а не каскад.
func (s *CategoryService) DeleteCategory(categoryID uint) error {
	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		return err
	}

	children, err := s.categoryRepo.CountChildren(categoryID)
	if err != nil {
		return fmt.Errorf("failed to count category children: %w", err)
	}
	if children > 0 {
		return fmt.Errorf("category %d has child categories: %w", categoryID, apperrors.ErrConflict)
	}

	linked, err := s.questionRepo.CountByCategory(categoryID)
	if err != nil {
		return fmt.Errorf("failed to count category question links: %w", err)
	}
	if linked > 0 {
		return fmt.Errorf("category %d is referenced by %d questions: %w", categoryID, linked, apperrors.ErrConflict)
	}

	if err := s.categoryRepo.Delete(categoryID); err != nil {
		return fmt.Errorf("error while deleting the category with ID %d: %w", categoryID, err)
	}

	s.invalidateTreeCache()
	log.Printf("[CategoryService] Удалена категория ID=%d", categoryID)
	return nil
}

// checkNoCycle поднимается от нового родителя к корню и убеждается,
// что categoryID не встречается на пути
func (s *CategoryService) checkNoCycle(categoryID, newParentID uint) error {
	currentID := newParentID
	for currentID != 0 {
		if currentID == categoryID {
			return fmt.Errorf("moving category %d under %d would create a cycle: %w",
				categoryID, newParentID, apperrors.ErrValidation)
		}
		parent, err := s.categoryRepo.GetByID(currentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("parent category %d does not exist: %w", currentID, apperrors.ErrValidation)
			}
			return err
		}
		if parent.ParentID == nil {
			break
		}
		currentID = *parent.ParentID
	}
	return nil
}

// invalidateTreeCache сбрасывает кеш дерева после любой записи
func (s *CategoryService) invalidateTreeCache() {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(categoryTreeCacheKey); err != nil {
		log.Printf("[CategoryService] Ошибка сброса кеша дерева категорий: %v", err)
	}
}

// buildCategoryTree собирает дерево из плоского списка категорий
func buildCategoryTree(categories []entity.Category) []*CategoryNode {
	nodes := make(map[uint]*CategoryNode, len(categories))
	for _, category := range categories {
		nodes[category.ID] = &CategoryNode{
			ID:       category.ID,
			Name:     category.Name,
			ParentID: category.ParentID,
		}
	}

	roots := make([]*CategoryNode, 0)
	for _, category := range categories {
		node := nodes[category.ID]
		if category.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*category.ParentID]
		if !ok {
			// Родитель не найден (рассинхрон данных) - поднимаем в корень
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots
}
