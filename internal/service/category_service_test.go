package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
)

// ============================================================================
// Моки для CategoryService
// ============================================================================

// MockCategoryRepository реализует repository.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(category *entity.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(id uint) (*entity.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetAll() ([]entity.Category, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(category *entity.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockCategoryRepository) CountChildren(id uint) (int64, error) {
	args := m.Called(id)
	return args.Get(0).(int64), args.Error(1)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func uintPtr(v uint) *uint { return &v }

// ============================================================================
// GetCategoryTree
// ============================================================================

func TestCategoryService_GetCategoryTree_BuildsHierarchy(t *testing.T) {
	// Arrange: корень 1 с детьми 2 и 3, у 3 есть ребёнок 4
	mockCategoryRepo := new(MockCategoryRepository)
	mockCategoryRepo.On("GetAll").Return([]entity.Category{
		{ID: 1, Name: "Наука"},
		{ID: 2, Name: "Физика", ParentID: uintPtr(1)},
		{ID: 3, Name: "Биология", ParentID: uintPtr(1)},
		{ID: 4, Name: "Генетика", ParentID: uintPtr(3)},
		{ID: 5, Name: "История"},
	}, nil)

	// Кеш без cacheRepo не используется
	categoryService := NewCategoryService(mockCategoryRepo, nil, nil)

	// Act
	tree, err := categoryService.GetCategoryTree()

	// Assert
	require.NoError(t, err)
	require.Len(t, tree, 2, "Два корня: Наука и История")

	science := tree[0]
	assert.Equal(t, "Наука", science.Name)
	require.Len(t, science.Children, 2)
	biology := science.Children[1]
	require.Len(t, biology.Children, 1)
	assert.Equal(t, "Генетика", biology.Children[0].Name)
}

func TestCategoryService_GetCategoryTree_CacheMissThenStore(t *testing.T) {
	// Arrange
	mockCategoryRepo := new(MockCategoryRepository)
	mockCategoryRepo.On("GetAll").Return([]entity.Category{{ID: 1, Name: "Наука"}}, nil)

	mockCacheRepo := new(MockCacheRepository)
	mockCacheRepo.On("GetJSON", categoryTreeCacheKey, mock.Anything).Return(apperrors.ErrNotFound)
	mockCacheRepo.On("SetJSON", categoryTreeCacheKey, mock.Anything, categoryTreeCacheTTL).Return(nil)

	categoryService := NewCategoryService(mockCategoryRepo, nil, mockCacheRepo)

	// Act
	tree, err := categoryService.GetCategoryTree()

	// Assert
	require.NoError(t, err)
	assert.Len(t, tree, 1)
	mockCacheRepo.AssertExpectations(t)
}

// ============================================================================
// UpdateCategory: защита от циклов
// ============================================================================

func TestCategoryService_UpdateCategory_CycleRejected(t *testing.T) {
	// Arrange: 1 <- 2 <- 3; попытка перевесить 1 под 3 создаёт цикл
	mockCategoryRepo := new(MockCategoryRepository)
	mockCategoryRepo.On("GetByID", uint(1)).Return(&entity.Category{ID: 1, Name: "A"}, nil)
	mockCategoryRepo.On("GetByID", uint(3)).Return(&entity.Category{ID: 3, Name: "C", ParentID: uintPtr(2)}, nil)
	mockCategoryRepo.On("GetByID", uint(2)).Return(&entity.Category{ID: 2, Name: "B", ParentID: uintPtr(1)}, nil)

	categoryService := NewCategoryService(mockCategoryRepo, nil, nil)

	// Act
	_, err := categoryService.UpdateCategory(1, "A", uintPtr(3))

	// Assert
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "Ожидается ErrValidation, получено: %v", err)
	mockCategoryRepo.AssertNotCalled(t, "Update")
}

func TestCategoryService_UpdateCategory_SelfParentRejected(t *testing.T) {
	mockCategoryRepo := new(MockCategoryRepository)
	mockCategoryRepo.On("GetByID", uint(1)).Return(&entity.Category{ID: 1, Name: "A"}, nil)

	categoryService := NewCategoryService(mockCategoryRepo, nil, nil)

	_, err := categoryService.UpdateCategory(1, "A", uintPtr(1))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

// ============================================================================
// DeleteCategory: блокировка при потомках и связях
// ============================================================================

func TestCategoryService_DeleteCategory_BlockedByChildren(t *testing.T) {
	mockCategoryRepo := new(MockCategoryRepository)
	mockCategoryRepo.On("GetByID", uint(1)).Return(&entity.Category{ID: 1, Name: "A"}, nil)
	mockCategoryRepo.On("CountChildren", uint(1)).Return(int64(2), nil)

	categoryService := NewCategoryService(mockCategoryRepo, nil, nil)

	err := categoryService.DeleteCategory(1)
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "Ожидается ErrConflict, получено: %v", err)
	mockCategoryRepo.AssertNotCalled(t, "Delete")
}

func TestCategoryService_DeleteCategory_BlockedByQuestionLinks(t *testing.T) {
	mockCategoryRepo := new(MockCategoryRepository)
	mockCategoryRepo.On("GetByID", uint(1)).Return(&entity.Category{ID: 1, Name: "A"}, nil)
	mockCategoryRepo.On("CountChildren", uint(1)).Return(int64(0), nil)

	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("CountByCategory", uint(1)).Return(int64(5), nil)

	categoryService := NewCategoryService(mockCategoryRepo, mockQuestionRepo, nil)

	err := categoryService.DeleteCategory(1)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	mockCategoryRepo.AssertNotCalled(t, "Delete")
}

func TestCategoryService_DeleteCategory_Success(t *testing.T) {
	mockCategoryRepo := new(MockCategoryRepository)
	mockCategoryRepo.On("GetByID", uint(1)).Return(&entity.Category{ID: 1, Name: "A"}, nil)
	mockCategoryRepo.On("CountChildren", uint(1)).Return(int64(0), nil)
	mockCategoryRepo.On("Delete", uint(1)).Return(nil)

	mockQuestionRepo := new(MockQuestionRepository)
	mockQuestionRepo.On("CountByCategory", uint(1)).Return(int64(0), nil)

	categoryService := NewCategoryService(mockCategoryRepo, mockQuestionRepo, nil)

	err := categoryService.DeleteCategory(1)
	require.NoError(t, err)
	mockCategoryRepo.AssertExpectations(t)
}
