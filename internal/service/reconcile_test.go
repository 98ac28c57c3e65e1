package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
)

// ============================================================================
// Тесты согласования коллекции ответов
// ============================================================================

func TestReconcileAnswers_UpdateAddRemove(t *testing.T) {
	// Arrange: существующие строки A(1), B(2), C(3); желаемое состояние -
	// B с новым текстом плюс новый ответ D
	existing := []entity.Answer{
		{ID: 1, QuestionID: 10, Text: "A", IsCorrect: false},
		{ID: 2, QuestionID: 10, Text: "B", IsCorrect: true},
		{ID: 3, QuestionID: 10, Text: "C", IsCorrect: false},
	}
	desired := []AnswerInput{
		{ID: 2, Text: "B2", IsCorrect: true},
		{ID: 0, Text: "D", IsCorrect: false},
	}

	// Act
	delta := reconcileAnswers(10, existing, desired)

	// Assert: строка 2 сохраняет идентичность и получает новый текст
	require.Len(t, delta.ToUpdate, 1, "Должна обновиться ровно одна строка")
	assert.Equal(t, uint(2), delta.ToUpdate[0].ID, "Идентичность совпавшей строки сохраняется")
	assert.Equal(t, "B2", delta.ToUpdate[0].Text)
	assert.True(t, delta.ToUpdate[0].IsCorrect)

	// D добавляется новой строкой владельца
	require.Len(t, delta.ToAdd, 1)
	assert.Equal(t, uint(0), delta.ToAdd[0].ID, "Новая строка не имеет ID")
	assert.Equal(t, uint(10), delta.ToAdd[0].QuestionID)
	assert.Equal(t, "D", delta.ToAdd[0].Text)

	// A и C удаляются
	assert.ElementsMatch(t, []uint{1, 3}, delta.ToRemoveIDs)
}

func TestReconcileAnswers_Idempotent(t *testing.T) {
	// Arrange: desired совпадает с existing по всем полям
	existing := []entity.Answer{
		{ID: 1, QuestionID: 10, Text: "A", IsCorrect: false},
		{ID: 2, QuestionID: 10, Text: "B", IsCorrect: true},
		{ID: 3, QuestionID: 10, Text: "C", IsCorrect: false},
	}
	desired := []AnswerInput{
		{ID: 1, Text: "A", IsCorrect: false},
		{ID: 2, Text: "B", IsCorrect: true},
		{ID: 3, Text: "C", IsCorrect: false},
	}

	// Act
	delta := reconcileAnswers(10, existing, desired)

	// Assert: повторное согласование того же представления - no-op
	assert.True(t, delta.IsEmpty(), "Дельта должна быть пустой: %+v", delta)
}

func TestReconcileAnswers_SentinelIDAlwaysAdds(t *testing.T) {
	// Arrange: несколько элементов с ID 0 не схлопываются между собой
	existing := []entity.Answer{}
	desired := []AnswerInput{
		{ID: 0, Text: "X", IsCorrect: true},
		{ID: 0, Text: "Y", IsCorrect: false},
		{ID: 0, Text: "Z", IsCorrect: false},
	}

	// Act
	delta := reconcileAnswers(7, existing, desired)

	// Assert: порядок desired сохраняется в добавлениях
	require.Len(t, delta.ToAdd, 3)
	assert.Equal(t, "X", delta.ToAdd[0].Text)
	assert.Equal(t, "Y", delta.ToAdd[1].Text)
	assert.Equal(t, "Z", delta.ToAdd[2].Text)
	assert.Empty(t, delta.ToUpdate)
	assert.Empty(t, delta.ToRemoveIDs)
}

func TestReconcileAnswers_UnknownIDTreatedAsAdd(t *testing.T) {
	// Arrange: desired ссылается на ID, которого нет среди существующих
	existing := []entity.Answer{
		{ID: 1, QuestionID: 5, Text: "A", IsCorrect: true},
	}
	desired := []AnswerInput{
		{ID: 1, Text: "A", IsCorrect: true},
		{ID: 99, Text: "Ghost", IsCorrect: false},
	}

	// Act
	delta := reconcileAnswers(5, existing, desired)

	// Assert: несуществующий ID не обновляется, а добавляется новой строкой
	require.Len(t, delta.ToAdd, 1)
	assert.Equal(t, "Ghost", delta.ToAdd[0].Text)
	assert.Empty(t, delta.ToUpdate)
	assert.Empty(t, delta.ToRemoveIDs)
}

func TestReconcileAnswers_EmptyDesiredRemovesAll(t *testing.T) {
	// Arrange
	existing := []entity.Answer{
		{ID: 1, QuestionID: 3, Text: "A", IsCorrect: true},
		{ID: 2, QuestionID: 3, Text: "B", IsCorrect: false},
	}

	// Act
	delta := reconcileAnswers(3, existing, nil)

	// Assert
	assert.ElementsMatch(t, []uint{1, 2}, delta.ToRemoveIDs)
	assert.Empty(t, delta.ToAdd)
	assert.Empty(t, delta.ToUpdate)
}

// ============================================================================
// Тесты согласования связей с категориями
// ============================================================================

func TestReconcileCategoryLinks_AddAndRemove(t *testing.T) {
	// Arrange: связи с категориями 1 и 2; желаемый набор - 2 и 5
	existing := []entity.QuestionCategory{
		{QuestionID: 10, CategoryID: 1},
		{QuestionID: 10, CategoryID: 2},
	}

	// Act
	delta := reconcileCategoryLinks(10, existing, []uint{2, 5})

	// Assert: совпавшая связь 2 не трогается
	require.Len(t, delta.ToAdd, 1)
	assert.Equal(t, uint(5), delta.ToAdd[0].CategoryID)
	assert.Equal(t, uint(10), delta.ToAdd[0].QuestionID)
	assert.Equal(t, []uint{1}, delta.ToRemoveCategoryIDs)
}

func TestReconcileCategoryLinks_Idempotent(t *testing.T) {
	existing := []entity.QuestionCategory{
		{QuestionID: 10, CategoryID: 1},
		{QuestionID: 10, CategoryID: 2},
	}

	delta := reconcileCategoryLinks(10, existing, []uint{1, 2})

	assert.True(t, delta.IsEmpty(), "Дельта должна быть пустой: %+v", delta)
}

func TestReconcileCategoryLinks_IgnoresZeroAndDuplicates(t *testing.T) {
	// Arrange: нулевые и повторяющиеся ID в desired игнорируются
	existing := []entity.QuestionCategory{}

	// Act
	delta := reconcileCategoryLinks(4, existing, []uint{0, 3, 3, 7, 0, 7})

	// Assert
	require.Len(t, delta.ToAdd, 2)
	assert.Equal(t, uint(3), delta.ToAdd[0].CategoryID)
	assert.Equal(t, uint(7), delta.ToAdd[1].CategoryID)
}

// ============================================================================
// Тесты pending-вариантов: тот же алгоритм, другие типы строк
// ============================================================================

func TestReconcilePendingAnswers_UpdateAddRemove(t *testing.T) {
	existing := []entity.PendingAnswer{
		{ID: 1, PendingQuestionID: 20, Text: "A", IsCorrect: false},
		{ID: 2, PendingQuestionID: 20, Text: "B", IsCorrect: true},
	}
	desired := []AnswerInput{
		{ID: 2, Text: "B", IsCorrect: false},
		{ID: 0, Text: "C", IsCorrect: true},
	}

	delta := reconcilePendingAnswers(20, existing, desired)

	require.Len(t, delta.ToUpdate, 1)
	assert.Equal(t, uint(2), delta.ToUpdate[0].ID)
	assert.False(t, delta.ToUpdate[0].IsCorrect, "Изменение только флага тоже считается изменением")
	require.Len(t, delta.ToAdd, 1)
	assert.Equal(t, uint(20), delta.ToAdd[0].PendingQuestionID)
	assert.Equal(t, []uint{1}, delta.ToRemoveIDs)
}

func TestReconcilePendingCategoryLinks_AddAndRemove(t *testing.T) {
	existing := []entity.PendingQuestionCategory{
		{PendingQuestionID: 20, CategoryID: 4},
	}

	delta := reconcilePendingCategoryLinks(20, existing, []uint{9})

	require.Len(t, delta.ToAdd, 1)
	assert.Equal(t, uint(9), delta.ToAdd[0].CategoryID)
	assert.Equal(t, uint(20), delta.ToAdd[0].PendingQuestionID)
	assert.Equal(t, []uint{4}, delta.ToRemoveCategoryIDs)
}
