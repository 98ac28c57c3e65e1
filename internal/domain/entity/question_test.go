package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_CorrectAnswer_Found(t *testing.T) {
	// Arrange
	question := &Question{
		ID:   1,
		Text: "Какой город является столицей Хорватии?",
		Answers: []Answer{
			{ID: 1, QuestionID: 1, Text: "Сплит", IsCorrect: false},
			{ID: 2, QuestionID: 1, Text: "Загреб", IsCorrect: true},
			{ID: 3, QuestionID: 1, Text: "Риека", IsCorrect: false},
		},
	}

	// Act
	answer := question.CorrectAnswer()

	// Assert
	require.NotNil(t, answer, "Правильный ответ должен быть найден")
	assert.Equal(t, uint(2), answer.ID)
	assert.Equal(t, "Загреб", answer.Text)
}

func TestQuestion_CorrectAnswer_NotFound(t *testing.T) {
	// Arrange: все ответы неправильные
	question := &Question{
		Answers: []Answer{
			{ID: 1, Text: "A", IsCorrect: false},
			{ID: 2, Text: "B", IsCorrect: false},
		},
	}

	// Act & Assert
	assert.Nil(t, question.CorrectAnswer(), "CorrectAnswer должен вернуть nil, если правильного ответа нет")
}

func TestQuestion_CategoryIDs(t *testing.T) {
	// Arrange
	question := &Question{
		ID: 7,
		Categories: []QuestionCategory{
			{QuestionID: 7, CategoryID: 3},
			{QuestionID: 7, CategoryID: 11},
		},
	}

	// Act & Assert
	assert.Equal(t, []uint{3, 11}, question.CategoryIDs())
}

func TestQuestion_IsPlayable(t *testing.T) {
	answers := []Answer{
		{ID: 1, Text: "A", IsCorrect: true},
		{ID: 2, Text: "B", IsCorrect: false},
		{ID: 3, Text: "C", IsCorrect: false},
	}

	// Утверждённый, не удалённый, с правильным ответом — играбелен
	playable := &Question{IsApproved: true, IsDeleted: false, Answers: answers}
	assert.True(t, playable.IsPlayable())

	// Не утверждённый — не играбелен
	unapproved := &Question{IsApproved: false, Answers: answers}
	assert.False(t, unapproved.IsPlayable())

	// Удалённый — не играбелен
	deleted := &Question{IsApproved: true, IsDeleted: true, Answers: answers}
	assert.False(t, deleted.IsPlayable())

	// Без правильного ответа — не играбелен
	noCorrect := &Question{IsApproved: true, Answers: []Answer{{ID: 1, Text: "A"}}}
	assert.False(t, noCorrect.IsPlayable())
}

func TestDifficulty_NameAndParse(t *testing.T) {
	assert.Equal(t, "easy", DifficultyName(DifficultyEasy))
	assert.Equal(t, "medium", DifficultyName(DifficultyMedium))
	assert.Equal(t, "hard", DifficultyName(DifficultyHard))
	assert.Equal(t, "unknown", DifficultyName(42))

	assert.Equal(t, DifficultyEasy, ParseDifficulty("easy"))
	assert.Equal(t, DifficultyMedium, ParseDifficulty("medium"))
	assert.Equal(t, DifficultyHard, ParseDifficulty("hard"))
	assert.Equal(t, 0, ParseDifficulty("impossible"))
}

func TestUser_CheckPassword(t *testing.T) {
	// Arrange: BeforeSave хеширует "сырые" пароли, здесь проверяем сравнение
	user := &User{Username: "editor", Email: "editor@example.com", Password: "secret123"}
	require.NoError(t, user.BeforeSave(nil))

	// Assert: хеш не равен исходному паролю
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestUser_IsAdmin(t *testing.T) {
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.True(t, (&User{Role: RoleSuperAdmin}).IsAdmin())
}
