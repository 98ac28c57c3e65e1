package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
)

func validAnswerSet() []AnswerInput {
	return []AnswerInput{
		{Text: "A", IsCorrect: false},
		{Text: "B", IsCorrect: true},
		{Text: "C", IsCorrect: false},
	}
}

func TestValidateQuestionContent_Valid(t *testing.T) {
	err := validateQuestionContent(validAnswerSet(), 1)
	assert.NoError(t, err)
}

func TestValidateQuestionContent_WrongAnswerCount(t *testing.T) {
	tests := []struct {
		name    string
		answers []AnswerInput
	}{
		{
			name:    "two answers",
			answers: []AnswerInput{{Text: "A", IsCorrect: true}, {Text: "B"}},
		},
		{
			name: "four answers",
			answers: []AnswerInput{
				{Text: "A", IsCorrect: true}, {Text: "B"}, {Text: "C"}, {Text: "D"},
			},
		},
		{
			name:    "no answers",
			answers: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuestionContent(tt.answers, 1)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation), "Ожидается ErrValidation, получено: %v", err)
		})
	}
}

func TestValidateQuestionContent_WrongCorrectCount(t *testing.T) {
	// Ни одного правильного
	noCorrect := []AnswerInput{
		{Text: "A"}, {Text: "B"}, {Text: "C"},
	}
	err := validateQuestionContent(noCorrect, 1)
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "Ожидается ErrValidation, получено: %v", err)

	// Два правильных
	twoCorrect := []AnswerInput{
		{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true}, {Text: "C"},
	}
	err = validateQuestionContent(twoCorrect, 1)
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "Ожидается ErrValidation, получено: %v", err)
}

func TestValidateQuestionContent_NoCategories(t *testing.T) {
	err := validateQuestionContent(validAnswerSet(), 0)
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "Ожидается ErrValidation, получено: %v", err)
}
