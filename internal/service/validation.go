package service

import (
	"fmt"

	apperrors "github.com/mmikleusevic/Questionaire-sub000/internal/pkg/errors"
)

// Инварианты содержимого редактируемого представления вопроса.
// Независимы от обрезки ответов на стороне выдачи: это ограничение
// хранения, а не проекция чтения.
const (
	requiredAnswerCount  = 3
	requiredCorrectCount = 1
)

// validateQuestionContent проверяет инварианты формы перед записью вопроса
// или черновика: ровно 3 ответа, ровно 1 правильный, минимум 1 категория.
// Нарушение - всегда ошибка клиента, никогда не ошибка сервера.
func validateQuestionContent(answers []AnswerInput, categoryCount int) error {
	if len(answers) != requiredAnswerCount {
		return fmt.Errorf("%w: question must have exactly %d answers, got %d",
			apperrors.ErrValidation, requiredAnswerCount, len(answers))
	}

	correctCount := 0
	for _, answer := range answers {
		if answer.IsCorrect {
			correctCount++
		}
	}
	if correctCount != requiredCorrectCount {
		return fmt.Errorf("%w: question must have exactly %d correct answer, got %d",
			apperrors.ErrValidation, requiredCorrectCount, correctCount)
	}

	if categoryCount < 1 {
		return fmt.Errorf("%w: question must belong to at least one category",
			apperrors.ErrValidation)
	}

	return nil
}
