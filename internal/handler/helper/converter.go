package helper

import (
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
)

// AnswerOption представляет вариант ответа для фронтенда
type AnswerOption struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

// ConvertAnswersToOptions преобразует ответы вопроса в варианты для клиента.
// revealCorrect управляет видимостью флага правильности: игровые ответы
// никогда не раскрывают правильный вариант, административные - всегда.
func ConvertAnswersToOptions(answers []entity.Answer, revealCorrect bool) []AnswerOption {
	converted := make([]AnswerOption, len(answers))
	for i, answer := range answers {
		text := answer.Text
		// Дополнительная проверка на пустые строки
		if text == "" {
			text = "(пустой вариант)"
		}
		converted[i] = AnswerOption{ID: answer.ID, Text: text}
		if revealCorrect {
			isCorrect := answer.IsCorrect
			converted[i].IsCorrect = &isCorrect
		}
	}
	return converted
}

// ConvertPendingAnswersToOptions - то же преобразование для ответов черновика.
// Черновики видят только автор и администратор, правильность раскрывается всегда.
func ConvertPendingAnswersToOptions(answers []entity.PendingAnswer) []AnswerOption {
	converted := make([]AnswerOption, len(answers))
	for i, answer := range answers {
		text := answer.Text
		if text == "" {
			text = "(пустой вариант)"
		}
		isCorrect := answer.IsCorrect
		converted[i] = AnswerOption{ID: answer.ID, Text: text, IsCorrect: &isCorrect}
	}
	return converted
}
