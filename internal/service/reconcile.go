package service

import (
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/entity"
	"github.com/mmikleusevic/Questionaire-sub000/internal/domain/repository"
)

// unsetID - сентинельное значение ID. Desired-элемент с ID 0 никогда не
// сопоставляется с существующей строкой и всегда приводит к добавлению:
// так клиент присылает новые дочерние записи без назначенного ID.
const unsetID uint = 0

// AnswerInput описывает желаемое состояние одного варианта ответа.
// ID 0 означает новый вариант без существующего аналога.
type AnswerInput struct {
	ID        uint
	Text      string
	IsCorrect bool
}

// QuestionInput описывает желаемое состояние вопроса с дочерними коллекциями
type QuestionInput struct {
	Text        string
	Difficulty  int
	Answers     []AnswerInput
	CategoryIDs []uint
}

// reconcileAnswers вычисляет дельту приведения коллекции ответов вопроса
// к желаемому состоянию. Чистая функция без I/O: дельта применяется
// персистентным слоем целиком внутри одной транзакции.
//
// Проход 1 (удаление): каждая существующая строка, чей ID не встречается
// среди desired, попадает в ToRemoveIDs.
// Проход 2 (сопоставление-или-добавление, в порядке desired): у совпавшей
// строки обновляются только мутабельные поля - идентичность сохраняется,
// неизменённые ответы не пересоздаются; несопоставленные элементы
// добавляются новыми строками владельца questionID.
func reconcileAnswers(questionID uint, existing []entity.Answer, desired []AnswerInput) repository.AnswerDelta {
	var delta repository.AnswerDelta

	desiredIDs := make(map[uint]struct{}, len(desired))
	for _, want := range desired {
		if want.ID != unsetID {
			desiredIDs[want.ID] = struct{}{}
		}
	}

	existingByID := make(map[uint]entity.Answer, len(existing))
	for _, have := range existing {
		existingByID[have.ID] = have
		if _, keep := desiredIDs[have.ID]; !keep {
			delta.ToRemoveIDs = append(delta.ToRemoveIDs, have.ID)
		}
	}

	for _, want := range desired {
		have, matched := existingByID[want.ID]
		if want.ID == unsetID || !matched {
			delta.ToAdd = append(delta.ToAdd, entity.Answer{
				QuestionID: questionID,
				Text:       want.Text,
				IsCorrect:  want.IsCorrect,
			})
			continue
		}
		if have.Text != want.Text || have.IsCorrect != want.IsCorrect {
			have.Text = want.Text
			have.IsCorrect = want.IsCorrect
			delta.ToUpdate = append(delta.ToUpdate, have)
		}
	}

	return delta
}

// reconcileCategoryLinks вычисляет дельту приведения связей вопроса с
// категориями к желаемому набору. Ключ сопоставления - ID категории;
// у join-строки нет мутабельных полей, поэтому совпавшие связи не трогаются.
// Нулевые и повторяющиеся ID категорий игнорируются.
func reconcileCategoryLinks(questionID uint, existing []entity.QuestionCategory, desiredCategoryIDs []uint) repository.CategoryLinkDelta {
	var delta repository.CategoryLinkDelta

	desired := make(map[uint]struct{}, len(desiredCategoryIDs))
	for _, categoryID := range desiredCategoryIDs {
		if categoryID != unsetID {
			desired[categoryID] = struct{}{}
		}
	}

	have := make(map[uint]struct{}, len(existing))
	for _, link := range existing {
		have[link.CategoryID] = struct{}{}
		if _, keep := desired[link.CategoryID]; !keep {
			delta.ToRemoveCategoryIDs = append(delta.ToRemoveCategoryIDs, link.CategoryID)
		}
	}

	// Добавления в порядке desired
	added := make(map[uint]struct{}, len(desiredCategoryIDs))
	for _, categoryID := range desiredCategoryIDs {
		if categoryID == unsetID {
			continue
		}
		if _, exists := have[categoryID]; exists {
			continue
		}
		if _, dup := added[categoryID]; dup {
			continue
		}
		added[categoryID] = struct{}{}
		delta.ToAdd = append(delta.ToAdd, entity.QuestionCategory{
			QuestionID: questionID,
			CategoryID: categoryID,
		})
	}

	return delta
}

// reconcilePendingAnswers - тот же алгоритм для ответов черновика.
// Черновики и вопросы живут в разных таблицах с разными типами строк,
// поэтому согласование продублировано для каждого владельца.
func reconcilePendingAnswers(pendingQuestionID uint, existing []entity.PendingAnswer, desired []AnswerInput) repository.PendingAnswerDelta {
	var delta repository.PendingAnswerDelta

	desiredIDs := make(map[uint]struct{}, len(desired))
	for _, want := range desired {
		if want.ID != unsetID {
			desiredIDs[want.ID] = struct{}{}
		}
	}

	existingByID := make(map[uint]entity.PendingAnswer, len(existing))
	for _, have := range existing {
		existingByID[have.ID] = have
		if _, keep := desiredIDs[have.ID]; !keep {
			delta.ToRemoveIDs = append(delta.ToRemoveIDs, have.ID)
		}
	}

	for _, want := range desired {
		have, matched := existingByID[want.ID]
		if want.ID == unsetID || !matched {
			delta.ToAdd = append(delta.ToAdd, entity.PendingAnswer{
				PendingQuestionID: pendingQuestionID,
				Text:              want.Text,
				IsCorrect:         want.IsCorrect,
			})
			continue
		}
		if have.Text != want.Text || have.IsCorrect != want.IsCorrect {
			have.Text = want.Text
			have.IsCorrect = want.IsCorrect
			delta.ToUpdate = append(delta.ToUpdate, have)
		}
	}

	return delta
}

// reconcilePendingCategoryLinks - тот же алгоритм для связей черновика
func reconcilePendingCategoryLinks(pendingQuestionID uint, existing []entity.PendingQuestionCategory, desiredCategoryIDs []uint) repository.PendingCategoryLinkDelta {
	var delta repository.PendingCategoryLinkDelta

	desired := make(map[uint]struct{}, len(desiredCategoryIDs))
	for _, categoryID := range desiredCategoryIDs {
		if categoryID != unsetID {
			desired[categoryID] = struct{}{}
		}
	}

	have := make(map[uint]struct{}, len(existing))
	for _, link := range existing {
		have[link.CategoryID] = struct{}{}
		if _, keep := desired[link.CategoryID]; !keep {
			delta.ToRemoveCategoryIDs = append(delta.ToRemoveCategoryIDs, link.CategoryID)
		}
	}

	added := make(map[uint]struct{}, len(desiredCategoryIDs))
	for _, categoryID := range desiredCategoryIDs {
		if categoryID == unsetID {
			continue
		}
		if _, exists := have[categoryID]; exists {
			continue
		}
		if _, dup := added[categoryID]; dup {
			continue
		}
		added[categoryID] = struct{}{}
		delta.ToAdd = append(delta.ToAdd, entity.PendingQuestionCategory{
			PendingQuestionID: pendingQuestionID,
			CategoryID:        categoryID,
		})
	}

	return delta
}
