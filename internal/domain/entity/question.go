package entity

import "time"

// Уровни сложности вопроса
const (
	DifficultyEasy   = 1
	DifficultyMedium = 2
	DifficultyHard   = 3
)

// DifficultyName возвращает строковое имя уровня сложности
func DifficultyName(difficulty int) string {
	switch difficulty {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return "unknown"
	}
}

// ParseDifficulty преобразует строковое имя сложности в числовой уровень.
// Возвращает 0, если имя не распознано.
func ParseDifficulty(name string) int {
	switch name {
	case "easy":
		return DifficultyEasy
	case "medium":
		return DifficultyMedium
	case "hard":
		return DifficultyHard
	default:
		return 0
	}
}

// Question представляет утверждённый вопрос в банке вопросов
type Question struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Text       string `gorm:"size:500;not null" json:"text"`
	Difficulty int    `gorm:"not null;default:2;index" json:"difficulty"`

	CreatedByID uint `gorm:"not null;index" json:"created_by_id"`

	// Флаг утверждения с актором и временем перехода
	IsApproved   bool       `gorm:"not null;default:false;index" json:"is_approved"`
	ApprovedByID *uint      `json:"approved_by_id,omitempty"`
	ApprovedAt   *time.Time `gorm:"type:timestamp" json:"approved_at,omitempty"`

	// Мягкое удаление: строки не удаляются, только помечаются
	IsDeleted   bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedByID *uint      `json:"deleted_by_id,omitempty"`
	DeletedAt   *time.Time `gorm:"type:timestamp" json:"deleted_at,omitempty"`

	LastUpdatedByID *uint `json:"last_updated_by_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Дочерние коллекции принадлежат вопросу и загружаются вместе с ним
	Answers    []Answer           `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	Categories []QuestionCategory `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// CorrectAnswer возвращает правильный ответ вопроса или nil, если его нет
func (q *Question) CorrectAnswer() *Answer {
	for i := range q.Answers {
		if q.Answers[i].IsCorrect {
			return &q.Answers[i]
		}
	}
	return nil
}

// CategoryIDs возвращает ID категорий, к которым привязан вопрос
func (q *Question) CategoryIDs() []uint {
	ids := make([]uint, 0, len(q.Categories))
	for _, link := range q.Categories {
		ids = append(ids, link.CategoryID)
	}
	return ids
}

// IsPlayable проверяет, может ли вопрос быть выдан игроку
func (q *Question) IsPlayable() bool {
	return q.IsApproved && !q.IsDeleted && q.CorrectAnswer() != nil
}
