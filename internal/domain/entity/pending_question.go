package entity

import "time"

// PendingQuestion представляет неутверждённый черновик вопроса.
// Структурно повторяет Question, но редактируется автором и жёстко
// удаляется после утверждения (промоции) или отклонения.
type PendingQuestion struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Text       string `gorm:"size:500;not null" json:"text"`
	Difficulty int    `gorm:"not null;default:2" json:"difficulty"`

	CreatedByID uint `gorm:"not null;index" json:"created_by_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Answers    []PendingAnswer           `gorm:"foreignKey:PendingQuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	Categories []PendingQuestionCategory `gorm:"foreignKey:PendingQuestionID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (PendingQuestion) TableName() string {
	return "pending_questions"
}

// CorrectAnswer возвращает правильный вариант черновика или nil
func (p *PendingQuestion) CorrectAnswer() *PendingAnswer {
	for i := range p.Answers {
		if p.Answers[i].IsCorrect {
			return &p.Answers[i]
		}
	}
	return nil
}

// CategoryIDs возвращает ID категорий, к которым привязан черновик
func (p *PendingQuestion) CategoryIDs() []uint {
	ids := make([]uint, 0, len(p.Categories))
	for _, link := range p.Categories {
		ids = append(ids, link.CategoryID)
	}
	return ids
}

// PendingAnswer представляет вариант ответа черновика
type PendingAnswer struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	PendingQuestionID uint   `gorm:"not null;index" json:"pending_question_id"`
	Text              string `gorm:"size:300;not null" json:"text"`
	IsCorrect         bool   `gorm:"not null;default:false" json:"is_correct"`
}

// TableName определяет имя таблицы для GORM
func (PendingAnswer) TableName() string {
	return "pending_answers"
}

// PendingQuestionCategory - join-строка черновика и категории
type PendingQuestionCategory struct {
	PendingQuestionID uint `gorm:"primaryKey;autoIncrement:false" json:"pending_question_id"`
	CategoryID        uint `gorm:"primaryKey;autoIncrement:false" json:"category_id"`
}

// TableName определяет имя таблицы для GORM
func (PendingQuestionCategory) TableName() string {
	return "pending_question_categories"
}
