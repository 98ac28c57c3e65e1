package entity

import "time"

// Category представляет узел дерева категорий.
// Дерево общее и читается часто; сами строки категорий ядро не мутирует,
// мутируются только join-строки QuestionCategory.
type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}

// QuestionCategory - join-строка многие-ко-многим между вопросом и категорией.
// Собственной идентичности не имеет: ключ составной (question_id, category_id).
// "Удаление" связи удаляет только join-строку, никогда саму категорию.
type QuestionCategory struct {
	QuestionID uint `gorm:"primaryKey;autoIncrement:false" json:"question_id"`
	CategoryID uint `gorm:"primaryKey;autoIncrement:false" json:"category_id"`
}

// TableName определяет имя таблицы для GORM
func (QuestionCategory) TableName() string {
	return "question_categories"
}
