package entity

import "time"

// UserQuestionHistory хранит факт "игрок уже получал этот вопрос".
// Это журнал выдачи, а не строгая гарантия exactly-once: при конкурентной
// игре одного игрока допускаются небольшие гонки, но уникальный индекс
// (user_id, question_id) исключает дубликаты строк.
type UserQuestionHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:64;not null;uniqueIndex:idx_user_question_histories_user_question,priority:1" json:"user_id"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_user_question_histories_user_question,priority:2;index" json:"question_id"`
	SeenAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"seen_at"`
}

// TableName определяет имя таблицы для GORM
func (UserQuestionHistory) TableName() string {
	return "user_question_histories"
}
