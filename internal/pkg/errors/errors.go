package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется, когда личность вызывающего не удалось разрешить
	// там, где она обязательна (обновление, утверждение, удаление).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для нарушений инвариантов содержимого
	// (неверное количество ответов, правильных ответов или категорий).
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния
	// (например, удаление категории, на которую ссылаются вопросы).
	ErrConflict = errors.New("resource state conflict")
)
