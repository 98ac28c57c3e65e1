package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Используется для кеширования дерева категорий (read-mostly данные).
type CacheRepository interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string) (string, error)
	Delete(key string) error
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
	Exists(key string) (bool, error)
}
