package generator

import "errors"

var (
	// ErrInvalidJSON ответ модели не удалось разобрать как JSON
	ErrInvalidJSON = errors.New("ответ модели не является корректным JSON")
	// ErrInvalidStructure в JSON нет строковых title и content
	ErrInvalidStructure = errors.New("в ответе модели нет обязательных полей title и content")
	// ErrAuthentication API отклонил ключ доступа
	ErrAuthentication = errors.New("API-ключ недействителен, проверьте GEMINI_API_KEY в .env")
)
