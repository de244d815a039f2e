package ai

import (
	"context"
	"strings"
)

// InvalidKeyMarker подстрока, по которой API сообщает о невалидном ключе
const InvalidKeyMarker = "API key not valid"

// MIME-типы, используемые при запросах
const (
	MIMETypeJSON = "application/json"
	MIMETypeJPEG = "image/jpeg"
)

// TextRequest запрос к текстовой модели
type TextRequest struct {
	Prompt           string
	Temperature      float32
	ResponseMIMEType string
}

// ImageRequest запрос к модели картинок
type ImageRequest struct {
	Prompt   string
	Count    int
	MIMEType string
}

// TextModel генерирует текст по промпту
type TextModel interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// ImageModel генерирует картинки по промпту
type ImageModel interface {
	GenerateImages(ctx context.Context, req ImageRequest) ([][]byte, error)
}

// IsInvalidCredential проверяет, что ошибка вызвана невалидным ключом API
func IsInvalidCredential(err error) bool {
	return err != nil && strings.Contains(err.Error(), InvalidKeyMarker)
}
