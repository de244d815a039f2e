package generator

import (
	"context"
	"encoding/base64"
	"strings"

	"AIBlog/internal/ai"
	"AIBlog/internal/logger"
)

const dataURIPrefix = "data:" + ai.MIMETypeJPEG + ";base64,"

// ImageGenerator генерирует иллюстрацию к посту
type ImageGenerator struct {
	model ai.ImageModel
	log   logger.Logger
}

// NewImageGenerator создает генератор картинок
func NewImageGenerator(model ai.ImageModel, log logger.Logger) *ImageGenerator {
	return &ImageGenerator{model: model, log: log}
}

// Generate возвращает data URI с JPEG-картинкой или "" если картинки нет.
// Ошибка возвращается только при невалидном ключе (ErrAuthentication),
// все остальные сбои превращаются в пост без картинки.
func (g *ImageGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", nil
	}

	images, err := g.model.GenerateImages(ctx, ai.ImageRequest{
		Prompt:   prompt,
		Count:    1,
		MIMEType: ai.MIMETypeJPEG,
	})
	if err != nil {
		if ai.IsInvalidCredential(err) {
			return "", ErrAuthentication
		}
		g.log.Warn("⚠️ Картинка не сгенерирована, пост будет без нее", logger.Error(err))
		return "", nil
	}

	if len(images) == 0 || len(images[0]) == 0 {
		g.log.Warn("⚠️ Модель не вернула байты картинки", logger.String("prompt", prompt))
		return "", nil
	}

	return DataURI(images[0]), nil
}

// DataURI упаковывает JPEG-байты в data URI
func DataURI(image []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(image)
}

// DecodeDataURI достает байты картинки из data URI
func DecodeDataURI(uri string) ([]byte, bool) {
	encoded, ok := strings.CutPrefix(uri, dataURIPrefix)
	if !ok {
		return nil, false
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	return data, true
}
