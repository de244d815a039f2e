// Package generator превращает ответы генеративных моделей в содержимое постов.
//
// Текст и картинка обрабатывают ошибки по-разному: без текста поста нет,
// поэтому ContentGenerator возвращает любые ошибки. Картинка необязательна,
// поэтому ImageGenerator глотает все ошибки, кроме невалидного ключа.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"AIBlog/internal/ai"
	"AIBlog/internal/logger"

	"github.com/go-playground/validator/v10"
)

// Content структурированный результат текстовой генерации
type Content struct {
	Title       string `json:"title" validate:"required"`
	Content     string `json:"content" validate:"required"`
	ImagePrompt string `json:"imagePrompt,omitempty"`
}

// fencePattern ```json ... ``` вокруг ответа
var fencePattern = regexp.MustCompile("(?s)^```(?i:json)?\\s*\\n?(.*?)\\n?\\s*```$")

var validate = validator.New()

// ContentGenerator генерирует заголовок и текст поста
type ContentGenerator struct {
	model ai.TextModel
	log   logger.Logger
}

// NewContentGenerator создает генератор текста
func NewContentGenerator(model ai.TextModel, log logger.Logger) *ContentGenerator {
	return &ContentGenerator{model: model, log: log}
}

// Generate генерирует пост по теме пользователя
func (g *ContentGenerator) Generate(ctx context.Context, topic string) (*Content, error) {
	return g.generate(ctx, ai.TextRequest{
		Prompt:           topicPrompt(topic),
		Temperature:      topicTemperature,
		ResponseMIMEType: ai.MIMETypeJSON,
	})
}

// GenerateWelcome генерирует приветственный пост (без картинки)
func (g *ContentGenerator) GenerateWelcome(ctx context.Context) (*Content, error) {
	content, err := g.generate(ctx, ai.TextRequest{
		Prompt:           welcomePrompt(),
		Temperature:      welcomeTemperature,
		ResponseMIMEType: ai.MIMETypeJSON,
	})
	if err != nil {
		return nil, err
	}

	content.ImagePrompt = ""
	return content, nil
}

func (g *ContentGenerator) generate(ctx context.Context, req ai.TextRequest) (*Content, error) {
	raw, err := g.model.GenerateText(ctx, req)
	if err != nil {
		if ai.IsInvalidCredential(err) {
			return nil, ErrAuthentication
		}
		return nil, fmt.Errorf("не удалось сгенерировать пост: %w", err)
	}

	content, err := ParseContent(raw)
	if err != nil {
		g.log.Warn("⚠️ Модель вернула некорректный ответ",
			logger.Error(err),
			logger.Int("response_length", len(raw)),
		)
		return nil, err
	}

	return content, nil
}

// ParseContent разбирает сырой ответ модели. Ответ может быть обернут
// в блок кода с меткой json или без нее.
func ParseContent(raw string) (*Content, error) {
	payload := strings.TrimSpace(raw)
	if match := fencePattern.FindStringSubmatch(payload); match != nil {
		payload = strings.TrimSpace(match[1])
	}

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	// корректный JSON, но не объект: массив, число, строка, null
	fields, ok := parsed.(map[string]any)
	if !ok {
		return nil, ErrInvalidStructure
	}

	title, titleOK := fields["title"].(string)
	body, bodyOK := fields["content"].(string)
	if !titleOK || !bodyOK {
		return nil, ErrInvalidStructure
	}

	// imagePrompt необязателен и не проверяется
	imagePrompt, _ := fields["imagePrompt"].(string)

	content := &Content{
		Title:       title,
		Content:     body,
		ImagePrompt: imagePrompt,
	}
	if err := validate.Struct(content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}

	return content, nil
}
