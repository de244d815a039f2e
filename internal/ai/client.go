package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"AIBlog/internal/logger"

	"google.golang.org/genai"
)

// GeminiClient представляет клиент для работы с Gemini API (текст) и Imagen (картинки)
type GeminiClient struct {
	client     *genai.Client
	textModel  string
	imageModel string
	timeout    time.Duration
	log        logger.Logger
}

// Options параметры клиента
type Options struct {
	APIKey     string
	TextModel  string
	ImageModel string
	// Timeout ограничивает один вызов модели, 0 без ограничения
	Timeout time.Duration
}

// errMissingKey возвращается всеми вызовами клиента без ключа
var errMissingKey = errors.New(InvalidKeyMarker + ": GEMINI_API_KEY не задан")

// NewGeminiClient создает клиента. Пустой ключ допустим: запросы
// тогда упадут с ошибкой авторизации, которую увидит пользователь.
func NewGeminiClient(ctx context.Context, opts Options, log logger.Logger) (*GeminiClient, error) {
	var client *genai.Client
	if strings.TrimSpace(opts.APIKey) != "" {
		var err error
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  opts.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания клиента Gemini: %w", err)
		}
	}

	log.Info("🔧 Клиент Gemini настроен",
		logger.String("text_model", opts.TextModel),
		logger.String("image_model", opts.ImageModel),
		logger.String("api_key", maskKey(opts.APIKey)),
	)

	return &GeminiClient{
		client:     client,
		textModel:  opts.TextModel,
		imageModel: opts.ImageModel,
		timeout:    opts.Timeout,
		log:        log,
	}, nil
}

// TestConnection проверяет соединение с API коротким запросом
func (c *GeminiClient) TestConnection(ctx context.Context) error {
	response, err := c.GenerateText(ctx, TextRequest{Prompt: "Reply with one word: ok"})
	if err != nil {
		return fmt.Errorf("ошибка подключения к Gemini: %w", err)
	}

	c.log.Info("✅ Тест соединения пройден", logger.String("response", strings.TrimSpace(response)))
	return nil
}

// GenerateText отправляет промпт в текстовую модель и возвращает сырой ответ
func (c *GeminiClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	if c.client == nil {
		return "", errMissingKey
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		ResponseMIMEType: req.ResponseMIMEType,
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, genai.Text(req.Prompt), config)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	c.log.Debug("Ответ текстовой модели получен",
		logger.String("model", c.textModel),
		logger.Int("prompt_length", len(req.Prompt)),
		logger.Int("response_length", len(text)),
		logger.Duration("took", time.Since(start)),
	)

	return text, nil
}

// GenerateImages запрашивает картинки и возвращает их байты.
// Пустые картинки (например, отфильтрованные) пропускаются.
func (c *GeminiClient) GenerateImages(ctx context.Context, req ImageRequest) ([][]byte, error) {
	if c.client == nil {
		return nil, errMissingKey
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	config := &genai.GenerateImagesConfig{
		NumberOfImages: int32(req.Count),
		OutputMIMEType: req.MIMEType,
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, req.Prompt, config)
	if err != nil {
		return nil, err
	}

	var images [][]byte
	for _, generated := range resp.GeneratedImages {
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		images = append(images, generated.Image.ImageBytes)
	}

	c.log.Debug("Ответ модели картинок получен",
		logger.String("model", c.imageModel),
		logger.Int("images", len(images)),
		logger.Duration("took", time.Since(start)),
	)

	return images, nil
}

func (c *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func maskKey(key string) string {
	if key == "" {
		return "<не задан>"
	}
	return key[:min(8, len(key))] + "..."
}
