package main

import (
	"context"
	"fmt"

	"AIBlog/internal/ai"
	"AIBlog/internal/api"
	"AIBlog/internal/bot"
	"AIBlog/internal/config"
	"AIBlog/internal/coordinator"
	"AIBlog/internal/generator"
	"AIBlog/internal/logger"
	"AIBlog/internal/metrics"
	"AIBlog/internal/storage"

	"golang.org/x/sync/errgroup"
)

// connectionTester проверяет доступность модели перед стартом
type connectionTester interface {
	TestConnection(ctx context.Context) error
}

// app связывает все компоненты приложения
type app struct {
	cfg         *config.Config
	log         logger.Logger
	client      connectionTester
	storage     *storage.Storage
	metrics     *metrics.Metrics
	coordinator *coordinator.Coordinator
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("ошибка настройки логгера: %w", err)
	}
	log.Info("Логгер успешно запущен!")

	if !cfg.AI.HasAPIKey() {
		log.Warn("⚠️ GEMINI_API_KEY не задан: приветственный пост отключен, генерация вернет ошибку авторизации")
	}

	client, err := ai.NewGeminiClient(ctx, ai.Options{
		APIKey:     cfg.AI.APIKey,
		TextModel:  cfg.AI.TextModel,
		ImageModel: cfg.AI.ImageModel,
		Timeout:    cfg.AI.RequestTimeout,
	}, log)
	if err != nil {
		return nil, err
	}

	store := storage.NewStorage()
	m := metrics.New()

	return &app{
		cfg:     cfg,
		log:     log,
		client:  client,
		storage: store,
		metrics: m,
		coordinator: coordinator.New(coordinator.Options{
			Content:       generator.NewContentGenerator(client, log),
			Images:        generator.NewImageGenerator(client, log),
			Storage:       store,
			Metrics:       m,
			Logger:        log,
			HasCredential: cfg.AI.HasAPIKey(),
		}),
	}, nil
}

// Run запускает приветственный пост, бота и HTTP API и ждет остановки
func (a *app) Run(ctx context.Context) error {
	if !a.cfg.Telegram.Enabled() && !a.cfg.HTTP.Enabled {
		return fmt.Errorf("нечего запускать: задайте TELEGRAM_BOT_TOKEN или включите HTTP API")
	}

	if a.cfg.AI.HasAPIKey() {
		checkConnection(ctx, a.client, a.log)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// ошибка уже залогирована координатором, пользователь может создать пост сам
		_, _ = a.coordinator.GenerateWelcome(ctx)
		return nil
	})

	if a.cfg.Telegram.Enabled() {
		telegramBot, err := bot.New(a.cfg.Telegram.BotToken, a.coordinator, a.storage, bot.Options{
			AllowedChatID: a.cfg.Telegram.AllowedChatID,
			Debug:         a.cfg.Telegram.Debug,
		}, a.log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			telegramBot.Start(ctx)
			return nil
		})
	} else {
		a.log.Info("TELEGRAM_BOT_TOKEN не задан, бот отключен")
	}

	if a.cfg.HTTP.Enabled {
		server := api.NewServer(api.NewHandler(a.coordinator, a.storage), api.ServerOptions{
			Port:            a.cfg.HTTP.Port,
			Debug:           a.cfg.HTTP.Debug,
			ShutdownTimeout: a.cfg.HTTP.ShutdownTimeout,
			Metrics:         a.metrics.Handler(),
		}, a.log)
		g.Go(func() error {
			return server.Run(ctx)
		})
	}

	a.log.Info("🎉 Система полностью готова к работе!")
	return g.Wait()
}

// Close сбрасывает буферы логгера
func (a *app) Close() {
	_ = a.log.Sync()
}

// checkConnection тестирует соединение с Gemini. Ошибка не останавливает
// приложение: пользователь увидит ее при генерации.
func checkConnection(ctx context.Context, client connectionTester, log logger.Logger) bool {
	log.Info("🧪 Тестируем подключение к Gemini...")
	if err := client.TestConnection(ctx); err != nil {
		log.Warn("❌ Gemini недоступен, проверьте GEMINI_API_KEY и доступ к интернету", logger.Error(err))
		return false
	}

	log.Info("✅ Gemini подключен успешно!")
	return true
}
