// Package coordinator собирает пост: текст, затем (если есть промпт)
// картинка, затем запись в состояние сессии.
package coordinator

import (
	"context"
	"errors"
	"strings"
	"time"

	"AIBlog/internal/generator"
	"AIBlog/internal/logger"
	"AIBlog/internal/metrics"
	"AIBlog/internal/storage"

	"github.com/google/uuid"
)

var (
	// ErrEmptyTopic тема пустая после обрезки пробелов
	ErrEmptyTopic = errors.New("тема не указана")
	// ErrGenerationInFlight предыдущая генерация еще не закончилась
	ErrGenerationInFlight = errors.New("генерация уже идет")
)

// ContentSource генерирует текст поста
type ContentSource interface {
	Generate(ctx context.Context, topic string) (*generator.Content, error)
	GenerateWelcome(ctx context.Context) (*generator.Content, error)
}

// ImageSource генерирует иллюстрацию, "" если картинки нет
type ImageSource interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options зависимости координатора
type Options struct {
	Content ContentSource
	Images  ImageSource
	Storage *storage.Storage
	Metrics *metrics.Metrics
	Logger  logger.Logger
	// HasCredential без ключа приветственный пост не генерируется
	HasCredential bool
	Now           func() time.Time
	NewID         func() string
}

// Coordinator управляет жизненным циклом генерации постов
type Coordinator struct {
	content       ContentSource
	images        ImageSource
	storage       *storage.Storage
	metrics       *metrics.Metrics
	log           logger.Logger
	hasCredential bool
	now           func() time.Time
	newID         func() string
}

// New создает координатор
func New(opts Options) *Coordinator {
	c := &Coordinator{
		content:       opts.Content,
		images:        opts.Images,
		storage:       opts.Storage,
		metrics:       opts.Metrics,
		log:           opts.Logger,
		hasCredential: opts.HasCredential,
		now:           opts.Now,
		newID:         opts.NewID,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = newPostID
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	return c
}

// GenerateFromTopic генерирует пост по теме и кладет его в начало списка.
// Пока идет одна генерация, новые запросы ничего не меняют и получают
// ErrGenerationInFlight. При ошибке список не трогается, а текст ошибки
// показывается пользователю.
func (c *Coordinator) GenerateFromTopic(ctx context.Context, topic string) (*storage.Post, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	if !c.storage.BeginGeneration() {
		c.metrics.ObserveGeneration(metrics.KindTopic, metrics.ResultBusy, 0)
		c.log.Info("⏳ Генерация уже идет, запрос пропущен", logger.String("topic", topic))
		return nil, ErrGenerationInFlight
	}
	defer c.storage.EndGeneration()

	c.storage.DismissError()
	start := c.now()
	log := c.log.With(logger.String("topic", topic))
	log.Info("✍️ Генерирую пост")

	post, err := c.assemble(ctx, topic)
	if err != nil {
		c.metrics.ObserveGeneration(metrics.KindTopic, metrics.ResultError, c.now().Sub(start))
		c.storage.SetError(err.Error())
		log.Error("❌ Не удалось сгенерировать пост", logger.Error(err))
		return nil, err
	}

	c.storage.Prepend(post)
	c.metrics.ObserveGeneration(metrics.KindTopic, metrics.ResultSuccess, c.now().Sub(start))
	log.Info("✅ Пост готов",
		logger.String("post_id", post.ID),
		logger.String("title", post.Title),
		logger.Bool("with_image", post.HasImage()),
	)

	return &post, nil
}

func (c *Coordinator) assemble(ctx context.Context, topic string) (storage.Post, error) {
	content, err := c.content.Generate(ctx, topic)
	if err != nil {
		return storage.Post{}, err
	}

	var imageURL string
	if content.ImagePrompt != "" {
		imageURL, err = c.images.Generate(ctx, content.ImagePrompt)
		if err != nil {
			c.metrics.ObserveImage(metrics.ImageAuth)
			return storage.Post{}, err
		}
		if imageURL == "" {
			c.metrics.ObserveImage(metrics.ImageNone)
		} else {
			c.metrics.ObserveImage(metrics.ImageAttached)
		}
	}

	return storage.NewPost(c.newID(), content.Title, content.Content, c.now(), imageURL), nil
}

// GenerateWelcome генерирует приветственный пост без картинки. Срабатывает
// один раз за сессию, только при пустом списке и настроенном ключе.
// Ошибки не показываются пользователю: он может сгенерировать пост сам.
// Возвращает nil, nil если генерация не требовалась.
func (c *Coordinator) GenerateWelcome(ctx context.Context) (*storage.Post, error) {
	if !c.hasCredential {
		c.log.Info("API-ключ не задан, приветственный пост пропущен")
		c.metrics.ObserveGeneration(metrics.KindWelcome, metrics.ResultSkipped, 0)
		return nil, nil
	}

	if !c.storage.BeginWelcome() {
		c.metrics.ObserveGeneration(metrics.KindWelcome, metrics.ResultSkipped, 0)
		return nil, nil
	}
	defer c.storage.EndWelcome()

	start := c.now()
	content, err := c.content.GenerateWelcome(ctx)
	if err != nil {
		c.metrics.ObserveGeneration(metrics.KindWelcome, metrics.ResultError, c.now().Sub(start))
		c.log.Warn("⚠️ Приветственный пост не сгенерирован", logger.Error(err))
		return nil, err
	}

	post := storage.NewPost(c.newID(), content.Title, content.Content, c.now(), "")
	// если пользователь успел сгенерировать свой пост, приветствие уходит в конец
	c.storage.Append(post)
	c.metrics.ObserveGeneration(metrics.KindWelcome, metrics.ResultSuccess, c.now().Sub(start))
	c.log.Info("👋 Приветственный пост готов", logger.String("post_id", post.ID))

	return &post, nil
}

func newPostID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
