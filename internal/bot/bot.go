package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"AIBlog/internal/coordinator"
	"AIBlog/internal/generator"
	"AIBlog/internal/logger"
	"AIBlog/internal/storage"
	"AIBlog/internal/topics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messageLimit лимит Telegram на длину сообщения (с запасом)
const messageLimit = 4000

// captionLimit лимит подписи к фото
const captionLimit = 1000

// Messenger часть Telegram API, которой пользуется бот
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// PostGenerator запускает генерацию поста по теме
type PostGenerator interface {
	GenerateFromTopic(ctx context.Context, topic string) (*storage.Post, error)
}

// Options настройки бота
type Options struct {
	// AllowedChatID если не 0, бот отвечает только в этом чате
	AllowedChatID int64
	Debug         bool
}

// Bot представляет Telegram бота
type Bot struct {
	api           Messenger
	generator     PostGenerator
	storage       *storage.Storage
	allowedChatID int64
	log           logger.Logger
	wg            sync.WaitGroup
}

// New создает нового бота
func New(token string, gen PostGenerator, store *storage.Storage, opts Options, log logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания бота: %w", err)
	}
	api.Debug = opts.Debug

	log.Info("🤖 Бот авторизован", logger.String("username", api.Self.UserName))
	return newBot(api, gen, store, opts, log), nil
}

func newBot(api Messenger, gen PostGenerator, store *storage.Storage, opts Options, log logger.Logger) *Bot {
	return &Bot{
		api:           api,
		generator:     gen,
		storage:       store,
		allowedChatID: opts.AllowedChatID,
		log:           log,
	}
}

// Start запускает бота и блокируется до отмены контекста
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("🤖 Бот запущен")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.log.Info("Бот остановлен")
			return
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	if b.allowedChatID != 0 && msg.Chat.ID != b.allowedChatID {
		b.log.Warn("Сообщение из чужого чата", logger.Int64("chat_id", msg.Chat.ID))
		b.sendMessage(msg.Chat.ID, "🚫 Этот бот работает только для своего владельца.")
		return
	}

	if !msg.IsCommand() {
		// обычный текст считаем темой поста
		b.handleGenerate(ctx, msg.Chat.ID, msg.Text)
		return
	}

	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "help", "рудз":
		b.handleHelp(msg)
	case "topics":
		b.handleTopics(msg)
	case "generate":
		b.handleGenerate(ctx, msg.Chat.ID, msg.CommandArguments())
	case "posts":
		b.handlePosts(msg)
	case "post":
		b.handlePost(msg)
	case "dismiss":
		b.handleDismiss(msg)
	default:
		b.sendMessage(msg.Chat.ID, "❌ Неизвестная команда. Используйте /help для списка команд.")
	}
}

// handleGenerate запускает генерацию в отдельной горутине,
// чтобы бот продолжал отвечать пока модель думает
func (b *Bot) handleGenerate(ctx context.Context, chatID int64, topic string) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		b.sendMessage(chatID, "❌ *Не указана тема*\n\nИспользуйте: `/generate тема поста`\nПример: `/generate The Future of AI`")
		return
	}

	progress := b.sendMessage(chatID, fmt.Sprintf("🔄 *Генерирую пост по теме:* %s\n\nЭто может занять до минуты...", escape(topic)))

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.generate(ctx, chatID, progress.MessageID, topic)
	}()
}

func (b *Bot) generate(ctx context.Context, chatID int64, progressID int, topic string) {
	post, err := b.generator.GenerateFromTopic(ctx, topic)
	if err != nil {
		b.editMessage(chatID, progressID, failureText(err))
		return
	}

	b.deleteMessage(chatID, progressID)
	b.sendPost(chatID, *post)

	if related := topics.Related(topic); len(related) > 0 {
		var sb strings.Builder
		sb.WriteString("💡 *Похожие темы:*\n")
		for _, r := range related {
			fmt.Fprintf(&sb, "`/generate %s`\n", r)
		}
		b.sendMessage(chatID, sb.String())
	}
}

func failureText(err error) string {
	switch {
	case errors.Is(err, coordinator.ErrGenerationInFlight):
		return "⏳ Предыдущий пост еще генерируется, подождите немного."
	case errors.Is(err, generator.ErrAuthentication):
		return "🔑 *Неверный API-ключ*\n\nПроверьте GEMINI\\_API\\_KEY в .env и перезапустите приложение."
	case errors.Is(err, generator.ErrInvalidJSON), errors.Is(err, generator.ErrInvalidStructure):
		return "❌ *Модель вернула некорректный ответ*\n\nПопробуйте еще раз или выберите другую тему.\n\n" + escape(err.Error())
	default:
		return "❌ *Не удалось сгенерировать пост*\n\n" + escape(err.Error())
	}
}

// handlePosts показывает список постов и закрывает открытый пост
func (b *Bot) handlePosts(msg *tgbotapi.Message) {
	b.storage.ClearSelection()
	snapshot := b.storage.Snapshot()

	var sb strings.Builder
	if snapshot.Error != "" {
		sb.WriteString("⚠️ " + escape(snapshot.Error) + "\n/dismiss - скрыть ошибку\n\n")
	}
	if snapshot.Generating {
		sb.WriteString("🔄 Генерирую новый пост...\n\n")
	}

	if len(snapshot.Posts) == 0 {
		if snapshot.LoadingWelcome {
			sb.WriteString("⏳ Готовлю приветственный пост...")
		} else {
			sb.WriteString("📭 Постов пока нет. Создайте первый: `/generate тема`")
		}
		b.sendMessage(msg.Chat.ID, sb.String())
		return
	}

	sb.WriteString("📚 *Ваши посты:*\n\n")
	for i, post := range snapshot.Posts {
		icon := "📝"
		if post.HasImage() {
			icon = "🖼"
		}
		fmt.Fprintf(&sb, "%d. %s *%s*\n_%s_\n%s\n\n", i+1, icon, escape(post.Title), post.Date, escape(post.Excerpt))
	}
	sb.WriteString("Открыть пост: `/post 1`")

	b.sendLong(msg.Chat.ID, sb.String())
}

// handlePost открывает пост по номеру в списке или по ID.
// Без аргумента повторно показывает открытый пост.
func (b *Bot) handlePost(msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		if post, ok := b.storage.Selected(); ok {
			b.sendPost(msg.Chat.ID, post)
			return
		}
		b.sendMessage(msg.Chat.ID, "❌ Укажите номер поста: `/post 1`")
		return
	}

	id := arg
	if n, err := strconv.Atoi(arg); err == nil {
		post, ok := b.storage.PostAt(n)
		if !ok {
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("❌ Поста с номером %d нет. Список: /posts", n))
			return
		}
		id = post.ID
	}

	post, ok := b.storage.Select(id)
	if !ok {
		b.sendMessage(msg.Chat.ID, "❌ Пост не найден. Список: /posts")
		return
	}

	b.sendPost(msg.Chat.ID, post)
}

func (b *Bot) handleDismiss(msg *tgbotapi.Message) {
	b.storage.DismissError()
	b.sendMessage(msg.Chat.ID, "👌 Ошибка скрыта")
}

func (b *Bot) handleTopics(msg *tgbotapi.Message) {
	var sb strings.Builder
	sb.WriteString("💡 *Идеи для постов*\n")
	for _, category := range topics.Categories() {
		fmt.Fprintf(&sb, "\n*%s*\n", escape(category.Name))
		for _, topic := range category.Topics {
			fmt.Fprintf(&sb, "• `/generate %s`\n", topic)
		}
	}

	b.sendMessage(msg.Chat.ID, sb.String())
}

// sendPost отправляет пост: фото с заголовком (если есть картинка), затем текст
func (b *Bot) sendPost(chatID int64, post storage.Post) {
	header := fmt.Sprintf("*%s*\n_%s_", escape(post.Title), post.Date)

	if image, ok := generator.DecodeDataURI(post.ImageURL); ok {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: post.ID + ".jpg", Bytes: image})
		photo.Caption = truncate(header, captionLimit)
		photo.ParseMode = tgbotapi.ModeMarkdown
		if _, err := b.api.Send(photo); err != nil {
			b.log.Error("Ошибка отправки фото", logger.Error(err), logger.String("post_id", post.ID))
		} else {
			b.sendLong(chatID, escape(post.Content))
			return
		}
	}

	b.sendLong(chatID, header+"\n\n"+escape(post.Content))
}

// sendLong режет текст на части под лимит Telegram
func (b *Bot) sendLong(chatID int64, text string) {
	for _, part := range splitText(text, messageLimit) {
		b.sendMessage(chatID, part)
	}
}

// sendMessage отправляет сообщение
func (b *Bot) sendMessage(chatID int64, text string) tgbotapi.Message {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	message, err := b.api.Send(msg)
	if err != nil {
		b.log.Error("Ошибка отправки сообщения", logger.Error(err), logger.Int64("chat_id", chatID))
	}

	return message
}

// editMessage редактирует существующее сообщение
func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("Ошибка редактирования сообщения", logger.Error(err))
	}
}

// deleteMessage удаляет сообщение
func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Error("Ошибка удаления сообщения", logger.Error(err))
	}
}

func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, text)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// splitText делит текст на куски не длиннее limit рун, стараясь резать по абзацам
func splitText(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
