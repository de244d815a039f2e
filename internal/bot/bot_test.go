package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"AIBlog/internal/ai"
	"AIBlog/internal/coordinator"
	"AIBlog/internal/generator"
	"AIBlog/internal/logger"
	"AIBlog/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID int64 = 42

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
}

func (f *fakeMessenger) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID, Chat: &tgbotapi.Chat{ID: chatID}}, nil
}

func (f *fakeMessenger) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeMessenger) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeMessenger) StopReceivingUpdates() {}

// texts собирает тексты отправленных и отредактированных сообщений
func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		case tgbotapi.PhotoConfig:
			out = append(out, m.Caption)
		}
	}
	return out
}

func (f *fakeMessenger) photos() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.sent {
		if _, ok := c.(tgbotapi.PhotoConfig); ok {
			n++
		}
	}
	return n
}

type fakeGenerator struct {
	post  *storage.Post
	err   error
	calls int
}

func (f *fakeGenerator) GenerateFromTopic(_ context.Context, topic string) (*storage.Post, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	post := *f.post
	return &post, nil
}

func newTestBot(gen PostGenerator, store *storage.Storage, allowed int64) (*Bot, *fakeMessenger) {
	api := &fakeMessenger{}
	return newBot(api, gen, store, Options{AllowedChatID: allowed}, logger.NewNop()), api
}

func command(text string) tgbotapi.Update {
	cmd := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func joined(api *fakeMessenger) string {
	return strings.Join(api.texts(), "\n---\n")
}

func TestGenerate_SendsPost(t *testing.T) {
	gen := &fakeGenerator{post: &storage.Post{ID: "p1", Title: "Hello", Content: "World", Date: "October 17, 2026"}}
	b, api := newTestBot(gen, storage.NewStorage(), 0)

	b.handleUpdate(context.Background(), command("/generate The Future of AI"))
	b.wg.Wait()

	assert.Equal(t, 1, gen.calls)
	out := joined(api)
	assert.Contains(t, out, "Генерирую пост")
	assert.Contains(t, out, "*Hello*")
	assert.Contains(t, out, "World")
	assert.Contains(t, out, "Похожие темы")

	require.Len(t, api.requests, 1)
	_, isDelete := api.requests[0].(tgbotapi.DeleteMessageConfig)
	assert.True(t, isDelete, "progress message must be deleted")
}

func TestGenerate_PlainTextIsTopic(t *testing.T) {
	gen := &fakeGenerator{post: &storage.Post{ID: "p1", Title: "T", Content: "C"}}
	b, _ := newTestBot(gen, storage.NewStorage(), 0)

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "Urban gardening",
		Chat: &tgbotapi.Chat{ID: chatID},
	}})
	b.wg.Wait()

	assert.Equal(t, 1, gen.calls)
}

func TestGenerate_WithImageSendsPhoto(t *testing.T) {
	gen := &fakeGenerator{post: &storage.Post{
		ID: "p1", Title: "T", Content: "C",
		ImageURL: generator.DataURI([]byte("XYZ")),
	}}
	b, api := newTestBot(gen, storage.NewStorage(), 0)

	b.handleUpdate(context.Background(), command("/generate x"))
	b.wg.Wait()

	assert.Equal(t, 1, api.photos())
}

func TestGenerate_EmptyTopic(t *testing.T) {
	gen := &fakeGenerator{}
	b, api := newTestBot(gen, storage.NewStorage(), 0)

	b.handleUpdate(context.Background(), command("/generate"))
	b.wg.Wait()

	assert.Equal(t, 0, gen.calls)
	assert.Contains(t, joined(api), "Не указана тема")
}

type textModel struct {
	calls int
}

func (m *textModel) GenerateText(context.Context, ai.TextRequest) (string, error) {
	m.calls++
	return `{"title":"T","content":"C"}`, nil
}

type imageModel struct{}

func (imageModel) GenerateImages(context.Context, ai.ImageRequest) ([][]byte, error) {
	return nil, nil
}

func TestGenerate_InFlightIsRejected(t *testing.T) {
	store := storage.NewStorage()
	require.True(t, store.BeginGeneration())

	text := &textModel{}
	log := logger.NewNop()
	coord := coordinator.New(coordinator.Options{
		Content: generator.NewContentGenerator(text, log),
		Images:  generator.NewImageGenerator(imageModel{}, log),
		Storage: store,
		Logger:  log,
	})
	b, api := newTestBot(coord, store, 0)

	before := store.Snapshot()
	b.handleUpdate(context.Background(), command("/generate x"))
	b.wg.Wait()

	assert.Equal(t, 0, text.calls)
	assert.Equal(t, before, store.Snapshot())
	assert.Contains(t, joined(api), "еще генерируется")
	assert.Empty(t, api.requests, "progress message is edited, not deleted")
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth", generator.ErrAuthentication, "Неверный API-ключ"},
		{"parse", generator.ErrInvalidJSON, "некорректный ответ"},
		{"busy", coordinator.ErrGenerationInFlight, "еще генерируется"},
		{"upstream", errors.New("503"), "Не удалось сгенерировать пост"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, api := newTestBot(&fakeGenerator{err: tt.err}, storage.NewStorage(), 0)

			b.handleUpdate(context.Background(), command("/generate x"))
			b.wg.Wait()

			assert.Contains(t, joined(api), tt.want)
			assert.Empty(t, api.requests, "progress message is edited, not deleted")
		})
	}
}

func TestPosts_ListAndOpen(t *testing.T) {
	store := storage.NewStorage()
	store.Prepend(storage.Post{ID: "old", Title: "Old", Content: "old body", Excerpt: "old body..."})
	store.Prepend(storage.Post{ID: "new", Title: "New", Content: "new body", Excerpt: "new body..."})
	b, api := newTestBot(&fakeGenerator{}, store, 0)

	b.handleUpdate(context.Background(), command("/posts"))
	out := joined(api)
	assert.Less(t, strings.Index(out, "New"), strings.Index(out, "Old"), "newest first")

	b.handleUpdate(context.Background(), command("/post 2"))
	assert.Equal(t, "old", store.Snapshot().SelectedID)
	assert.Contains(t, joined(api), "old body")

	b.handleUpdate(context.Background(), command("/post new"))
	assert.Equal(t, "new", store.Snapshot().SelectedID)

	b.handleUpdate(context.Background(), command("/post 9"))
	assert.Contains(t, joined(api), "Поста с номером 9 нет")

	b.handleUpdate(context.Background(), command("/posts"))
	assert.Empty(t, store.Snapshot().SelectedID)
}

func TestPosts_EmptyAndError(t *testing.T) {
	store := storage.NewStorage()
	store.SetError("boom")
	b, api := newTestBot(&fakeGenerator{}, store, 0)

	b.handleUpdate(context.Background(), command("/posts"))
	out := joined(api)
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "Постов пока нет")

	b.handleUpdate(context.Background(), command("/dismiss"))
	assert.Empty(t, store.ErrorMessage())
}

func TestAllowedChat(t *testing.T) {
	gen := &fakeGenerator{}
	b, api := newTestBot(gen, storage.NewStorage(), 7)

	b.handleUpdate(context.Background(), command("/generate x"))
	b.wg.Wait()

	assert.Equal(t, 0, gen.calls)
	assert.Contains(t, joined(api), "🚫")
}

func TestStartHelpTopics(t *testing.T) {
	b, api := newTestBot(&fakeGenerator{}, storage.NewStorage(), 0)

	b.handleUpdate(context.Background(), command("/start"))
	b.handleUpdate(context.Background(), command("/help"))
	b.handleUpdate(context.Background(), command("/topics"))
	b.handleUpdate(context.Background(), command("/unknown"))

	out := joined(api)
	assert.Contains(t, out, "Добро пожаловать")
	assert.Contains(t, out, "Справка по командам")
	assert.Contains(t, out, "Technology")
	assert.Contains(t, out, "Неизвестная команда")
}

func TestSplitText(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitText("short", 10))

	text := strings.Repeat("a", 6) + "\n" + strings.Repeat("b", 6)
	parts := splitText(text, 10)
	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("a", 6)+"\n", parts[0])
	assert.Equal(t, strings.Repeat("b", 6), parts[1])
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestPost_WithoutArgumentShowsSelected(t *testing.T) {
	store := storage.NewStorage()
	store.Prepend(storage.Post{ID: "a", Title: "A", Content: "body of a"})
	b, api := newTestBot(&fakeGenerator{}, store, 0)

	b.handleUpdate(context.Background(), command("/post"))
	assert.Contains(t, joined(api), "Укажите номер поста")

	_, ok := store.Select("a")
	require.True(t, ok)

	b.handleUpdate(context.Background(), command("/post"))
	assert.Contains(t, joined(api), "body of a")
}
