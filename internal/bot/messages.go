package bot

import (
	"fmt"
	"strings"

	"AIBlog/internal/topics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleStart обрабатывает команду /start
func (b *Bot) handleStart(msg *tgbotapi.Message) {
	var sb strings.Builder
	sb.WriteString(`👋 *Добро пожаловать в AI Blog!*

Я пишу посты для блога на любую тему: заголовок, текст и, если получится, иллюстрацию.

📋 *Доступные команды:*
/generate <тема> - создать пост
/posts - список постов
/post <номер> - открыть пост
/topics - идеи для постов
/help - справка

💡 *Попробуйте:*
`)
	for _, topic := range topics.Suggestions() {
		fmt.Fprintf(&sb, "`/generate %s`\n", topic)
	}

	if snapshot := b.storage.Snapshot(); snapshot.LoadingWelcome {
		sb.WriteString("\n⏳ Готовлю для вас приветственный пост...")
	}

	b.sendMessage(msg.Chat.ID, sb.String())
}

// handleHelp обрабатывает команду /help
func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	helpText := `📖 *Справка по командам*

*/generate <тема>* - сгенерировать пост по теме
*/posts* - показать все посты (новые сверху)
*/post <номер>* - открыть пост целиком
*/topics* - подборка тем
*/dismiss* - скрыть сообщение об ошибке

Можно просто написать тему обычным сообщением.

⚡ *Особенности работы:*
- Одновременно генерируется только один пост
- Картинка добавляется, если модель смогла ее нарисовать
- Посты живут до перезапуска приложения`

	b.sendMessage(msg.Chat.ID, helpText)
}
