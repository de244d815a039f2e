package storage

import (
	"time"
	"unicode/utf8"
)

// ExcerptLength длина превью поста в символах
const ExcerptLength = 150

// DateLayout формат даты создания поста
const DateLayout = "January 2, 2006"

// Post сгенерированный пост. После создания не меняется.
type Post struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Excerpt  string `json:"excerpt"`
	Date     string `json:"date"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// NewPost собирает пост: считает превью и форматирует дату
func NewPost(id, title, content string, createdAt time.Time, imageURL string) Post {
	return Post{
		ID:       id,
		Title:    title,
		Content:  content,
		Excerpt:  Excerpt(content),
		Date:     createdAt.Format(DateLayout),
		ImageURL: imageURL,
	}
}

// HasImage есть ли у поста иллюстрация
func (p Post) HasImage() bool {
	return p.ImageURL != ""
}

// Excerpt первые ExcerptLength символов текста и многоточие
func Excerpt(content string) string {
	if utf8.RuneCountInString(content) <= ExcerptLength {
		return content + "..."
	}

	runes := []rune(content)
	return string(runes[:ExcerptLength]) + "..."
}
