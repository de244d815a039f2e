// Package storage хранит состояние сессии в памяти: список постов
// (новые сверху) и флаги интерфейса.
package storage

import "sync"

// State снимок состояния сессии
type State struct {
	Posts            []Post `json:"posts"`
	Generating       bool   `json:"generating"`
	LoadingWelcome   bool   `json:"loadingWelcome"`
	WelcomeAttempted bool   `json:"welcomeAttempted"`
	SelectedID       string `json:"selectedId,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Storage контейнер состояния. Все изменения идут через его методы.
type Storage struct {
	state State
	mu    sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{}
}

// BeginGeneration захватывает флаг генерации. false если генерация уже идет.
func (s *Storage) BeginGeneration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Generating {
		return false
	}
	s.state.Generating = true
	return true
}

// EndGeneration снимает флаг генерации
func (s *Storage) EndGeneration() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Generating = false
}

// BeginWelcome разрешает приветственный пост один раз и только при пустом списке
func (s *Storage) BeginWelcome() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.WelcomeAttempted || len(s.state.Posts) > 0 {
		return false
	}
	s.state.WelcomeAttempted = true
	s.state.LoadingWelcome = true
	return true
}

// EndWelcome снимает флаг загрузки приветственного поста
func (s *Storage) EndWelcome() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.LoadingWelcome = false
}

// Prepend добавляет пост в начало списка
func (s *Storage) Prepend(post Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Posts = append([]Post{post}, s.state.Posts...)
}

// Append добавляет пост в конец списка
func (s *Storage) Append(post Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Posts = append(s.state.Posts, post)
}

// SetError показывает ошибку пользователю
func (s *Storage) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Error = message
}

// DismissError скрывает ошибку
func (s *Storage) DismissError() {
	s.SetError("")
}

// ErrorMessage текущая ошибка, "" если ее нет
func (s *Storage) ErrorMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Error
}

// Select открывает пост на детальный просмотр
func (s *Storage) Select(id string) (Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.find(id)
	if ok {
		s.state.SelectedID = id
	}
	return post, ok
}

// ClearSelection закрывает детальный просмотр
func (s *Storage) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SelectedID = ""
}

// Selected текущий открытый пост
func (s *Storage) Selected() (Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.SelectedID == "" {
		return Post{}, false
	}
	return s.find(s.state.SelectedID)
}

// PostAt пост по порядковому номеру в списке, начиная с 1
func (s *Storage) PostAt(n int) (Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n < 1 || n > len(s.state.Posts) {
		return Post{}, false
	}
	return s.state.Posts[n-1], true
}

// Len количество постов
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.state.Posts)
}

// Snapshot копия состояния. Изменения копии не влияют на хранилище.
func (s *Storage) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state
	snapshot.Posts = make([]Post, len(s.state.Posts))
	copy(snapshot.Posts, s.state.Posts)
	return snapshot
}

func (s *Storage) find(id string) (Post, bool) {
	for _, post := range s.state.Posts {
		if post.ID == id {
			return post, true
		}
	}
	return Post{}, false
}
