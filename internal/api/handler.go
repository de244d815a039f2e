// Package api предоставляет HTTP API поверх состояния сессии.
package api

import (
	"context"
	"errors"
	"net/http"

	"AIBlog/internal/coordinator"
	"AIBlog/internal/generator"
	"AIBlog/internal/storage"
	"AIBlog/internal/topics"

	"github.com/gin-gonic/gin"
)

// PostGenerator запускает генерацию поста по теме
type PostGenerator interface {
	GenerateFromTopic(ctx context.Context, topic string) (*storage.Post, error)
}

// Handler обработчики HTTP API
type Handler struct {
	generator PostGenerator
	storage   *storage.Storage
}

// NewHandler создает обработчики
func NewHandler(gen PostGenerator, store *storage.Storage) *Handler {
	return &Handler{generator: gen, storage: store}
}

type generateRequest struct {
	Topic string `json:"topic" binding:"required"`
}

type stateResponse struct {
	Generating     bool   `json:"generating"`
	LoadingWelcome bool   `json:"loadingWelcome"`
	Error          string `json:"error,omitempty"`
	SelectedID     string `json:"selectedId,omitempty"`
	Count          int    `json:"count"`
}

// Register вешает маршруты на роутер
func (h *Handler) Register(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	v1.GET("/state", h.State)
	v1.GET("/posts", h.ListPosts)
	v1.GET("/posts/:id", h.GetPost)
	v1.POST("/posts", h.CreatePost)
	v1.GET("/selection", h.Selected)
	v1.DELETE("/selection", h.ClearSelection)
	v1.DELETE("/error", h.DismissError)
	v1.GET("/topics", h.Topics)
}

// State GET /api/v1/state
func (h *Handler) State(c *gin.Context) {
	snapshot := h.storage.Snapshot()
	c.JSON(http.StatusOK, stateResponse{
		Generating:     snapshot.Generating,
		LoadingWelcome: snapshot.LoadingWelcome,
		Error:          snapshot.Error,
		SelectedID:     snapshot.SelectedID,
		Count:          len(snapshot.Posts),
	})
}

// ListPosts GET /api/v1/posts
func (h *Handler) ListPosts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"posts": h.storage.Snapshot().Posts})
}

// GetPost GET /api/v1/posts/:id, заодно открывает пост на детальный просмотр
func (h *Handler) GetPost(c *gin.Context) {
	post, ok := h.storage.Select(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "пост не найден"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost POST /api/v1/posts
func (h *Handler) CreatePost(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "укажите тему: {\"topic\": \"...\"}"})
		return
	}

	post, err := h.generator.GenerateFromTopic(c.Request.Context(), req.Topic)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// Selected GET /api/v1/selection
func (h *Handler) Selected(c *gin.Context) {
	post, ok := h.storage.Selected()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "пост не открыт"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// ClearSelection DELETE /api/v1/selection
func (h *Handler) ClearSelection(c *gin.Context) {
	h.storage.ClearSelection()
	c.Status(http.StatusNoContent)
}

// DismissError DELETE /api/v1/error
func (h *Handler) DismissError(c *gin.Context) {
	h.storage.DismissError()
	c.Status(http.StatusNoContent)
}

// Topics GET /api/v1/topics, с ?topic= возвращает похожие темы
func (h *Handler) Topics(c *gin.Context) {
	if topic := c.Query("topic"); topic != "" {
		c.JSON(http.StatusOK, gin.H{"topic": topic, "related": topics.Related(topic)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": topics.Categories()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, coordinator.ErrEmptyTopic):
		return http.StatusBadRequest
	case errors.Is(err, coordinator.ErrGenerationInFlight):
		return http.StatusConflict
	case errors.Is(err, generator.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, generator.ErrInvalidJSON), errors.Is(err, generator.ErrInvalidStructure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
