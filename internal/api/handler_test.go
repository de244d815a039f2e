package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"AIBlog/internal/ai"
	"AIBlog/internal/api"
	"AIBlog/internal/coordinator"
	"AIBlog/internal/generator"
	"AIBlog/internal/logger"
	"AIBlog/internal/metrics"
	"AIBlog/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textModel struct {
	response string
	err      error
}

func (m *textModel) GenerateText(_ context.Context, _ ai.TextRequest) (string, error) {
	return m.response, m.err
}

type imageModel struct{}

func (imageModel) GenerateImages(_ context.Context, _ ai.ImageRequest) ([][]byte, error) {
	return nil, nil
}

type busyGenerator struct{}

func (busyGenerator) GenerateFromTopic(_ context.Context, _ string) (*storage.Post, error) {
	return nil, coordinator.ErrGenerationInFlight
}

func newRouter(t *testing.T, gen api.PostGenerator, store *storage.Storage) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return api.NewRouter(api.NewHandler(gen, store), metrics.New().Handler(), logger.NewNop())
}

func newCoordinator(text *textModel, store *storage.Storage) *coordinator.Coordinator {
	log := logger.NewNop()
	return coordinator.New(coordinator.Options{
		Content:       generator.NewContentGenerator(text, log),
		Images:        generator.NewImageGenerator(imageModel{}, log),
		Storage:       store,
		Logger:        log,
		HasCredential: true,
		Now:           func() time.Time { return time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC) },
		NewID:         func() string { return "post-1" },
	})
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	var err error
	if body != "" {
		req, err = http.NewRequestWithContext(t.Context(), method, path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequestWithContext(t.Context(), method, path, http.NoBody)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newRouter(t, busyGenerator{}, storage.NewStorage())

	w := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")

	w = do(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreatePost_Success(t *testing.T) {
	store := storage.NewStorage()
	router := newRouter(t, newCoordinator(&textModel{response: `{"title":"T","content":"C"}`}, store), store)

	w := do(t, router, http.MethodPost, "/api/v1/posts", `{"topic":"The Future of AI"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var post storage.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, "T", post.Title)
	assert.Equal(t, "C...", post.Excerpt)
	assert.Equal(t, "October 17, 2026", post.Date)

	w = do(t, router, http.MethodGet, "/api/v1/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Posts []storage.Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Posts, 1)
	assert.Equal(t, "post-1", list.Posts[0].ID)
}

func TestCreatePost_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		text       *textModel
		body       string
		wantStatus int
	}{
		{"missing body", &textModel{}, `{}`, http.StatusBadRequest},
		{"blank topic", &textModel{}, `{"topic":"   "}`, http.StatusBadRequest},
		{"invalid key", &textModel{err: errors.New("API key not valid. Please pass a valid API key.")}, `{"topic":"x"}`, http.StatusUnauthorized},
		{"malformed json", &textModel{response: "not json"}, `{"topic":"x"}`, http.StatusUnprocessableEntity},
		{"missing fields", &textModel{response: `{"title":"T"}`}, `{"topic":"x"}`, http.StatusUnprocessableEntity},
		{"upstream failure", &textModel{err: errors.New("503 unavailable")}, `{"topic":"x"}`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewStorage()
			router := newRouter(t, newCoordinator(tt.text, store), store)

			w := do(t, router, http.MethodPost, "/api/v1/posts", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), "error")
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestCreatePost_InFlight(t *testing.T) {
	router := newRouter(t, busyGenerator{}, storage.NewStorage())

	w := do(t, router, http.MethodPost, "/api/v1/posts", `{"topic":"x"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetPost_SelectsAndClears(t *testing.T) {
	store := storage.NewStorage()
	store.Prepend(storage.Post{ID: "a", Title: "A"})
	router := newRouter(t, busyGenerator{}, store)

	w := do(t, router, http.MethodGet, "/api/v1/posts/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/selection", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/posts/a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a", store.Snapshot().SelectedID)

	w = do(t, router, http.MethodGet, "/api/v1/selection", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"A"`)

	w = do(t, router, http.MethodDelete, "/api/v1/selection", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.Snapshot().SelectedID)

	w = do(t, router, http.MethodGet, "/api/v1/selection", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStateAndDismissError(t *testing.T) {
	store := storage.NewStorage()
	store.SetError("boom")
	router := newRouter(t, busyGenerator{}, store)

	w := do(t, router, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	var state map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "boom", state["error"])
	assert.Equal(t, false, state["generating"])

	w = do(t, router, http.MethodDelete, "/api/v1/error", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.ErrorMessage())
}

func TestTopics(t *testing.T) {
	router := newRouter(t, busyGenerator{}, storage.NewStorage())

	w := do(t, router, http.MethodGet, "/api/v1/topics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Technology")
}

func TestTopics_Related(t *testing.T) {
	router := newRouter(t, busyGenerator{}, storage.NewStorage())

	w := do(t, router, http.MethodGet, "/api/v1/topics?topic=The+Future+of+AI", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Related []string `json:"related"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Related)
	assert.NotContains(t, resp.Related, "The Future of AI")
}
