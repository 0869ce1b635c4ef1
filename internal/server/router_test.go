package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"board/internal/config"
	"board/internal/models"
	"board/internal/service"
	"board/web"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, author, title, text string) (string, error) {
	args := m.Called(ctx, author, title, text)
	return args.String(0), args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func newMockedApp(t *testing.T, posts *MockPostRepository, comments *MockCommentRepository) *fiber.App {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := &Server{
		config: &config.Config{},
		redis:  rdb,
		views:  html.NewFileSystem(web.Templates(), ".html"),
		board:  service.NewBoardService(posts, comments),
	}
	return s.NewApp()
}

func TestEndpoint_String(t *testing.T) {
	assert.Equal(t, "index", EndpointIndex.String())
	assert.Equal(t, "new_post", EndpointNewPost.String())
	assert.Equal(t, "post_detail", EndpointPostDetail.String())
	assert.Equal(t, "endpoint(7)", Endpoint(7).String())
}

func TestRoutes_EveryEndpointHasHandler(t *testing.T) {
	s := &Server{}
	table := s.endpointTable()
	for _, rt := range routes {
		assert.Contains(t, table, rt.endpoint, "route %s", rt.path)
	}
}

func TestRouter_MethodsAndUnknownPaths(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name           string
		method         string
		target         string
		expectedStatus int
		bodyContains   string
	}{
		{name: "head index", method: http.MethodHead, target: "/", expectedStatus: http.StatusOK},
		{name: "put index is not allowed", method: http.MethodPut, target: "/", expectedStatus: http.StatusMethodNotAllowed, bodyContains: "Method Not Allowed"},
		{name: "delete detail is not allowed", method: http.MethodDelete, target: "/1", expectedStatus: http.StatusMethodNotAllowed},
		{name: "nested path", method: http.MethodGet, target: "/a/b", expectedStatus: http.StatusNotFound, bodyContains: "Page not found"},
		{name: "missing static file", method: http.MethodGet, target: "/static/missing.css", expectedStatus: http.StatusNotFound, bodyContains: "Page not found"},
		{name: "new is not a post id", method: http.MethodGet, target: "/new", expectedStatus: http.StatusOK, bodyContains: `action="/new"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, app, tt.method, tt.target, nil)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.bodyContains != "" {
				assert.Contains(t, body, tt.bodyContains)
			}
		})
	}
}

func TestRouter_StaticFiles(t *testing.T) {
	t.Run("served when enabled", func(t *testing.T) {
		app, _ := newTestApp(t)

		resp, body := doRequest(t, app, http.MethodGet, "/static/style.css", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/css")
		assert.NotEmpty(t, body)
	})

	t.Run("not found when disabled", func(t *testing.T) {
		app, _ := newTestAppWithConfig(t, &config.Config{WithStatic: false})

		resp, _ := doRequest(t, app, http.MethodGet, "/static/style.css", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRouter_UnexpectedErrorsBecome500(t *testing.T) {
	posts := new(MockPostRepository)
	comments := new(MockCommentRepository)
	posts.On("List", mock.Anything).Return(nil, errors.New("connection reset"))
	posts.On("GetByID", mock.Anything, "1").Return(&models.Post{ID: "1", Title: "Hi"}, nil)
	comments.On("ListByPost", mock.Anything, "1").Return(nil, errors.New("bad comment entry"))

	app := newMockedApp(t, posts, comments)

	resp, body := doRequest(t, app, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal Server Error", body)
	assert.NotContains(t, body, "connection reset")

	resp, _ = doRequest(t, app, http.MethodGet, "/1", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	posts.AssertExpectations(t)
	comments.AssertExpectations(t)
}

func TestRouter_CommentStoreFailure(t *testing.T) {
	posts := new(MockPostRepository)
	comments := new(MockCommentRepository)
	posts.On("GetByID", mock.Anything, "1").Return(&models.Post{ID: "1", Title: "Hi"}, nil)
	comments.On("ListByPost", mock.Anything, "1").Return([]*models.Comment{}, nil)
	comments.On("Create", mock.Anything, &models.Comment{Author: "Bob", Text: "nice", PostID: "1"}).
		Return(errors.New("list is full"))

	app := newMockedApp(t, posts, comments)

	resp, _ := doRequest(t, app, http.MethodPost, "/1", url.Values{"author": {"Bob"}, "text": {"nice"}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	comments.AssertExpectations(t)
}

func TestRouter_RateLimitAppliesToSubmissions(t *testing.T) {
	app, _ := newTestAppWithConfig(t, &config.Config{RateLimitMax: 1, RateLimitWindowSeconds: 60})

	resp, _ := doRequest(t, app, http.MethodPost, "/new", url.Values{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodPost, "/new", url.Values{})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body, "Too many requests")

	resp, _ = doRequest(t, app, http.MethodGet, "/new", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRespond_HTTPErrorPassesThrough(t *testing.T) {
	s := &Server{}
	app := fiber.New(fiber.Config{ErrorHandler: s.ErrorHandler})
	app.Get("/gone", s.dispatch(func(c *fiber.Ctx) Outcome {
		return HTTPError(fiber.StatusGone, "post removed")
	}))

	resp, body := doRequest(t, app, http.MethodGet, "/gone", nil)
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Equal(t, "post removed", body)
}

func TestHealthChecks(t *testing.T) {
	app, mr := newTestApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"up"`)

	resp, body = doRequest(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"redis":"healthy"`)

	mr.Close()

	resp, body = doRequest(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, `"redis":"unhealthy"`)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	createPost(t, app, "Alice", "Hi", "world")

	resp, _ := doRequest(t, app, http.MethodPost, "/1", url.Values{"author": {"Bob"}, "text": {"nice"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "board_posts_created_total")
	assert.Contains(t, body, "board_comments_created_total")
}

func TestRouter_DefaultConfigDoesNotThrottleSubmissions(t *testing.T) {
	app, mr := newTestAppWithConfig(t, &config.Config{RateLimitWindowSeconds: 60})

	for i := 0; i < 105; i++ {
		createPost(t, app, "Alice", "Hi", "world")
	}

	counter, err := mr.Get("0")
	require.NoError(t, err)
	assert.Equal(t, "105", counter)
}

func TestRouter_PercentEncodedPostID(t *testing.T) {
	app, _ := newTestApp(t)
	createPost(t, app, "Alice", "Hi", "world")

	resp, body := doRequest(t, app, http.MethodGet, "/%31", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "world")
}

func TestNewServerWithDeps_RequiresDependencies(t *testing.T) {
	_, err := NewServerWithDeps(nil, redis.NewClient(&redis.Options{}))
	require.Error(t, err)

	_, err = NewServerWithDeps(&config.Config{}, nil)
	require.Error(t, err)
}
