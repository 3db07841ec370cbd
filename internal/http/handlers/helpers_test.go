package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/http/middleware"
	"github.com/tbourn/library-community/internal/repo"
	"github.com/tbourn/library-community/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

// ---------- test DB ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers-%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

// ---------- router under test ----------

type testEnv struct {
	db *gorm.DB
	r  *gin.Engine
}

// newEnv wires real services over SQLite. override may replace any of them.
func newEnv(t *testing.T, override func(*Deps)) *testEnv {
	t.Helper()
	db := newHandlerDB(t)
	idem := services.NewIdempotencyService(db, time.Hour)
	deps := Deps{
		Discussions: services.NewDiscussionService(db, 0),
		Comments:    services.NewCommentService(db),
		Likes:       services.NewLikeService(db),
		Presence:    services.NewPresenceService(db, 0),
		Stats:       services.NewStatsService(db, nil),
		Idempotency: idem,
	}
	if override != nil {
		override(&deps)
	}
	h := New(deps)

	r := gin.New()
	g := r.Group("/community")
	g.Use(
		middleware.Auth(middleware.AuthOptions{HeaderFallback: true}),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{Lookup: idem.Lookup},
			middleware.RouteScopes(map[string]middleware.ScopeFunc{
				"/community/discussions":              middleware.StaticScope(domain.IdempotencyScopeDiscussions),
				"/community/discussions/:id/comments": middleware.ParamScope("comments", "id"),
			})),
	)
	g.GET("/discussions", h.ListDiscussions)
	g.POST("/discussions", h.CreateDiscussion)
	g.GET("/discussions/:id", h.GetDiscussion)
	g.GET("/discussions/:id/comments", h.ListComments)
	g.POST("/discussions/:id/comments", h.AddComment)
	g.POST("/discussions/:id/like", h.ToggleLike)
	g.GET("/users/online", h.ListOnline)
	g.PUT("/users/online", h.SetPresence)
	g.POST("/users/online", h.SetPresence)
	g.GET("/stats", h.GetStats)

	return &testEnv{db: db, r: r}
}

// reader returns the fallback identity headers for user.
func reader(id, name string) map[string]string {
	return map[string]string{
		middleware.HeaderUserID:   id,
		middleware.HeaderUserName: name,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v; body=%s", err, w.Body.String())
	}
	return v
}

func wantError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d; body=%s", w.Code, status, w.Body.String())
	}
	if er := decode[ErrorResponse](t, w); er.Code != code {
		t.Fatalf("code=%q want %q", er.Code, code)
	}
}

const (
	validTitle   = "Best sci-fi books of 2024"
	validContent = "Which science fiction novels would you recommend this year?"
)

func (e *testEnv) createDiscussion(t *testing.T, hdr map[string]string) domain.DiscussionView {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"content":%q,"category":"ficcao"}`, validTitle, validContent)
	w := e.do(t, http.MethodPost, "/community/discussions", body, hdr)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	return decode[domain.DiscussionView](t, w)
}

// ---------- failing fakes ----------

type failingPresence struct{ err error }

func (f failingPresence) SetOnline(context.Context, services.Actor, bool) error { return f.err }
func (f failingPresence) ListOnline(context.Context, int) ([]domain.OnlineMember, error) {
	return nil, f.err
}

type failingStats struct{ err error }

func (f failingStats) Stats(context.Context) (*domain.CommunityStats, error) { return nil, f.err }

type failingRecorder struct{ calls int }

func (f *failingRecorder) Remember(context.Context, string, string, string, string, int) error {
	f.calls++
	return services.ErrStorage
}
