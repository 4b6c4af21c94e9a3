package library

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangashelf/internal/auth"
	"mangashelf/pkg/database"
	"mangashelf/pkg/models"
)

type fixture struct {
	router *gin.Engine
	repo   *Repo
	token  string
	userID string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "lib.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := auth.NewRepo(db)
	u := auth.User{ID: "u1", Username: "reader", Email: "r@example.com", PasswordHash: "x"}
	require.NoError(t, users.CreateUser(context.Background(), u))

	tokens := auth.TokenService{Secret: []byte("s"), Duration: time.Hour}
	token, _, err := tokens.Sign(&u)
	require.NoError(t, err)

	repo := NewRepo(db)
	r := gin.New()
	protected := r.Group("/users")
	protected.Use(auth.AuthMiddleware(tokens, users))
	NewHandler(repo, nil).RegisterRoutes(protected)

	return fixture{router: r, repo: repo, token: token, userID: u.ID}
}

func (f fixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestLibraryCRUD(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/users/library", gin.H{"manga_id": "one-piece", "list": "Wish List"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var saved models.LibraryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, models.ListWishList, saved.List)

	w = f.do(http.MethodPut, "/users/library/one-piece", gin.H{"list": "reading"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPut, "/users/library/berserk", gin.H{"list": "blacklist"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/users/library/one-piece", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"list":"reading"`)

	w = f.do(http.MethodGet, "/users/library?list=blacklist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int                   `json:"total"`
		Items []models.LibraryEntry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "berserk", page.Items[0].MangaID)

	w = f.do(http.MethodDelete, "/users/library/berserk", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodDelete, "/users/library/berserk", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(http.MethodGet, "/users/library/berserk", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLibraryValidation(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/users/library", gin.H{"list": "reading"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/users/library", gin.H{"manga_id": "x", "list": "someday"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/users/library?list=someday", nil).Code)
}

func TestLibraryRequiresAuth(t *testing.T) {
	f := newFixture(t)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/library", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRepoLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Upsert(ctx, models.LibraryEntry{UserID: f.userID, MangaID: "a", List: models.ListReading}))
	require.NoError(t, f.repo.Upsert(ctx, models.LibraryEntry{UserID: f.userID, MangaID: "b", List: models.ListCompleted}))
	require.NoError(t, f.repo.Upsert(ctx, models.LibraryEntry{UserID: f.userID, MangaID: "a", List: models.ListCompleted}))

	lists, err := f.repo.Lists(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"a": {models.ListCompleted},
		"b": {models.ListCompleted},
	}, lists)

	empty, err := f.repo.Lists(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
