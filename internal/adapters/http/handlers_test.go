package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmiclibrary/core/internal/adapters/repository"
	"github.com/cosmiclibrary/core/internal/application/services"
	"github.com/cosmiclibrary/core/internal/domain/entities"
	"github.com/cosmiclibrary/core/internal/infrastructure/config"
	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
)

type testAPI struct {
	echo  *echo.Echo
	store *repository.DocumentStore
}

func newTestAPI(t *testing.T, libraryUsers string) *testAPI {
	t.Helper()

	log := logger.NewNop()
	store := repository.NewDocumentStore(config.StorageConfig{
		Path: filepath.Join(t.TempDir(), "database.json"),
	}, log)

	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(log)

	authCfg := config.AuthConfig{LibraryUsers: libraryUsers, AdminUsername: "admin"}
	books := NewBookHandler(services.NewBookService(store, log), log)
	settings := NewSettingsHandler(services.NewSettingsService(store, services.NewBackgroundCatalog(config.BackgroundsConfig{}), log), log)
	auth := NewAuthHandler(services.NewAuthService(store, services.NewCredentialResolver(libraryUsers), authCfg, log), log)

	api := e.Group("/api")
	api.GET("/books", books.ListBooks)
	api.POST("/books", books.AddBook)
	api.DELETE("/books", books.DeleteBook)
	api.GET("/settings", settings.GetSettings)
	api.POST("/settings", settings.SaveSettings)
	api.POST("/register", auth.Register)
	api.POST("/login", auth.Login)
	api.GET("/users", auth.ListUsers)
	api.GET("/check-admin", auth.CheckAdmin)

	return &testAPI{echo: e, store: store}
}

func (a *testAPI) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func TestAddAndListBooks(t *testing.T) {
	api := newTestAPI(t, "")

	rec := api.do(t, http.MethodPost, "/api/books", `{"title":"Dune","author":"Frank Herbert","genre":"SF"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Book added","id":1}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/books", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{
		"id": 1,
		"title": "Dune",
		"author": "Frank Herbert",
		"genre": "SF",
		"description": "",
		"cover": "https://via.placeholder.com/150",
		"addedBy": "unknown"
	}]`, rec.Body.String())
}

func TestListBooksEmptyCatalog(t *testing.T) {
	api := newTestAPI(t, "")

	rec := api.do(t, http.MethodGet, "/api/books", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAddBookValidation(t *testing.T) {
	api := newTestAPI(t, "")

	rec := api.do(t, http.MethodPost, "/api/books", `{"title":"Dune","author":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"title, author and genre are required"}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/books", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, api.store.GetBooks())
}

func TestAddBookDuplicateID(t *testing.T) {
	api := newTestAPI(t, "")
	require.NoError(t, api.store.SaveBooks([]entities.Book{{ID: 3, Title: "Solaris"}}))

	rec := api.do(t, http.MethodPost, "/api/books", `{"title":"Dune","author":"FH","genre":"SF","id":3}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"book with ID 3 already exists"}`, rec.Body.String())
	assert.Len(t, api.store.GetBooks(), 1)
}

func TestAddBookStringID(t *testing.T) {
	api := newTestAPI(t, "")

	rec := api.do(t, http.MethodPost, "/api/books", `{"title":"Dune","author":"FH","genre":"SF","id":"7","added_by":"nova"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Book added","id":7}`, rec.Body.String())

	books := api.store.GetBooks()
	require.Len(t, books, 1)
	assert.Equal(t, "nova", books[0].AddedBy)
}

func TestDeleteBook(t *testing.T) {
	api := newTestAPI(t, "")
	require.NoError(t, api.store.SaveBooks([]entities.Book{{ID: 1}, {ID: 2}}))

	tests := []struct {
		name   string
		target string
		code   int
		body   string
	}{
		{name: "missing id", target: "/api/books", code: http.StatusBadRequest, body: `{"error":"ID is required"}`},
		{name: "invalid id", target: "/api/books?id=abc", code: http.StatusBadRequest, body: `{"error":"invalid ID format"}`},
		{name: "not found", target: "/api/books?id=9", code: http.StatusNotFound, body: `{"error":"book not found"}`},
		{name: "deleted", target: "/api/books?id=1", code: http.StatusOK, body: `{"message":"Book deleted"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodDelete, tt.target, "")

			assert.Equal(t, tt.code, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}

	books := api.store.GetBooks()
	require.Len(t, books, 1)
	assert.Equal(t, 2, books[0].ID)
}

func TestSettingsEndpoints(t *testing.T) {
	api := newTestAPI(t, "")

	rec := api.do(t, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"settings": {"background": null, "backgroundType": "default"},
		"availableBackgrounds": [
			{"name": "local1.svg", "url": "/backgrounds/local1.svg"},
			{"name": "local2.svg", "url": "/backgrounds/local2.svg"},
			{"name": "local3.svg", "url": "/backgrounds/local3.svg"}
		]
	}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/settings", `{"background":"local2.svg","backgroundType":"image"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"message": "Settings saved",
		"settings": {"background": "local2.svg", "backgroundType": "image"}
	}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/settings", `{"background":"local3.svg"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	settings := api.store.GetSettings()
	require.NotNil(t, settings.Background)
	assert.Equal(t, "local3.svg", *settings.Background)
	assert.Equal(t, "default", settings.BackgroundType)
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t, "admin:secret")

	rec := api.do(t, http.MethodPost, "/api/register", `{"username":"nova","password":"pw1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User nova registered"}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/register", `{"username":"nova","password":"pw2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"user already exists"}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/register", `{"username":"admin","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"user already exists in configuration"}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/login", `{"username":"nova","password":"pw1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Login successful","username":"nova","source":"database"}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/login", `{"username":"admin","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Login successful","username":"admin","source":"env"}`, rec.Body.String())
}

func TestLoginFailures(t *testing.T) {
	api := newTestAPI(t, "admin:secret")

	tests := []struct {
		name string
		body string
		code int
		want string
	}{
		{name: "missing password", body: `{"username":"admin"}`, code: http.StatusBadRequest, want: "username and password are required"},
		{name: "wrong password", body: `{"username":"admin","password":"nope"}`, code: http.StatusUnauthorized, want: "wrong password"},
		{name: "unknown user", body: `{"username":"ghost","password":"x"}`, code: http.StatusUnauthorized, want: "user not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/login", tt.body)

			assert.Equal(t, tt.code, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Error)
		})
	}
}

func TestListUsersHidesPasswords(t *testing.T) {
	api := newTestAPI(t, "admin:secret")
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/register", `{"username":"nova","password":"pw1"}`).Code)

	rec := api.do(t, http.MethodGet, "/api/users", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.NotContains(t, rec.Body.String(), "pw1")

	var users []entities.DirectoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, entities.CredentialSourceEnv, users[0].Source)
	assert.Nil(t, users[0].CreatedAt)
	assert.Equal(t, "nova", users[1].Username)
	assert.NotNil(t, users[1].CreatedAt)
}

func TestCheckAdmin(t *testing.T) {
	api := newTestAPI(t, "")

	rec := api.do(t, http.MethodGet, "/api/check-admin?username=admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isAdmin":true}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/check-admin?username=nova", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isAdmin":false}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/check-admin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"username is required"}`, rec.Body.String())
}

func TestErrorHandlerStrictStorageFailure(t *testing.T) {
	log := logger.NewNop()
	store := repository.NewDocumentStore(config.StorageConfig{Path: t.TempDir(), StrictWrites: true}, log)

	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(log)
	e.POST("/api/books", NewBookHandler(services.NewBookService(store, log), log).AddBook)

	req := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(`{"title":"Dune","author":"FH","genre":"SF"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to persist changes"}`, rec.Body.String())
}

func TestErrorHandlerUnknownRoute(t *testing.T) {
	api := newTestAPI(t, "")

	rec := api.do(t, http.MethodGet, "/api/nothing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}
