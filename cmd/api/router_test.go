package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/config"
	"blog-backend/internal/shared/middleware"
	"blog-backend/pkg/container"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type postJSON struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author struct {
		Username string `json:"username"`
	} `json:"author"`
	Group *struct {
		Slug string `json:"slug"`
	} `json:"group"`
}

type listingJSON struct {
	Posts []postJSON `json:"posts"`
	Page  struct {
		Number   int  `json:"number"`
		NumPages int  `json:"num_pages"`
		Total    int  `json:"total"`
		HasNext  bool `json:"has_next"`
	} `json:"page"`
}

type testApp struct {
	t      *testing.T
	router *gin.Engine
	c      *container.Container
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{
		App:     config.AppConfig{Name: "blog", Environment: "test", Version: "test"},
		Blog:    config.BlogConfig{PostsPerPage: 10},
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		JWT:     config.JWTConfig{Secret: "test-secret", AccessTokenExpiry: time.Hour},
		Admin:   config.AdminConfig{Username: "admin", Email: "admin@example.com", Password: "admin12345"},
	}

	c, err := container.NewInMemory(context.Background(), cfg)
	require.NoError(t, err)

	return &testApp{t: t, router: SetupRouter(c), c: c}
}

func (a *testApp) do(method, path string, body io.Reader, contentType string, cookie *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodGet, path, nil, "", cookie)
}

func (a *testApp) postForm(path string, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, path, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", cookie)
}

func (a *testApp) postJSON(path string, payload interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(a.t, err)
	return a.do(http.MethodPost, path, strings.NewReader(string(body)), "application/json", cookie)
}

func (a *testApp) signup(username string) {
	a.t.Helper()
	rec := a.postForm("/auth/signup/", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"secret123"},
	}, nil)
	require.Equal(a.t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(a.t, "/", rec.Header().Get("Location"))
}

func (a *testApp) login(username, password string) *http.Cookie {
	a.t.Helper()
	rec := a.postForm("/auth/login/", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.AccessTokenCookie {
			return ck
		}
	}
	a.t.Fatalf("login did not set %s cookie", middleware.AccessTokenCookie)
	return nil
}

func (a *testApp) user(username string) *http.Cookie {
	a.signup(username)
	return a.login(username, "secret123")
}

func (a *testApp) createPost(cookie *http.Cookie, text, group string) {
	a.t.Helper()
	rec := a.postForm("/create/", url.Values{"text": {text}, "group": {group}}, cookie)
	require.Equal(a.t, http.StatusFound, rec.Code, rec.Body.String())
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error, rec.Body.String())
	return env.Error.Code
}

// ========================================
// PUBLIC PAGES
// ========================================

func TestIndex_EmptyAndPaginated(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var empty listingJSON
	decodeData(t, rec, &empty)
	assert.Empty(t, empty.Posts)
	assert.Equal(t, 1, empty.Page.NumPages)

	leo := app.user("leo")
	for i := 0; i < 11; i++ {
		app.createPost(leo, fmt.Sprintf("post %d", i), "")
	}

	var first listingJSON
	decodeData(t, app.get("/", nil), &first)
	require.Len(t, first.Posts, 10)
	assert.Equal(t, "post 10", first.Posts[0].Text)
	assert.True(t, first.Page.HasNext)

	var second listingJSON
	decodeData(t, app.get("/?page=2", nil), &second)
	require.Len(t, second.Posts, 1)
	assert.Equal(t, "post 0", second.Posts[0].Text)

	// Page không hợp lệ -> trang 1
	var junk listingJSON
	decodeData(t, app.get("/?page=abc", nil), &junk)
	assert.Equal(t, 1, junk.Page.Number)
}

func TestNotFoundPages(t *testing.T) {
	app := newTestApp(t)

	paths := []string{
		"/group/nope/",
		"/profile/ghost/",
		"/posts/00000000-0000-0000-0000-000000000000/",
		"/posts/not-a-uuid/",
	}
	for _, path := range paths {
		rec := app.get(path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestProfileAndDetail(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")
	tom := app.user("tom")
	app.createPost(leo, "leo one", "")
	app.createPost(tom, "tom one", "")
	app.createPost(leo, "leo two", "")

	var profile struct {
		Author struct {
			Username   string `json:"username"`
			PostsCount int    `json:"posts_count"`
		} `json:"author"`
		Posts []postJSON `json:"posts"`
	}
	decodeData(t, app.get("/profile/leo/", nil), &profile)
	assert.Equal(t, "leo", profile.Author.Username)
	assert.Equal(t, 2, profile.Author.PostsCount)
	require.Len(t, profile.Posts, 2)
	assert.Equal(t, "leo two", profile.Posts[0].Text)

	var detail struct {
		Post             postJSON `json:"post"`
		AuthorPostsCount int      `json:"author_posts_count"`
	}
	decodeData(t, app.get("/posts/"+profile.Posts[1].ID+"/", nil), &detail)
	assert.Equal(t, "leo one", detail.Post.Text)
	assert.Equal(t, 2, detail.AuthorPostsCount)
	assert.Nil(t, detail.Post.Group)
}

// ========================================
// CREATE / EDIT
// ========================================

func TestCreate_RequiresLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/create/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", rec.Header().Get("Location"))

	rec = app.postForm("/create/", url.Values{"text": {"x"}}, nil)
	assert.Equal(t, http.StatusFound, rec.Code)

	var index listingJSON
	decodeData(t, app.get("/", nil), &index)
	assert.Empty(t, index.Posts)
}

func TestCreate_RedirectsToProfile(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")

	rec := app.postForm("/create/", url.Values{"text": {"hello world"}}, leo)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))

	var index listingJSON
	decodeData(t, app.get("/", nil), &index)
	require.Len(t, index.Posts, 1)
	assert.Equal(t, "hello world", index.Posts[0].Text)
	assert.Equal(t, "leo", index.Posts[0].Author.Username)
	assert.Nil(t, index.Posts[0].Group)
}

func TestCreate_InvalidFormRerenders(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")

	rec := app.postForm("/create/", url.Values{"text": {"  "}, "group": {"missing"}}, leo)
	require.Equal(t, http.StatusOK, rec.Code)

	var form struct {
		Form struct {
			Group string `json:"group"`
		} `json:"form"`
		Errors map[string]string `json:"errors"`
		IsEdit bool              `json:"is_edit"`
	}
	decodeData(t, rec, &form)
	assert.Contains(t, form.Errors, "text")
	assert.Contains(t, form.Errors, "group")
	assert.Equal(t, "missing", form.Form.Group)
	assert.False(t, form.IsEdit)
}

func TestEdit_NonAuthorRedirected(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")
	tom := app.user("tom")
	app.createPost(leo, "original", "")

	var index listingJSON
	decodeData(t, app.get("/", nil), &index)
	postID := index.Posts[0].ID
	editPath := "/posts/" + postID + "/edit/"

	rec := app.get(editPath, tom)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/"+postID+"/", rec.Header().Get("Location"))

	rec = app.postForm(editPath, url.Values{"text": {"hijacked"}}, tom)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/"+postID+"/", rec.Header().Get("Location"))

	var detail struct {
		Post postJSON `json:"post"`
	}
	decodeData(t, app.get("/posts/"+postID+"/", nil), &detail)
	assert.Equal(t, "original", detail.Post.Text)

	// Author sửa được
	rec = app.postForm(editPath, url.Values{"text": {"edited"}}, leo)
	assert.Equal(t, http.StatusFound, rec.Code)
	decodeData(t, app.get("/posts/"+postID+"/", nil), &detail)
	assert.Equal(t, "edited", detail.Post.Text)
}

// ========================================
// AUTH
// ========================================

func TestSignup_DuplicateRerenders(t *testing.T) {
	app := newTestApp(t)
	app.signup("leo")

	rec := app.postForm("/auth/signup/", url.Values{
		"username": {"leo"},
		"email":    {"other@example.com"},
		"password": {"secret123"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var form struct {
		Errors map[string]string `json:"errors"`
	}
	decodeData(t, rec, &form)
	assert.NotEmpty(t, form.Errors["__all__"])
}

func TestLogin_NextRedirectAndLogout(t *testing.T) {
	app := newTestApp(t)
	app.signup("leo")

	rec := app.postForm("/auth/login/?next=%2Fcreate%2F", url.Values{"username": {"leo"}, "password": {"secret123"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/create/", rec.Header().Get("Location"))

	// Open redirect bị bỏ qua
	rec = app.postForm("/auth/login/?next=%2F%2Fevil.example", url.Values{"username": {"leo"}, "password": {"secret123"}}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.postForm("/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong123"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie := app.login("leo", "secret123")
	assert.Equal(t, http.StatusOK, app.get("/create/", cookie).Code)

	rec = app.postForm("/auth/logout/", nil, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)

	// Token đã bị revoke
	rec = app.get("/create/", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
}

// ========================================
// ADMIN
// ========================================

func TestAdmin_AccessControl(t *testing.T) {
	app := newTestApp(t)
	leo := app.user("leo")

	assert.Equal(t, http.StatusUnauthorized, app.get("/admin/groups/", nil).Code)
	assert.Equal(t, http.StatusForbidden, app.get("/admin/groups/", leo).Code)

	admin := app.login("admin", "admin12345")
	assert.Equal(t, http.StatusOK, app.get("/admin/groups/", admin).Code)
}

func TestAdmin_GroupLifecycle(t *testing.T) {
	app := newTestApp(t)
	admin := app.login("admin", "admin12345")
	leo := app.user("leo")

	rec := app.postJSON("/admin/groups/", map[string]string{
		"title":       "Cats",
		"slug":        "cats",
		"description": "all about cats",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.postJSON("/admin/groups/", map[string]string{"title": "Cats again", "slug": "cats", "description": "d"}, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	app.createPost(leo, "meow", "cats")
	app.createPost(leo, "no group", "")

	var group listingJSON
	decodeData(t, app.get("/group/cats/", nil), &group)
	require.Len(t, group.Posts, 1)
	assert.Equal(t, "cats", group.Posts[0].Group.Slug)
	postID := group.Posts[0].ID

	rec = app.do(http.MethodDelete, "/admin/groups/cats/", nil, "", admin)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, app.get("/group/cats/", nil).Code)

	var detail struct {
		Post postJSON `json:"post"`
	}
	decodeData(t, app.get("/posts/"+postID+"/", nil), &detail)
	assert.Equal(t, "meow", detail.Post.Text)
	assert.Nil(t, detail.Post.Group)
}

func TestAdmin_DeleteUserCascadesPosts(t *testing.T) {
	app := newTestApp(t)
	admin := app.login("admin", "admin12345")
	leo := app.user("leo")
	app.createPost(leo, "bye", "")

	rec := app.do(http.MethodDelete, "/admin/users/leo/", nil, "", admin)
	require.Equal(t, http.StatusOK, rec.Code)

	var index listingJSON
	decodeData(t, app.get("/", nil), &index)
	assert.Empty(t, index.Posts)
	assert.Equal(t, http.StatusNotFound, app.get("/profile/leo/", nil).Code)

	rec = app.do(http.MethodDelete, "/admin/users/leo/", nil, "", admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "USR001", errorCode(t, rec))
}

func TestAdmin_Export(t *testing.T) {
	app := newTestApp(t)
	admin := app.login("admin", "admin12345")
	leo := app.user("leo")
	app.createPost(leo, "exported", "")

	rec := app.get("/admin/posts/export", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())
}

// ========================================
// OPS
// ========================================

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storage":"memory"`)

	app.get("/", nil)
	rec = app.get("/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "blog_http_requests_total")

	assert.NotEmpty(t, app.get("/", nil).Header().Get("X-Request-ID"))
}
