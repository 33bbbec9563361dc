package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarworks/solarworks/internal/auth"
	"github.com/solarworks/solarworks/internal/handlers"
	"github.com/solarworks/solarworks/internal/media"
	"github.com/solarworks/solarworks/internal/middleware"
	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/router"
	"github.com/solarworks/solarworks/internal/services"
	"github.com/solarworks/solarworks/internal/store"
	"github.com/solarworks/solarworks/internal/store/memstore"
	"github.com/solarworks/solarworks/internal/types"
)

const (
	adminEmail    = "ops@solar.example"
	adminPassword = "secret1"
	maxVideo      = 1 << 20
	hostedURL     = "https://img.example/hosted.png"
	inlinePixel   = "data:image/png;base64,iVBORw0KGgo="
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeHost struct {
	mu        sync.Mutex
	destroyed []string
}

func (f *fakeHost) Name() string { return "fake" }

func (f *fakeHost) Upload(context.Context, string) (string, error) {
	return hostedURL, nil
}

func (f *fakeHost) Destroy(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, url)
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []services.ContentEvent
}

func (r *recordingSink) Publish(event services.ContentEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) last() services.ContentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type downStore struct {
	*memstore.Store
}

func (downStore) Ping(context.Context) error {
	return errors.New("server selection timeout")
}

var errWriteFailed = errors.New("write concern timeout")

// failingWrites rejects content writes so rollback paths run.
type failingWrites struct {
	store.Store
}

func (failingWrites) CreateProject(context.Context, *models.Project) error {
	return errWriteFailed
}

func (failingWrites) UpdateProject(context.Context, *models.Project) error {
	return errWriteFailed
}

func (failingWrites) CreateNews(context.Context, *models.News) error {
	return errWriteFailed
}

func (failingWrites) CreateTeamMember(context.Context, *models.TeamMember) error {
	return errWriteFailed
}

type testEnv struct {
	router *gin.Engine
	store  *memstore.Store
	videos *media.VideoStore
	host   *fakeHost
	hub    *handlers.Hub
	sink   *recordingSink
	token  string
}

type envOption func(*handlers.Options, *store.Store)

func withRegisterDisabled() envOption {
	return func(o *handlers.Options, _ *store.Store) { o.AllowRegister = false }
}

func withFailingWrites() envOption {
	return func(_ *handlers.Options, dst *store.Store) { *dst = failingWrites{*dst} }
}

func withStore(s store.Store) envOption {
	return func(_ *handlers.Options, dst *store.Store) { *dst = s }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	mem := memstore.New()
	admin, err := auth.EnsureAdmin(context.Background(), mem, adminEmail, adminPassword, "Ops")
	require.NoError(t, err)

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateJWT(admin.ID, admin.Email)
	require.NoError(t, err)

	videos, err := media.NewVideoStore(t.TempDir(), maxVideo)
	require.NoError(t, err)

	host := &fakeHost{}
	hub := handlers.NewHub([]string{"http://localhost:3000"})
	t.Cleanup(hub.Close)
	sink := &recordingSink{}

	options := handlers.Options{AllowRegister: true, HealthTimeout: time.Second}
	var s store.Store = mem
	for _, opt := range opts {
		opt(&options, &s)
	}

	h := handlers.New(s, issuer, videos, media.NewImages(host, time.Second), services.Fanout{hub, sink}, options)

	r := router.NewRouter(router.Deps{
		Handler:        h,
		Hub:            hub,
		Issuer:         issuer,
		Admins:         s,
		LoginLimiter:   middleware.NewRateLimiter(100, time.Minute),
		AllowedOrigins: []string{"http://localhost:3000"},
		VideoDir:       videos.Dir(),
	})

	return &testEnv{router: r, store: mem, videos: videos, host: host, hub: hub, sink: sink, token: token}
}

func (e *testEnv) do(t *testing.T, req *http.Request, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) json(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req, authed)
}

type upload struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func (e *testEnv) multipart(t *testing.T, method, path string, fields map[string]string, file *upload, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if file != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(t, req, authed)
}

func (e *testEnv) videoExists(t *testing.T, url string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(e.videos.Dir(), strings.TrimPrefix(url, media.VideoURLPrefix)))
	return err == nil
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[types.ErrorResponse](t, w).Error
}

func mp4(content string) *upload {
	return &upload{field: "video", filename: "clip.mp4", contentType: "video/mp4", content: []byte(content)}
}

// Auth

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodPost, "/api/auth/register", gin.H{
		"email": "New@Solar.Example", "password": "sunlight", "name": "New Admin",
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	registered := decode[types.AuthResponse](t, w)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "new@solar.example", registered.Admin.Email)
	assert.NotContains(t, w.Body.String(), "password")

	w = env.json(t, http.MethodPost, "/api/auth/login", gin.H{"email": "new@solar.example", "password": "sunlight"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	loggedIn := decode[types.AuthResponse](t, w)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+loggedIn.Token)
	w = env.do(t, req, false)
	require.Equal(t, http.StatusOK, w.Code)

	me := decode[struct {
		Admin types.AdminResponse `json:"admin"`
	}](t, w)
	assert.Equal(t, registered.Admin.ID, me.Admin.ID)
	assert.Equal(t, "New Admin", me.Admin.Name)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body gin.H
		msg  string
	}{
		{"duplicate", gin.H{"email": adminEmail, "password": "another1", "name": "Dup"}, "Email already exists"},
		{"short password", gin.H{"email": "a@solar.example", "password": "123", "name": "A"}, "password must be at least 6 characters"},
		{"bad email", gin.H{"email": "nope", "password": "123456", "name": "A"}, "email must be a valid email address"},
		{"missing name", gin.H{"email": "b@solar.example", "password": "123456"}, "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.json(t, http.MethodPost, "/api/auth/register", tt.body, false)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.msg, errorOf(t, w))
		})
	}
}

func TestRegister_Disabled(t *testing.T) {
	env := newTestEnv(t, withRegisterDisabled())

	w := env.json(t, http.MethodPost, "/api/auth/register", gin.H{
		"email": "x@solar.example", "password": "123456", "name": "X",
	}, false)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []gin.H{
		{"email": adminEmail, "password": "wrong-password"},
		{"email": "ghost@solar.example", "password": adminPassword},
	} {
		w := env.json(t, http.MethodPost, "/api/auth/login", body, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid email or password", errorOf(t, w))
	}
}

func TestMe_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Resource conventions

func TestMutations_RequireAuth(t *testing.T) {
	env := newTestEnv(t)
	id := "6650c0ffee0000000000abcd"

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/projects"},
		{http.MethodPut, "/api/projects/" + id},
		{http.MethodDelete, "/api/projects/" + id},
		{http.MethodPost, "/api/team"},
		{http.MethodPut, "/api/team/reorder"},
		{http.MethodPut, "/api/team/" + id},
		{http.MethodDelete, "/api/team/" + id},
		{http.MethodPost, "/api/news"},
		{http.MethodPut, "/api/news/" + id},
		{http.MethodDelete, "/api/news/" + id},
		{http.MethodPost, "/api/homepage-video"},
		{http.MethodPut, "/api/homepage-video/" + id},
		{http.MethodDelete, "/api/homepage-video/" + id},
	}

	for _, rt := range routes {
		w := env.json(t, rt.method, rt.path, gin.H{}, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
}

func TestInvalidIDs_Return400(t *testing.T) {
	env := newTestEnv(t)

	resources := map[string]string{
		"/api/projects/":       "Invalid project ID",
		"/api/team/":           "Invalid team member ID",
		"/api/news/":           "Invalid news ID",
		"/api/homepage-video/": "Invalid homepage video ID",
	}

	for prefix, msg := range resources {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			w := env.json(t, method, prefix+"not-an-id", gin.H{}, true)
			assert.Equal(t, http.StatusBadRequest, w.Code, "%s %s", method, prefix)
			assert.Equal(t, msg, errorOf(t, w))
		}
	}
}

func TestUnknownIDs_Return404(t *testing.T) {
	env := newTestEnv(t)
	id := "6650c0ffee0000000000abcd"

	for _, prefix := range []string{"/api/projects/", "/api/team/", "/api/news/", "/api/homepage-video/"} {
		assert.Equal(t, http.StatusNotFound, env.json(t, http.MethodGet, prefix+id, nil, false).Code)
		assert.Equal(t, http.StatusNotFound, env.json(t, http.MethodDelete, prefix+id, nil, true).Code)
	}
}

// Projects

func TestProject_CreateThenGet(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodPost, "/api/projects", gin.H{
		"name":             "Desert Array",
		"location":         "Nevada",
		"year":             "2024",
		"duration":         "8 months",
		"description":      "120 MW ground mount",
		"challenges":       []string{"Heat", "Dust"},
		"executionMethods": `["Tracker install"]`,
		"results":          "Online ahead of schedule",
		"image":            inlinePixel,
		"gallery":          []string{"https://cdn.example/1.jpg", inlinePixel},
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[models.Project](t, w)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, hostedURL, created.Image)
	assert.Equal(t, []string{"https://cdn.example/1.jpg", hostedURL}, created.Gallery)
	assert.Equal(t, []string{"Tracker install"}, created.ExecutionMethods)
	assert.Equal(t, []string{"Online ahead of schedule"}, created.Results)

	w = env.json(t, http.MethodGet, "/api/projects/"+created.ID.Hex(), nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	fetched := decode[models.Project](t, w)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Name, fetched.Name)
	assert.Equal(t, created.Challenges, fetched.Challenges)
	assert.Equal(t, created.Gallery, fetched.Gallery)

	w = env.json(t, http.MethodGet, "/api/projects", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Project](t, w), 1)

	event := env.sink.last()
	assert.Equal(t, services.ResourceProject, event.Resource)
	assert.Equal(t, services.ActionCreate, event.Action)
	assert.Equal(t, created.ID.Hex(), event.ID)
	assert.Equal(t, adminEmail, event.Admin)
}

func TestProject_RequiredFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodPost, "/api/projects", gin.H{"name": "Only name"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorOf(t, w), "location is required")
	assert.Contains(t, errorOf(t, w), "description is required")
}

func TestProject_EmptyList(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodGet, "/api/projects", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestProject_MultipartVideoLifecycle(t *testing.T) {
	env := newTestEnv(t)

	w := env.multipart(t, http.MethodPost, "/api/projects", map[string]string{
		"name":        "Rooftop",
		"location":    "Austin",
		"description": "Commercial rooftop",
		"challenges":  `["Roof load","Permits"]`,
	}, mp4("first"), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	project := decode[models.Project](t, w)
	assert.Equal(t, []string{"Roof load", "Permits"}, project.Challenges)
	require.True(t, media.IsLocal(project.Video))
	assert.True(t, env.videoExists(t, project.Video))

	w = env.multipart(t, http.MethodPut, "/api/projects/"+project.ID.Hex(), map[string]string{
		"technicalNotes": "Ballasted racking",
	}, mp4("second"), true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decode[models.Project](t, w)
	assert.Equal(t, "Rooftop", updated.Name, "absent fields keep stored values")
	assert.Equal(t, "Ballasted racking", updated.TechnicalNotes)
	assert.NotEqual(t, project.Video, updated.Video)
	assert.False(t, env.videoExists(t, project.Video), "replaced video is deleted")
	assert.True(t, env.videoExists(t, updated.Video))

	w = env.json(t, http.MethodDelete, "/api/projects/"+project.ID.Hex(), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Project deleted successfully", decode[types.MessageResponse](t, w).Message)
	assert.False(t, env.videoExists(t, updated.Video), "deleting the project removes its video")

	assert.Equal(t, http.StatusNotFound, env.json(t, http.MethodGet, "/api/projects/"+project.ID.Hex(), nil, false).Code)
}

func TestProject_RemoveVideo(t *testing.T) {
	env := newTestEnv(t)

	w := env.multipart(t, http.MethodPost, "/api/projects", map[string]string{
		"name": "Carport", "location": "Phoenix", "description": "Carport canopy",
	}, mp4("frames"), true)
	require.Equal(t, http.StatusCreated, w.Code)
	project := decode[models.Project](t, w)

	w = env.multipart(t, http.MethodPut, "/api/projects/"+project.ID.Hex(), map[string]string{
		"removeVideo": "true",
	}, nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, decode[models.Project](t, w).Video)
	assert.False(t, env.videoExists(t, project.Video))
}

func TestProject_VideoRejections(t *testing.T) {
	env := newTestEnv(t)
	fields := map[string]string{"name": "N", "location": "L", "description": "D"}

	w := env.multipart(t, http.MethodPost, "/api/projects", fields,
		&upload{field: "video", filename: "big.mp4", contentType: "video/mp4", content: bytes.Repeat([]byte("x"), maxVideo+1)}, true)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Video file too large. Maximum size is 1MB", errorOf(t, w))

	w = env.multipart(t, http.MethodPost, "/api/projects", fields,
		&upload{field: "video", filename: "doc.pdf", contentType: "application/pdf", content: []byte("%PDF")}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only video files are allowed", errorOf(t, w))

	files, err := env.videos.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestProject_UpdateReleasesReplacedImages(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodPost, "/api/projects", gin.H{
		"name": "N", "location": "L", "description": "D",
		"image":   "https://res.example/old.jpg",
		"gallery": []string{"https://res.example/g1.jpg", "https://res.example/g2.jpg"},
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	project := decode[models.Project](t, w)

	w = env.json(t, http.MethodPut, "/api/projects/"+project.ID.Hex(), gin.H{
		"image":   inlinePixel,
		"gallery": []string{"https://res.example/g2.jpg"},
	}, true)
	require.Equal(t, http.StatusOK, w.Code)

	assert.ElementsMatch(t, []string{"https://res.example/old.jpg", "https://res.example/g1.jpg"}, env.host.destroyed)
}

func TestProject_LocalVideoURLBelongsToUploader(t *testing.T) {
	env := newTestEnv(t)

	w := env.multipart(t, http.MethodPost, "/api/homepage-video", map[string]string{
		"title": "Hero", "isActive": "true",
	}, mp4("hero"), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	hero := decode[models.HomepageVideo](t, w)

	w = env.json(t, http.MethodPost, "/api/projects", gin.H{
		"name": "N", "location": "L", "description": "D", "video": hero.VideoURL,
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "video must be an uploaded file or an external URL", errorOf(t, w))

	w = env.json(t, http.MethodPost, "/api/projects", gin.H{
		"name": "N", "location": "L", "description": "D", "video": "https://cdn.example/tour.mp4",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode[models.Project](t, w)

	w = env.json(t, http.MethodPut, "/api/projects/"+project.ID.Hex(), gin.H{"video": hero.VideoURL}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.json(t, http.MethodDelete, "/api/projects/"+project.ID.Hex(), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.videoExists(t, hero.VideoURL), "deleting a project keeps other documents' files")

	w = env.json(t, http.MethodGet, "/api/homepage-video/active", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, hero.VideoURL, decode[models.HomepageVideo](t, w).VideoURL)

	w = env.json(t, http.MethodPost, "/api/homepage-video", gin.H{"title": "Copy", "videoUrl": hero.VideoURL}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "videoUrl must be an uploaded file or an external URL", errorOf(t, w))

	w = env.json(t, http.MethodPost, "/api/homepage-video", gin.H{"title": "Remote", "videoUrl": "https://cdn.example/b.mp4"}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	remote := decode[models.HomepageVideo](t, w)

	w = env.json(t, http.MethodPut, "/api/homepage-video/"+remote.ID.Hex(), gin.H{"videoUrl": hero.VideoURL}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.json(t, http.MethodPut, "/api/homepage-video/"+hero.ID.Hex(), gin.H{"videoUrl": hero.VideoURL, "title": "Hero 2"}, true)
	require.Equal(t, http.StatusOK, w.Code, "resending the current URL is allowed")
	assert.True(t, env.videoExists(t, hero.VideoURL))
}

func TestProject_FailedWriteReleasesUploads(t *testing.T) {
	env := newTestEnv(t, withFailingWrites())

	w := env.multipart(t, http.MethodPost, "/api/projects", map[string]string{
		"name": "N", "location": "L", "description": "D",
		"image":   inlinePixel,
		"gallery": `["` + inlinePixel + `","https://res.example/keep.jpg"]`,
	}, mp4("frames"), true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	assert.Equal(t, []string{hostedURL, hostedURL}, env.host.destroyed)

	files, err := env.videos.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestNewsAndTeam_FailedWriteReleasesImages(t *testing.T) {
	env := newTestEnv(t, withFailingWrites())

	w := env.json(t, http.MethodPost, "/api/news", gin.H{
		"title": "T", "summary": "S", "fullText": "F", "mainImage": inlinePixel,
	}, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, []string{hostedURL}, env.host.destroyed)

	w = env.json(t, http.MethodPost, "/api/team", gin.H{
		"name": "A", "role": "B", "bio": "C", "profileImage": inlinePixel,
	}, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, []string{hostedURL, hostedURL}, env.host.destroyed)
}

// Team

func TestTeam_DisplayOrderDefaultsToMaxPlusOne(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodPost, "/api/team", gin.H{"name": "A", "role": "B", "bio": "C"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[models.TeamMember](t, w).DisplayOrder)

	w = env.json(t, http.MethodPost, "/api/team", gin.H{"name": "D", "role": "E", "bio": "F", "displayOrder": 10}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 10, decode[models.TeamMember](t, w).DisplayOrder)

	w = env.json(t, http.MethodPost, "/api/team", gin.H{"name": "G", "role": "H", "bio": "I"}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 11, decode[models.TeamMember](t, w).DisplayOrder)

	w = env.json(t, http.MethodGet, "/api/team", nil, false)
	members := decode[[]models.TeamMember](t, w)
	require.Len(t, members, 3)
	assert.Equal(t, []string{"A", "D", "G"}, []string{members[0].Name, members[1].Name, members[2].Name})
}

func TestTeam_SocialLinksAndUpdate(t *testing.T) {
	env := newTestEnv(t)

	w := env.multipart(t, http.MethodPost, "/api/team", map[string]string{
		"name":                  "Lina",
		"role":                  "Lead engineer",
		"bio":                   "PV design",
		"socialLinks[linkedin]": "https://linkedin.example/lina",
		"profileImage":          inlinePixel,
	}, nil, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	member := decode[models.TeamMember](t, w)
	assert.Equal(t, "https://linkedin.example/lina", member.SocialLinks.LinkedIn)
	assert.Equal(t, hostedURL, member.ProfileImage)

	w = env.json(t, http.MethodPut, "/api/team/"+member.ID.Hex(), gin.H{
		"role":        "Director",
		"socialLinks": gin.H{"website": "https://lina.example"},
	}, true)
	require.Equal(t, http.StatusOK, w.Code)

	updated := decode[models.TeamMember](t, w)
	assert.Equal(t, "Director", updated.Role)
	assert.Equal(t, "PV design", updated.Bio)
	assert.Equal(t, models.SocialLinks{Website: "https://lina.example"}, updated.SocialLinks)
	assert.Equal(t, member.DisplayOrder, updated.DisplayOrder)
}

func TestTeam_Reorder(t *testing.T) {
	env := newTestEnv(t)

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		w := env.json(t, http.MethodPost, "/api/team", gin.H{"name": name, "role": "r", "bio": "b"}, true)
		require.Equal(t, http.StatusCreated, w.Code)
		ids = append(ids, decode[models.TeamMember](t, w).ID.Hex())
	}

	w := env.json(t, http.MethodPut, "/api/team/reorder", []gin.H{
		{"id": ids[2], "displayOrder": 0},
		{"id": ids[0], "displayOrder": 5},
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	members := decode[[]models.TeamMember](t, w)
	require.Len(t, members, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{members[0].Name, members[1].Name, members[2].Name})
	assert.Equal(t, services.ActionReorder, env.sink.last().Action)

	w = env.json(t, http.MethodPut, "/api/team/reorder", []gin.H{{"id": "bad", "displayOrder": 1}}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.json(t, http.MethodPut, "/api/team/reorder", []gin.H{{"id": "6650c0ffee0000000000abcd", "displayOrder": 1}}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.json(t, http.MethodPut, "/api/team/reorder", []gin.H{}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTeam_InvalidDisplayOrder(t *testing.T) {
	env := newTestEnv(t)

	w := env.multipart(t, http.MethodPost, "/api/team", map[string]string{
		"name": "A", "role": "B", "bio": "C", "displayOrder": "first",
	}, nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "displayOrder must be a number", errorOf(t, w))

	w = env.json(t, http.MethodPost, "/api/team", gin.H{
		"name": "A", "role": "B", "bio": "C", "displayOrder": 1.5,
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "displayOrder must be a number", errorOf(t, w))
}

// News

func TestNews_CreateDefaultsAndOrdering(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodPost, "/api/news", gin.H{
		"title": "Older", "summary": "s", "fullText": "f", "publicationDate": "2024-01-15",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	older := decode[models.News](t, w)
	assert.Equal(t, 1, older.DisplayOrder)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), older.PublicationDate.UTC())

	w = env.json(t, http.MethodPost, "/api/news", gin.H{
		"title": "Newer", "summary": "s", "fullText": "f", "displayOrder": 1,
		"publicationDate": "2024-06-01T09:30:00Z", "additionalImages": []string{inlinePixel},
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	newer := decode[models.News](t, w)
	assert.Equal(t, []string{hostedURL}, newer.AdditionalImages)

	w = env.json(t, http.MethodPost, "/api/news", gin.H{"title": "Undated", "summary": "s", "fullText": "f"}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	undated := decode[models.News](t, w)
	assert.WithinDuration(t, time.Now(), undated.PublicationDate, time.Minute)
	assert.Equal(t, 2, undated.DisplayOrder)

	w = env.json(t, http.MethodGet, "/api/news", nil, false)
	list := decode[[]models.News](t, w)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Newer", "Older", "Undated"}, []string{list[0].Title, list[1].Title, list[2].Title})
}

func TestNews_Validation(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodPost, "/api/news", gin.H{"title": "T", "summary": "S"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fullText is required", errorOf(t, w))

	w = env.json(t, http.MethodPost, "/api/news", gin.H{
		"title": "T", "summary": "S", "fullText": "F", "publicationDate": "next tuesday",
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNews_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodPost, "/api/news", gin.H{
		"title": "T", "summary": "S", "fullText": "F", "mainImage": "https://res.example/main.jpg",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	news := decode[models.News](t, w)

	w = env.json(t, http.MethodPut, "/api/news/"+news.ID.Hex(), gin.H{"title": "T2"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.News](t, w)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, news.PublicationDate.Unix(), updated.PublicationDate.Unix())
	assert.Equal(t, news.MainImage, updated.MainImage)

	w = env.json(t, http.MethodDelete, "/api/news/"+news.ID.Hex(), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"https://res.example/main.jpg"}, env.host.destroyed)
}

// Homepage video

func TestHomepageVideo_SingleActive(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodPost, "/api/homepage-video", gin.H{
		"videoUrl": "https://cdn.example/a.mp4", "title": "A", "isActive": true,
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[models.HomepageVideo](t, w)
	assert.True(t, first.IsActive)

	w = env.multipart(t, http.MethodPost, "/api/homepage-video", map[string]string{
		"title": "B", "isActive": "true",
	}, mp4("hero"), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	second := decode[models.HomepageVideo](t, w)
	assert.True(t, media.IsLocal(second.VideoURL))

	w = env.json(t, http.MethodGet, "/api/homepage-video/active", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, second.ID, decode[models.HomepageVideo](t, w).ID)

	w = env.json(t, http.MethodGet, "/api/homepage-video/"+first.ID.Hex(), nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.HomepageVideo](t, w).IsActive, "creating an active video deactivates the others")

	w = env.json(t, http.MethodPut, "/api/homepage-video/"+first.ID.Hex(), gin.H{"isActive": true}, true)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.json(t, http.MethodGet, "/api/homepage-video", nil, false)
	active := 0
	for _, v := range decode[[]models.HomepageVideo](t, w) {
		if v.IsActive {
			active++
			assert.Equal(t, first.ID, v.ID)
		}
	}
	assert.Equal(t, 1, active)
}

func TestHomepageVideo_RequiresVideo(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodPost, "/api/homepage-video", gin.H{"title": "No video"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A video file or videoUrl is required", errorOf(t, w))
}

func TestHomepageVideo_NoActive(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodGet, "/api/homepage-video/active", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHomepageVideo_ReplaceAndDeleteRemoveFiles(t *testing.T) {
	env := newTestEnv(t)

	w := env.multipart(t, http.MethodPost, "/api/homepage-video", map[string]string{"title": "Hero"}, mp4("one"), true)
	require.Equal(t, http.StatusCreated, w.Code)
	video := decode[models.HomepageVideo](t, w)

	w = env.multipart(t, http.MethodPut, "/api/homepage-video/"+video.ID.Hex(), nil, mp4("two"), true)
	require.Equal(t, http.StatusOK, w.Code)
	replaced := decode[models.HomepageVideo](t, w)
	assert.False(t, env.videoExists(t, video.VideoURL))
	assert.True(t, env.videoExists(t, replaced.VideoURL))

	w = env.json(t, http.MethodDelete, "/api/homepage-video/"+video.ID.Hex(), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.videoExists(t, replaced.VideoURL))
}

// Health and static media

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.json(t, http.MethodGet, "/api/health", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]interface{}](t, w)["status"])

	down := newTestEnv(t, withStore(downStore{memstore.New()}))
	w = down.json(t, http.MethodGet, "/api/health", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStaticVideos(t *testing.T) {
	env := newTestEnv(t)

	w := env.multipart(t, http.MethodPost, "/api/homepage-video", map[string]string{"title": "Hero"}, mp4("served bytes"), true)
	require.Equal(t, http.StatusCreated, w.Code)
	video := decode[models.HomepageVideo](t, w)

	w = env.do(t, httptest.NewRequest(http.MethodGet, video.VideoURL, nil), false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "served bytes", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.json(t, http.MethodGet, "/api/projects", nil, false)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "solarworks_http_requests_total")
}
