// Package testutil provides an in-process fake of the media storage backend.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
)

// Response is a canned reply for one uploaded filename.
type Response struct {
	Status int
	Body   interface{} // marshalled as JSON; a string is written verbatim
}

// Upload is one multipart file received by the backend.
type Upload struct {
	Name      string
	Data      []byte
	RequestID string
}

// FakeBackend serves GET /files, POST /upload and GET /health the way the
// real backend does. Successful uploads are appended to the catalog.
type FakeBackend struct {
	URL    string
	server *httptest.Server

	mu           sync.Mutex
	files        []map[string]interface{}
	filesRaw     *Response
	healthStatus int
	responses    map[string]Response
	uploads      []Upload
	listCalls    int
	uploadCalls  int
	healthCalls  int
	lastAuth     string
	redirect     bool
	redirects    int
}

// NewFakeBackend starts a backend that is closed when the test ends.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		healthStatus: http.StatusOK,
		responses:    make(map[string]Response),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/files", b.handleFiles)
	e.POST("/upload", b.handleUploadRoute)
	e.POST("/upload/", b.handleUpload)
	e.GET("/health", b.handleHealth)

	b.server = httptest.NewServer(e)
	b.URL = b.server.URL
	t.Cleanup(b.server.Close)
	return b
}

// Close stops the server early, e.g. to simulate the backend going away.
func (b *FakeBackend) Close() {
	b.server.Close()
}

// SetFiles replaces the catalog served by GET /files.
func (b *FakeBackend) SetFiles(files ...map[string]interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = append([]map[string]interface{}(nil), files...)
	b.filesRaw = nil
}

// SetFilesResponse makes GET /files reply with a fixed status and body.
func (b *FakeBackend) SetFilesResponse(status int, body interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filesRaw = &Response{Status: status, Body: body}
}

// SetHealthStatus sets the status GET /health answers with.
func (b *FakeBackend) SetHealthStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.healthStatus = status
}

// RespondTo overrides the upload reply for one filename.
func (b *FakeBackend) RespondTo(filename string, status int, body interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[filename] = Response{Status: status, Body: body}
}

// RedirectUploads makes POST /upload answer 307 to /upload/, the way a
// backend mounted with a trailing slash does.
func (b *FakeBackend) RedirectUploads() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.redirect = true
}

// Redirects returns how many uploads were redirected.
func (b *FakeBackend) Redirects() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.redirects
}

// Uploads returns every file received, in arrival order.
func (b *FakeBackend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// UploadedNames returns the filenames received, in arrival order.
func (b *FakeBackend) UploadedNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.uploads))
	for i, u := range b.uploads {
		names[i] = u.Name
	}
	return names
}

func (b *FakeBackend) ListCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls
}

func (b *FakeBackend) UploadCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploadCalls
}

func (b *FakeBackend) HealthCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.healthCalls
}

// LastAuthorization returns the Authorization header of the latest request.
func (b *FakeBackend) LastAuthorization() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth
}

func (b *FakeBackend) handleFiles(c echo.Context) error {
	b.mu.Lock()
	b.listCalls++
	b.lastAuth = c.Request().Header.Get(echo.HeaderAuthorization)
	raw := b.filesRaw
	files := append([]map[string]interface{}{}, b.files...)
	b.mu.Unlock()

	if raw != nil {
		return reply(c, *raw)
	}
	return c.JSON(http.StatusOK, files)
}

func (b *FakeBackend) handleHealth(c echo.Context) error {
	b.mu.Lock()
	b.healthCalls++
	status := b.healthStatus
	b.mu.Unlock()

	if status >= 200 && status < 300 {
		return c.JSON(status, map[string]string{"status": "ok"})
	}
	return c.JSON(status, map[string]string{"detail": "backend unavailable"})
}

func (b *FakeBackend) handleUploadRoute(c echo.Context) error {
	b.mu.Lock()
	redirect := b.redirect
	if redirect {
		b.redirects++
	}
	b.mu.Unlock()

	if redirect {
		return c.Redirect(http.StatusTemporaryRedirect, "/upload/")
	}
	return b.handleUpload(c)
}

func (b *FakeBackend) handleUpload(c echo.Context) error {
	b.mu.Lock()
	b.uploadCalls++
	b.lastAuth = c.Request().Header.Get(echo.HeaderAuthorization)
	b.mu.Unlock()

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"detail": []map[string]interface{}{{"loc": []string{"body", "file"}, "msg": "field required"}},
		})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}

	b.mu.Lock()
	b.uploads = append(b.uploads, Upload{Name: fh.Filename, Data: data, RequestID: c.Request().Header.Get("X-Request-ID")})
	override, ok := b.responses[fh.Filename]
	b.mu.Unlock()

	if ok {
		return reply(c, override)
	}
	return b.defaultUpload(c, fh.Filename)
}

// defaultUpload mimics the backend's routing: media is stored by category,
// JSON goes to SQL storage, anything else is rejected.
func (b *FakeBackend) defaultUpload(c echo.Context, filename string) error {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))

	switch {
	case contains(imageExts, ext), contains(videoExts, ext):
		category := "Images"
		fileType := "image"
		if contains(videoExts, ext) {
			category, fileType = "Videos", "video"
		}
		b.addFile(filename, fileType, category, ext)
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": "File processed successfully.",
			"saved_file": map[string]interface{}{
				"filename":   filename,
				"category":   category,
				"extension":  ext,
				"online_url": b.URL + "/media/" + filename,
			},
		})

	case ext == "json":
		b.addFile(filename, "json", "SQL", "json")
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": "JSON processed successfully!",
			"details": map[string]interface{}{
				"success":       true,
				"original_name": filename,
				"stored_name":   filename,
				"storage_type":  "SQL",
			},
		})

	default:
		return c.JSON(http.StatusBadRequest, map[string]string{
			"detail": "Unsupported file type: " + ext + ". Allowed types are images, videos, JSON, or ZIP.",
		})
	}
}

func (b *FakeBackend) addFile(name, fileType, category, ext string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = append(b.files, map[string]interface{}{
		"name":      name,
		"type":      fileType,
		"category":  category,
		"extension": ext,
	})
}

func reply(c echo.Context, r Response) error {
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	if s, ok := r.Body.(string); ok {
		return c.Blob(status, echo.MIMEApplicationJSON, []byte(s))
	}
	return c.JSON(status, r.Body)
}

var (
	imageExts = []string{"png", "jpg", "jpeg", "gif", "bmp", "webp"}
	videoExts = []string{"mp4", "mov", "avi", "mkv", "wmv"}
)

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
