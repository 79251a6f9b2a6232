package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhub-dev/clubhub/internal/auth"
	"github.com/clubhub-dev/clubhub/internal/config"
	"github.com/clubhub-dev/clubhub/internal/domain"
	"github.com/clubhub-dev/clubhub/internal/handler"
	"github.com/clubhub-dev/clubhub/internal/realtime"
	"github.com/clubhub-dev/clubhub/internal/setup"
	"github.com/clubhub-dev/clubhub/internal/storage/fs"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{Public: config.Public{CORSOrigin: "http://localhost:3000"}}
	hub := realtime.NewHub(slogt.New(t))
	jwt := auth.New("test-secret")
	blobs, err := fs.New(t.TempDir())
	require.NoError(t, err)

	// services stay nil: these tests only exercise the middleware chain
	deps := &setup.Dependencies{
		Config:  cfg,
		Handler: handler.New(nil, nil, hub, blobs, cfg),
		Hub:     hub,
		Jwt:     jwt,
	}
	return New(deps)
}

func TestOpenEndpoints(t *testing.T) {
	r := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	// preflight never 404s
	rr = httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/v1/forums", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	r := newTestRouter(t)

	protected := []struct {
		method, path string
	}{
		{"POST", "/v1/forums"},
		{"GET", "/v1/forums"},
		{"GET", "/v1/forums/1"},
		{"DELETE", "/v1/forums/1"},
		{"POST", "/v1/forums/1/members"},
		{"DELETE", "/v1/forums/1/members"},
		{"POST", "/v1/forums/1/messages"},
		{"GET", "/v1/forums/1/messages"},
		{"DELETE", "/v1/messages/1"},
		{"POST", "/v1/messages/1/votes"},
		{"GET", "/v1/attachments/a.png"},
		{"DELETE", "/v1/attachments/a.png"},
		{"GET", "/v1/forums/1/live"},
	}
	for _, route := range protected {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", route.method, route.path)
	}
}

func TestRejectsForgedToken(t *testing.T) {
	r := newTestRouter(t)

	forged, err := auth.New("other-secret").NewToken(&domain.AuthContext{UserId: 7})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/forums", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAttachmentPurgeIsAdminOnly(t *testing.T) {
	r := newTestRouter(t)

	member, err := auth.New("test-secret").NewToken(&domain.AuthContext{UserId: 7})
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/v1/attachments/orphan.png", nil)
	req.Header.Set("Authorization", "Bearer "+member)
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// removing a blob that is already gone still succeeds
	admin, err := auth.New("test-secret").NewToken(&domain.AuthContext{UserId: 1, IsSuperAdmin: true})
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	req = httptest.NewRequest("DELETE", "/v1/attachments/orphan.png", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
