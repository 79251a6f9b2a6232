package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/clubhub-dev/clubhub/internal/errors"
)

func TestGetAttachment(t *testing.T) {
	env := newTestEnv(t)

	rr := env.request(t, "GET", "/v1/attachments/abc.png", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "blob abc.png", rr.Body.String())

	// unknown extensions fall back to a generic content type
	rr = env.request(t, "GET", "/v1/attachments/abc", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/octet-stream", rr.Header().Get("Content-Type"))
}

func TestGetAttachmentMissing(t *testing.T) {
	env := newTestEnv(t)

	env.blobs.OpenFunc = func(filename string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("%w: no stored attachment %s", internal_errors.NotFound, filename)
	}

	rr := env.request(t, "GET", "/v1/attachments/gone.png", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPurgeAttachment(t *testing.T) {
	env := newTestEnv(t)

	rr := env.request(t, "DELETE", "/v1/attachments/orphan.png", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, env.blobs.Removed, 1)
	assert.Equal(t, "orphan.png", env.blobs.Removed[0])

	env.blobs.RemoveFunc = func(filename string) error {
		return errors.New("disk gone")
	}
	rr = env.request(t, "DELETE", "/v1/attachments/orphan.png", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
