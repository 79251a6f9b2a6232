package validation

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// ErrPayloadTooLarge is returned when the request body exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")

// ValidateAndParseMultipart enforces the size limit via MaxBytesReader and
// parses the multipart form. MaxBytesReader stops reading at the limit, so an
// oversized upload cannot exhaust the server no matter its declared size.
func ValidateAndParseMultipart(r *http.Request, w http.ResponseWriter, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return fmt.Errorf("%w: failed to parse multipart form", ErrPayloadTooLarge)
	}
	return nil
}

// DetectMimeType resolves the declared mime type of an upload from its
// Content-Type header, falling back to the filename extension. Attribute-only
// on purpose: file bytes are never sniffed, and the result drives rendering
// hints, not security decisions.
func DetectMimeType(fileHeader *multipart.FileHeader) (string, error) {
	mimeType := fileHeader.Header.Get("Content-Type")

	if mimeType == "" || mimeType == "application/octet-stream" {
		ext := filepath.Ext(fileHeader.Filename)
		if detected := mime.TypeByExtension(ext); detected != "" {
			mimeType = detected
		}
	}

	if mimeType == "" {
		return "", fmt.Errorf("could not detect MIME type for file: %s", fileHeader.Filename)
	}
	return mimeType, nil
}

// CalculateMaxRequestSize adds a buffer for form fields and multipart framing
// on top of the attachment budget.
func CalculateMaxRequestSize(maxAttachmentSize, bufferSize int64) int64 {
	return maxAttachmentSize + bufferSize
}
