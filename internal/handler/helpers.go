package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/clubhub-dev/clubhub/internal/utils"
	"github.com/clubhub-dev/clubhub/internal/validation"
)

// parseIntParam parses an integer path/query parameter with a readable error
func parseIntParam(param string, paramName string) (int64, error) {
	val, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", paramName)
	}
	return val, nil
}

// parseMultipartMessage extracts the JSON payload from the "json" form field
// and the optional uploaded file from "attachment". The returned cleanup
// closes the upload; call it on every path.
func parseMultipartMessage[T any](w http.ResponseWriter, r *http.Request, maxAttachmentSize int64) (body T, upload *multipartUpload, cleanup func(), err error) {
	cleanup = func() {}

	maxRequestSize := validation.CalculateMaxRequestSize(maxAttachmentSize, 1<<20)
	if err = validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		return
	}

	jsonPayload := r.FormValue("json")
	if jsonPayload == "" {
		err = fmt.Errorf("missing JSON payload in multipart form")
		return
	}
	if err = utils.DecodeValidate(strings.NewReader(jsonPayload), &body); err != nil {
		return
	}

	files := r.MultipartForm.File["attachment"]
	if len(files) == 0 {
		return
	}

	fileHeader := files[0]
	mimeType, err := validation.DetectMimeType(fileHeader)
	if err != nil {
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		err = fmt.Errorf("failed to open uploaded file: %w", err)
		return
	}
	upload = &multipartUpload{
		File:     file,
		Filename: fileHeader.Filename,
		MimeType: mimeType,
	}
	cleanup = func() { file.Close() }
	return
}

type multipartUpload struct {
	File     io.ReadCloser
	Filename string
	MimeType string
}
