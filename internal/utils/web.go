package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/clubhub-dev/clubhub/internal/errors"
	"github.com/clubhub-dev/clubhub/internal/logger"
	"github.com/go-playground/validator/v10"
)

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	code := errors.StatusCode(err)
	if code == http.StatusInternalServerError {
		// dont leak internals to the client
		logger.Log.Error("internal error", "error", err)
		http.Error(w, "Internal server error", code)
		return
	}
	http.Error(w, err.Error(), code)
}

func DecodeValidate(r io.Reader, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400}
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("body failed validation", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: 400}
	}
	return nil
}

func Decode(r io.Reader, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400}
	}
	return nil
}
