package api

import (
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
)

func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("decode request: %w", err)
	}
	return v, nil
}

func writeJSON(c *echo.Context, status int, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, buf)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return writeJSON(c, status, map[string]any{
		"error": ErrorBody{
			Message: msg,
			Type:    errType,
		},
	})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}
