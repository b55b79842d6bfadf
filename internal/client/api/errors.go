package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is returned for every non-2xx response.
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// StatusOf извлекает HTTP статус из ошибки клиента, 0 если это не *Error
// (например, сетевая ошибка или отмена контекста).
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether the server rejected the viewer's token.
func IsUnauthorized(err error) bool {
	status := StatusOf(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
