package validation

import (
	"fmt"
	"time"
	"unicode"
)

const (
	// MaxEntityIDLen максимальная длина идентификатора поста/комментария
	MaxEntityIDLen = 256
)

// ValidateEntityID проверяет идентификатор контента, используемый как ключ кэша.
// Идентификатор непрозрачен, но не может быть пустым, слишком длинным
// или содержать управляющие символы.
func ValidateEntityID(id string) error {
	if id == "" {
		return fmt.Errorf("entity id cannot be empty")
	}

	if len(id) > MaxEntityIDLen {
		return fmt.Errorf("entity id must not exceed %d bytes", MaxEntityIDLen)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return fmt.Errorf("entity id must not contain control characters")
		}
	}

	return nil
}

// ValidateViewerID checks the opaque id of the current viewer.
func ValidateViewerID(id string) error {
	if id == "" {
		return fmt.Errorf("viewer id cannot be empty")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return fmt.Errorf("viewer id must not contain spaces or control characters")
		}
	}
	return nil
}

// ValidateInterval checks a recurring timer period.
func ValidateInterval(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", name, d)
	}
	return nil
}
