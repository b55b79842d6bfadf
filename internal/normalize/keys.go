// Package normalize переписывает ключи JSON-деревьев из PascalCase бэкенда
// в camelCase, который ожидают клиентские структуры.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Keys returns a copy of value where every object key has its first character
// lower-cased. Slices are rewritten element by element, maps get new keys and
// recursively normalized values, every other value is returned unchanged.
//
// The input must be acyclic, which always holds for data decoded from JSON.
func Keys(value any) any {
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Keys(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, elem := range v {
			out[LowerFirst(key)] = Keys(elem)
		}
		return out
	default:
		return value
	}
}

// LowerFirst lower-cases the first rune of s. Empty string maps to itself.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// Unmarshal декодирует JSON в дерево, нормализует ключи и раскладывает
// результат в out (обычно структура с camelCase тегами).
func Unmarshal(data []byte, out any) error {
	// UseNumber сохраняет int64 (миллисекунды) без потерь через float64
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return fmt.Errorf("failed to decode json: %w", err)
	}

	normalized, err := json.Marshal(Keys(tree))
	if err != nil {
		return fmt.Errorf("failed to encode normalized json: %w", err)
	}

	if err := json.Unmarshal(normalized, out); err != nil {
		return fmt.Errorf("failed to decode normalized json: %w", err)
	}
	return nil
}
