package deck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vytor/wordflash/internal/models"
)

// Recognised spellings, in order of preference.
var (
	questionKeys = []string{"question", "slovenian"}
	answerKeys   = []string{"answer", "english"}
)

// ParseEntries decodes a JSON array of objects into raw entries. Missing
// fields become empty strings; anything other than an array of objects is a
// ParseError.
func ParseEntries(source string, payload []byte) ([]models.RawEntry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if items == nil {
		return nil, &ParseError{Source: source, Err: errors.New("payload is null")}
	}

	entries := make([]models.RawEntry, 0, len(items))
	for i, raw := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			return nil, &ParseError{Source: source, Err: fmt.Errorf("entry %d is not an object", i)}
		}
		q, err := field(obj, questionKeys)
		if err != nil {
			return nil, &ParseError{Source: source, Err: fmt.Errorf("entry %d: %w", i, err)}
		}
		a, err := field(obj, answerKeys)
		if err != nil {
			return nil, &ParseError{Source: source, Err: fmt.Errorf("entry %d: %w", i, err)}
		}
		entries = append(entries, models.RawEntry{Question: q, Answer: a})
	}
	return entries, nil
}

// field returns the first non-null value among keys. Strings are unquoted,
// other scalars keep their JSON text.
func field(obj map[string]json.RawMessage, keys []string) (string, error) {
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if bytes.Equal(raw, []byte("null")) {
			continue
		}
		switch raw[0] {
		case '"':
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return "", err
			}
			return s, nil
		case '{', '[':
			return "", fmt.Errorf("field %q must be a scalar", k)
		default:
			return string(raw), nil
		}
	}
	return "", nil
}
