package generate

import (
	"encoding/json"
	"fmt"
	"strings"
)

type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// extractFiles pulls the file set out of free-form model output. The output
// is expected to contain one JSON object; a brace-depth scan that respects
// string literals and escapes finds the first balanced top-level object, so
// braces inside generated code content do not derail it.
func extractFiles(raw string) ([]File, error) {
	span, err := firstJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Files []json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return nil, fmt.Errorf("parse json object: %w", err)
	}
	if parsed.Files == nil {
		return nil, fmt.Errorf("response has no files array")
	}

	out := make([]File, 0, len(parsed.Files))
	for _, rawEntry := range parsed.Files {
		var entry struct {
			Path    string  `json:"path"`
			Content *string `json:"content"`
		}
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			continue
		}
		if strings.TrimSpace(entry.Path) == "" || entry.Content == nil {
			continue
		}
		out = append(out, File{Path: entry.Path, Content: *entry.Content})
	}
	return out, nil
}

func firstJSONObject(raw string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}
	if start < 0 {
		return "", fmt.Errorf("no json object found in response")
	}
	return "", fmt.Errorf("unbalanced json object in response")
}
