package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// Validator checks a decoded structured output before it is accepted.
type Validator[T any] func(T) error

// ExtractJSON locates the first balanced {...} block in raw model output,
// decodes it into T and runs the validator. Any failure returns an
// *ExtractError wrapping ErrInvalidOutput; a partial parse is never
// accepted.
func ExtractJSON[T any](raw string, validate Validator[T]) (T, error) {
	var zero T

	block, ok := firstJSONObject(stripFences(raw))
	if !ok {
		return zero, &ExtractError{Stage: "locate", Raw: raw, Cause: errors.New("no balanced JSON object")}
	}

	var out T
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return zero, &ExtractError{Stage: "decode", Raw: block, Cause: err}
	}
	if validate != nil {
		if err := validate(out); err != nil {
			return zero, &ExtractError{Stage: "validate", Raw: block, Cause: err}
		}
	}
	return out, nil
}

// stripFences removes a markdown code fence wrapper if present.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// firstJSONObject scans for the first balanced brace block, tracking string
// literals and escapes so braces inside values do not skew the depth count.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
