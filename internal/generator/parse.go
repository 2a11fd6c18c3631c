package generator

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

var errNoJSON = errors.New("no parseable JSON in response")

// Parsed is the outcome of ParseOrDefault. Fallback is set when Value is the default.
type Parsed[T any] struct {
	Value    T
	Fallback bool
	Err      error
}

// ParseOrDefault extracts a JSON document of type T from a model response.
// It tries a ```json fenced block, then the outermost {...} span, then the
// outermost [...] span, then the raw text. If none decodes, def is returned.
func ParseOrDefault[T any](raw string, def T) Parsed[T] {
	for _, candidate := range jsonCandidates(raw) {
		if candidate == "" || candidate == "null" {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			return Parsed[T]{Value: v}
		}
	}
	return Parsed[T]{Value: def, Fallback: true, Err: errNoJSON}
}

func jsonCandidates(raw string) []string {
	var out []string
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		out = append(out, m[1])
	}
	if span, ok := outerSpan(raw, '{', '}'); ok {
		out = append(out, span)
	}
	if span, ok := outerSpan(raw, '[', ']'); ok {
		out = append(out, span)
	}
	return append(out, strings.TrimSpace(raw))
}

func outerSpan(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
