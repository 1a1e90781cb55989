package llm

import (
	"regexp"
	"strings"
)

// Extractor recovers a candidate JSON payload from raw model output. The
// default heuristic is best-effort; the interface exists so a stricter
// extractor can replace it without touching the validator.
type Extractor interface {
	// Extract returns a candidate JSON string, not yet parsed, and
	// whether anything JSON-looking was recoverable.
	Extract(raw string) (string, bool)
}

// Pre-compiled patterns for JSON extraction from model responses.
var (
	// fencePattern matches the first fenced code block, with an optional
	// "json" language tag. Non-greedy so trailing prose after the block is
	// left out.
	fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// FencedExtractor implements the compatibility heuristic: take the
// interior of the first fenced code block when one is present, otherwise
// the trimmed whole text. It tolerates prose around a single fenced block
// but makes no attempt at multi-block disambiguation.
type FencedExtractor struct{}

// Extract implements Extractor.
func (FencedExtractor) Extract(raw string) (string, bool) {
	candidate := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(raw); len(m) > 1 {
		candidate = strings.TrimSpace(m[1])
	}

	candidate = cleanJSON(candidate)
	if candidate == "" || !strings.Contains(candidate, "{") {
		return candidate, false
	}
	return candidate, true
}

// cleanJSON removes JavaScript-style comments and trailing commas.
// Models commonly produce these invalid JSON artifacts.
func cleanJSON(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, stripLineComment(line))
	}
	result := strings.Join(cleaned, "\n")

	// Remove trailing commas before } or ]
	result = trailingCommaPattern.ReplaceAllString(result, "$1")

	return result
}

// stripLineComment removes a // comment from a JSON line, respecting
// string values. For example:
//
//	"path/to/file.js",          // This is a comment  → "path/to/file.js",
//	"url": "http://example.com" // comment             → "url": "http://example.com"
//	"url": "http://example.com"                        → "url": "http://example.com" (no change)
func stripLineComment(line string) string {
	// Fast path: no // at all
	if !strings.Contains(line, "//") {
		return line
	}

	// Walk the line character by character, tracking whether we're inside
	// a string.
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			// Found a comment outside a string, strip from here
			trimmed := strings.TrimRight(line[:i], " \t")
			return trimmed
		}
	}
	return line
}
