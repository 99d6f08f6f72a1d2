// Package prompts holds the embedded prompt templates for the researcher,
// strategist, and ghostwriter agents.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// library caches each parsed prompt file so the embedded JSON is decoded
// once per process.
type library struct {
	mu    sync.Mutex
	files map[string]map[string]string
}

var prompts = &library{files: make(map[string]map[string]string)}

func (l *library) file(filename string) (map[string]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if parsed, ok := l.files[filename]; ok {
		return parsed, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var parsed map[string]string
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	l.files[filename] = parsed
	return parsed, nil
}

// Get returns the prompt stored under key in the named embedded file
// (bare filename, e.g. "agents.json").
func Get(filename, key string) (string, error) {
	file, err := prompts.file(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := file[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is Get for prompts the pipeline cannot run without; a missing one
// is a packaging bug, so it panics.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format substitutes {{.Key}} placeholders in a template with values from
// data. Unmatched placeholders are left in place.
func Format(template string, data map[string]string) string {
	out := template
	for key, value := range data {
		out = strings.ReplaceAll(out, "{{."+key+"}}", value)
	}
	return out
}

// ClearCache drops the parsed-file cache.
func ClearCache() {
	prompts.mu.Lock()
	prompts.files = make(map[string]map[string]string)
	prompts.mu.Unlock()
}
