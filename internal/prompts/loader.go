// Package prompts holds the prompt templates sent to the generative service.
// Each JSON file maps prompt keys to template text and is embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var (
	mu    sync.Mutex
	files = make(map[string]map[string]string)
)

// Get returns the prompt stored under key in file (e.g. "synthesis.json").
func Get(file, key string) (string, error) {
	entries, err := load(file)
	if err != nil {
		return "", err
	}
	prompt, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}
	return prompt, nil
}

// Pair returns the "<name>-system" and "<name>-user" prompts of file.
func Pair(file, name string) (system, user string, err error) {
	if system, err = Get(file, name+"-system"); err != nil {
		return "", "", err
	}
	if user, err = Get(file, name+"-user"); err != nil {
		return "", "", err
	}
	return system, user, nil
}

// Format replaces {{.Key}} placeholders with values from data in a single
// pass, so values that contain placeholders are not expanded again.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, "{{."+key+"}}", data[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// load parses file once; later calls reuse the parsed entries
func load(file string) (map[string]string, error) {
	mu.Lock()
	defer mu.Unlock()
	if entries, ok := files[file]; ok {
		return entries, nil
	}

	data, err := promptFiles.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
	}
	files[file] = entries
	return entries, nil
}
