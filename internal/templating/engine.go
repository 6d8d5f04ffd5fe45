package templating

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Engine loads and stores templates under a template directory
type Engine struct {
	dir    string
	logger *log.Logger
	now    func() time.Time
}

// NewEngine creates an engine rooted at dir. A nil logger uses the standard logger.
func NewEngine(dir string, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{dir: dir, logger: logger, now: time.Now}
}

// Dir returns the template directory
func (e *Engine) Dir() string {
	return e.dir
}

// resolve maps a template name to a path. Names that already point at an
// existing file are used as-is; anything else is looked up in the template dir.
func (e *Engine) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name
	}
	return filepath.Join(e.dir, name)
}

// Load reads a template by name or path
func (e *Engine) Load(name string) (string, error) {
	path := e.resolve(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &TemplateError{Name: name, Message: "template not found", Cause: err}
		}
		return "", &TemplateError{Name: name, Message: "failed to read template", Cause: err}
	}
	e.logger.Printf("[TEMPLATE] loaded %s", path)
	return string(data), nil
}

// Apply substitutes vars into tmpl and logs any unresolved placeholders
func (e *Engine) Apply(tmpl string, vars map[string]string) Result {
	result := Apply(tmpl, vars)
	if len(result.Unresolved) > 0 {
		e.logger.Printf("[TEMPLATE] unresolved template variables: %s", strings.Join(result.Unresolved, ", "))
	}
	return result
}

// Create writes content as a new template file in the template dir
func (e *Engine) Create(content, name string) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", &TemplateError{Name: name, Message: "failed to create template directory", Cause: err}
	}
	path := filepath.Join(e.dir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", &TemplateError{Name: name, Message: "failed to write template", Cause: err}
	}
	e.logger.Printf("[TEMPLATE] created %s", path)
	return path, nil
}

// List returns the sorted names of .md and .txt files in the template dir.
// A missing directory yields an empty list.
func (e *Engine) List() ([]string, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".md", ".txt":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Backup copies a template next to itself as <stem>_backup_<YYYYMMDD_HHMMSS><ext>
func (e *Engine) Backup(name string) (string, error) {
	path := e.resolve(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &TemplateError{Name: name, Message: "template not found", Cause: err}
		}
		return "", &TemplateError{Name: name, Message: "failed to read template", Cause: err}
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	backupName := fmt.Sprintf("%s_backup_%s%s", stem, e.now().Format("20060102_150405"), ext)
	backupPath := filepath.Join(filepath.Dir(path), backupName)

	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return "", &TemplateError{Name: name, Message: "failed to back up template", Cause: err}
	}
	e.logger.Printf("[TEMPLATE] created backup %s", backupName)
	return backupPath, nil
}
