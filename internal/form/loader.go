package form

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrFormNotFound is returned when no definition exists for a form ID
var ErrFormNotFound = errors.New("form not found")

// FileRepository implements Repository over a directory of YAML definitions named
// <id>.yaml. Draft and live modes read the same file.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a new file-based form repository
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Get reads the form with the given ID
func (r *FileRepository) Get(ctx context.Context, id int64, mode Mode) (*Form, error) {
	path := filepath.Join(r.dir, strconv.FormatInt(id, 10)+".yaml")
	f, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %d", ErrFormNotFound, id)
	}
	return f, err
}

// LoadFile reads a single form definition from a YAML file
func LoadFile(path string) (*Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML (or JSON, which is valid YAML) form definition
func Parse(data []byte) (*Form, error) {
	var f Form
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal form: %w", err)
	}

	return f.Link(), nil
}

// SaveFile writes a form definition to a YAML file
func SaveFile(f *Form, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal form: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}

	return nil
}
