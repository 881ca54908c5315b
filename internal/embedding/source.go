package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrTableNotFound means no embedding table exists for a category. A missing
// table excludes the category; it is not a failure.
var ErrTableNotFound = errors.New("embedding table not found")

// Source loads the embedding table for one category.
type Source interface {
	Load(ctx context.Context, category string) (*Table, error)
	Name() string
}

// FileSource reads "<Dir>/<category><ext>" files. Extensions are tried in
// order: ".txt" and ".vec" are word2vec text, ".bin" is word2vec binary.
type FileSource struct {
	Dir string
}

var fileFormats = []struct {
	ext  string
	read func(f *os.File) (*Table, error)
}{
	{".txt", func(f *os.File) (*Table, error) { return ReadText(f) }},
	{".vec", func(f *os.File) (*Table, error) { return ReadText(f) }},
	{".bin", func(f *os.File) (*Table, error) { return ReadBinary(f) }},
}

// NewFileSource returns a source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) Name() string { return "file" }

// Path returns the resource path of category for the given extension.
func (s *FileSource) Path(category, ext string) string {
	return filepath.Join(s.Dir, category+ext)
}

func (s *FileSource) Load(ctx context.Context, category string) (*Table, error) {
	if category == "" || strings.ContainsAny(category, `/\`) {
		return nil, fmt.Errorf("%w: unusable category name %q", ErrTableNotFound, category)
	}
	for _, format := range fileFormats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := s.Path(category, format.ext)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		table, err := format.read(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		return table, nil
	}
	return nil, fmt.Errorf("%w: no model file for %q in %s", ErrTableNotFound, category, s.Dir)
}

var _ Source = (*FileSource)(nil)
