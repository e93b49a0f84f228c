// Package filesource reads the document straight from the local filesystem.
package filesource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Source is a DocumentSource over a single local file. Reads bypass any
// cache, so no cache-bust token is needed.
type Source struct {
	path string
}

// New creates a source for path.
func New(path string) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: document path is empty", domain.ErrInvalidInput)
	}
	return &Source{path: path}, nil
}

// Path returns the file path.
func (s *Source) Path() string {
	return s.path
}

// Fetch reads the whole file.
func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		// Editors often replace files by delete+rename; the retry covers the gap.
		return nil, fmt.Errorf("%w: %s does not exist", domain.ErrSourceUnavailable, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return data, nil
}
