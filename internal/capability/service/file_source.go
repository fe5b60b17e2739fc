package service

import (
	"context"
	"os"

	apperrors "github.com/fhirflare/capfilter/internal/errors"
)

// FileSource reads the unfiltered capability document from disk. The file
// is re-read on every request so edits take effect without a restart,
// matching the snapshot semantics of the allow-list store.
type FileSource struct {
	path string
}

// Fetch reads the capability document file.
func (f *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read capability document file")
	}
	return data, nil
}

// NewFileSource creates a source backed by the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}
