// Package artifacts loads the fitted transform and model from durable storage
// and keeps the compiled pair behind a single atomically swapped pointer.
// Package artifacts 从持久化存储加载已拟合的转换器与模型，并通过单一原子指针对外提供。
package artifacts

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by a Source when the named blob does not exist.
var ErrNotFound = stderrors.New("artifact not found")

// Source fetches artifact blobs by name.
// Source 按名称获取工件数据。
type Source interface {
	// Fetch returns the raw bytes of the named artifact.
	Fetch(ctx context.Context, name string) ([]byte, error)

	// Describe names the source for logs and metadata, e.g. "file:./artifacts".
	Describe() string
}

// FileSource reads artifacts from a directory.
type FileSource struct {
	dir string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Dir is the directory artifacts are read from.
func (s *FileSource) Dir() string { return s.dir }

// Path returns the file path of the named artifact.
func (s *FileSource) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path(name))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path(name))
		}
		return nil, err
	}
	return b, nil
}

func (s *FileSource) Describe() string { return "file:" + s.dir }
