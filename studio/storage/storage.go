package storage

import (
	"io"
	"path/filepath"

	"github.com/google/uuid"
)

type UsageStats struct {
	TotalBytes uint64
	FreeBytes  uint64
}

// Storage holds generated project assets (audio, video, bundles,
// certificates). Paths are relative to the storage root so backends can be
// swapped without touching callers.
type Storage interface {
	Read(path string) (io.ReadCloser, error)

	Write(path string, data io.Reader) error

	Delete(path string) error

	List(path string) ([]string, error)

	Exists(path string) (bool, error)

	Size(path string) (int64, error)

	// Zip archives the directory at path into path + ".zip".
	Zip(path string) error

	Usage() (UsageStats, error)

	Location() string
}

func ProjectPath(projectId uuid.UUID) string {
	return filepath.Join("projects", projectId.String())
}
