// Package storage writes export snapshots to a named disk.
//
// Two drivers are available:
//   - "local" writes under STORAGE_LOCAL_ROOT (default ./storage)
//   - "s3"    any S3-compatible bucket (AWS S3, MinIO, R2)
//
//	disk, err := storage.Open("s3")
//	err = disk.Put(ctx, "exports/snapshot.json", data)
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get for a missing path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes path. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Files lists the files directly under directory.
	Files(ctx context.Context, directory string) ([]string, error)

	// URL is where the file can be fetched from, if anywhere.
	URL(path string) string
}
