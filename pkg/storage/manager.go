package storage

import (
	"context"
	"fmt"

	"github.com/asadazo/asadazo/config"
)

// Open builds the named disk from configuration. An empty name means
// STORAGE_DISK.
func Open(ctx context.Context, name string) (Disk, error) {
	if name == "" {
		name = config.StorageDefault()
	}
	switch name {
	case "local":
		return NewLocalDisk(config.StorageLocalRoot(), config.Get("STORAGE_URL", "")), nil
	case "s3":
		return NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
		})
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", name)
	}
}
