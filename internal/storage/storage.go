// Package storage moves report exports and seed files to and from an
// S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the S3-compatible operations the report and seed commands need.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// ResolveObjectKey places key under prefix unless it already starts with it.
func ResolveObjectKey(prefix, key string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	if key == prefix || strings.HasPrefix(key, prefix+"/") {
		return key
	}
	return path.Join(prefix, key)
}

// ContentType guesses the MIME type of an export from its extension.
func ContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func wrapErr(op, key string, err error) error {
	return fmt.Errorf("storage %s %q failed: %w", op, key, err)
}
