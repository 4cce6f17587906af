package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andresuchdata/devicehub/internal/storage"
)

// bucketFetcher copies seed CSVs out of object storage into a local directory.
type bucketFetcher struct {
	client  storage.ObjectStorage
	prefix  string
	destDir string
}

func newBucketFetcher(client storage.ObjectStorage, prefix, destDir string) *bucketFetcher {
	if destDir == "" {
		destDir = "./data/tmp/seed"
	}
	return &bucketFetcher{client: client, prefix: strings.TrimSpace(prefix), destDir: destDir}
}

// fetch downloads one object and returns its local path.
func (f *bucketFetcher) fetch(ctx context.Context, key string) (string, error) {
	key = storage.ResolveObjectKey(f.prefix, key)
	localPath := filepath.Join(f.destDir, objectRelativePath(f.prefix, key))
	if err := f.client.DownloadObject(ctx, key, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

// csvKeys lists the CSV and XLSX objects under the prefix, sorted.
func (f *bucketFetcher) csvKeys(ctx context.Context) ([]string, error) {
	objects, err := f.client.ListObjects(ctx, f.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", f.prefix, err)
	}

	var keys []string
	for _, obj := range objects {
		if strings.HasSuffix(strings.ToLower(obj.Key), ".csv") || isSpreadsheet(obj.Key) {
			keys = append(keys, obj.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	rel := strings.TrimPrefix(key, strings.TrimSuffix(prefix, "/")+"/")
	if rel == "" || rel == key {
		return filepath.Base(key)
	}
	return rel
}
