// Package snapshot persists exported definition sets on the local file
// system or in S3-compatible object storage.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Store persists definition snapshots under slash-separated keys.
type Store interface {
	Put(ctx context.Context, key string, content []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

var ErrNotFound = errors.New("snapshot not found")

const s3Scheme = "s3://"

// Open returns the store and key for location, which is either a file path
// or an s3://bucket/key URL. The bucket of the URL takes precedence over
// the one in cfg.
func Open(location string, cfg S3Config) (Store, string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, "", fmt.Errorf("snapshot location is required")
	}

	if rest, ok := strings.CutPrefix(location, s3Scheme); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return nil, "", fmt.Errorf("invalid snapshot location %q: expected s3://bucket/key", location)
		}
		cfg.Bucket = bucket
		store, err := NewObjectStore(cfg)
		if err != nil {
			return nil, "", err
		}
		return store, key, nil
	}

	return NewFileStore(filepath.Dir(location)), filepath.Base(location), nil
}

func validKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("snapshot key is required")
	}
	return key, nil
}
