// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imagestore turns generated illustration bytes into URLs that a
// finished document can reference.
package imagestore

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paperforge/pkg/types"
)

// Store persists one illustration and returns the URL that locates it.
type Store interface {
	Put(ctx context.Context, jobID, sectionID string, data []byte, mimeType string) (string, error)
}

// New returns the Store selected by cfg.Backend.
func New(cfg types.ImageStoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", types.ImageBackendDataURL:
		return DataURLStore{}, nil
	case types.ImageBackendDir:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("images.dir is required for the dir backend")
		}
		return &DirStore{Dir: cfg.Dir}, nil
	case types.ImageBackendS3:
		return NewS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown image backend %q (want dataurl, dir, or s3)", cfg.Backend)
	}
}

// DataURLStore embeds the image in a data: URL. Nothing is written anywhere.
type DataURLStore struct{}

// Put implements Store.
func (DataURLStore) Put(_ context.Context, _, _ string, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image")
	}
	return "data:" + normalizeMIME(mimeType) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DirStore writes images to Dir/<jobID>/<sectionID>.<ext> and returns the
// file path.
type DirStore struct {
	Dir string
}

// Put implements Store.
func (s *DirStore) Put(_ context.Context, jobID, sectionID string, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image")
	}
	if err := validName(jobID); err != nil {
		return "", fmt.Errorf("job id: %w", err)
	}
	if err := validName(sectionID); err != nil {
		return "", fmt.Errorf("section id: %w", err)
	}
	dir := filepath.Join(s.Dir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}
	path := filepath.Join(dir, sectionID+extension(mimeType))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return path, nil
}

// objectName is the key used for an image inside a bucket or directory.
func objectName(jobID, sectionID, mimeType string) string {
	return jobID + "/" + sectionID + extension(mimeType)
}

func validName(s string) error {
	if s == "" {
		return fmt.Errorf("is empty")
	}
	if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return fmt.Errorf("%q is not a plain name", s)
	}
	return nil
}

func normalizeMIME(mimeType string) string {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	if m == "" {
		return "image/png"
	}
	return m
}

func extension(mimeType string) string {
	switch normalizeMIME(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
