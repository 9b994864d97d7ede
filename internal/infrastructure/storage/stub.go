package storage

import (
	"context"
	"net/url"
	"time"

	financeapp "github.com/fintermediary/backoffice/internal/application/finance"
)

var _ financeapp.ReceiptStorage = (*StubObjectStorage)(nil)

// StubObjectStorage is used when object storage is disabled in development.
// It hands out fake URLs under BaseURL and treats every key as uploaded.
type StubObjectStorage struct {
	BaseURL string
}

// NewStubObjectStorage creates a StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{BaseURL: "http://localhost:9000/receipts"}
}

func (s *StubObjectStorage) url(action, key string, expiresAt time.Time) string {
	return s.BaseURL + "/" + action + "/" + url.PathEscape(key) + "?expires=" + url.QueryEscape(expiresAt.Format(time.RFC3339))
}

// GenerateUploadURL returns a fake upload URL
func (s *StubObjectStorage) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.url("upload", key, expiresAt), expiresAt, nil
}

// GenerateDownloadURL returns a fake download URL
func (s *StubObjectStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.url("download", key, expiresAt), expiresAt, nil
}

// ObjectExists always reports true so the receipt flow works without a backend
func (s *StubObjectStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyRequired
	}
	return true, nil
}

// DeleteObject is a no-op
func (s *StubObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return nil
}
