package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
)

// GCSStore stores attachment bytes in a Google Cloud Storage bucket and
// resolves keys to V4 signed GET URLs.
type GCSStore struct {
	client     *storage.Client
	bucket     string
	accessID   string
	privateKey []byte
	ttl        time.Duration
}

func NewGCSStore(ctx context.Context, bucket, accessID, privateKey string, ttl time.Duration) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{
		client:     client,
		bucket:     bucket,
		accessID:   accessID,
		privateKey: []byte(privateKey),
		ttl:        ttl,
	}, nil
}

// Put uploads the attachment bytes under key
func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", key, err)
	}
	return nil
}

// SignedURL mints a fresh V4 signed GET URL for key. Every call produces a
// new URL with its own expiry window.
func (s *GCSStore) SignedURL(_ context.Context, key string) (string, error) {
	url, err := storage.SignedURL(s.bucket, key, &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodGet,
		Expires:        time.Now().Add(s.ttl),
		GoogleAccessID: s.accessID,
		PrivateKey:     s.privateKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign url for %s: %w", key, err)
	}
	return url, nil
}
