package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LocalStore keeps attachment bytes on the local filesystem and mints
// HMAC-signed URLs served by the raw-file route. It stands in for a real
// object store in development and tests; the contract is the same —
// short-lived URLs, fresh on every resolve.
type LocalStore struct {
	root    string
	baseURL string
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

func NewLocalStore(root, baseURL, secret string, ttl time.Duration) *LocalStore {
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock overrides the store's clock. Test hook.
func (s *LocalStore) WithClock(now func() time.Time) *LocalStore {
	s.now = now
	return s
}

// Put writes the attachment bytes under key below the store root
func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) error {
	path, err := s.diskPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create attachment dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write attachment %s: %w", key, err)
	}
	return nil
}

// SignedURL mints a time-limited URL for key. The signature covers the key
// and the expiry instant, so two resolves at different times yield
// different URLs and an elapsed window invalidates the old one.
func (s *LocalStore) SignedURL(_ context.Context, key string) (string, error) {
	if _, err := s.diskPath(key); err != nil {
		return "", err
	}
	exp := s.now().Add(s.ttl).Unix()
	sig := s.sign(key, exp)
	return fmt.Sprintf("%s/patient/file/raw/%s?exp=%d&sig=%s",
		s.baseURL, url.PathEscape(key), exp, sig), nil
}

// Open verifies the signature and expiry for a raw-file request and
// returns the on-disk path of the attachment.
func (s *LocalStore) Open(key, expStr, sig string) (string, error) {
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return "", errors.New("invalid signature")
	}
	if !hmac.Equal([]byte(s.sign(key, exp)), []byte(sig)) {
		return "", errors.New("invalid signature")
	}
	if s.now().Unix() >= exp {
		return "", errors.New("url expired")
	}
	path, err := s.diskPath(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", errors.New("attachment not found")
	}
	return path, nil
}

func (s *LocalStore) sign(key string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d", key, exp)
	return hex.EncodeToString(mac.Sum(nil))
}

// diskPath maps an object key to a path under the store root, rejecting
// traversal outside it.
func (s *LocalStore) diskPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
