package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectStore is the attachment backend. Put uploads raw bytes under a key;
// SignedURL mints a fresh short-lived read URL for an existing key. Resolve
// never mutates anything, and a failed Put must abort the enclosing record
// write before any record references the key.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(ctx context.Context, key string) (string, error)
}

// ObjectKey builds the object key for an attachment: the patient id as
// prefix, then a uuid to make the key write-once, then the sanitized
// original filename for operator readability.
func ObjectKey(patientID, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "." || base == ".." || base == "" {
		base = "attachment"
	}
	return fmt.Sprintf("%s/%s-%s", patientID, uuid.NewString(), base)
}
