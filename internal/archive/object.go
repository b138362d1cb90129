package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"docextract-api/internal/shared/apperr"
	"docextract-api/internal/shared/storage/object"
)

var errInvalidName = errors.New("invalid image name")

// ObjectArchiver writes images straight into an object store.
type ObjectArchiver struct {
	store object.ObjectStore
	newID func() string
}

func NewObjectArchiver(store object.ObjectStore) *ObjectArchiver {
	return &ObjectArchiver{store: store, newID: uuid.NewString}
}

// Store writes each image under <tenant>/<sha256(mobile)>/<product>/<id>/<name>.
// The id segment is fresh per image, so an existing object is never replaced.
func (a *ObjectArchiver) Store(ctx context.Context, submitter Submitter, docs []Document, tenant string) (Result, error) {
	tenant = tenantOrDefault(tenant)
	owner := hashKey(submitter.MobileNo)

	urls := make(map[string][]string, len(docs))
	for _, doc := range docs {
		for _, img := range doc.Images {
			key, err := objectKey(tenant, owner, doc.ProductCode, a.newID(), img.Name)
			if err != nil {
				return Result{}, apperr.Archival(http.StatusBadRequest, uploadFailedMessage, err)
			}
			url, err := a.store.Put(ctx, key, img.Type, img.Bytes)
			if err != nil {
				return Result{}, apperr.Archival(http.StatusInternalServerError, uploadFailedMessage, fmt.Errorf("put %s: %w", key, err))
			}
			urls[doc.ProductCode] = append(urls[doc.ProductCode], url)
		}
	}
	return Result{URLs: urls}, nil
}

func objectKey(tenant, owner, category, id, name string) (string, error) {
	clean, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	cat, err := sanitizeName(category)
	if err != nil {
		return "", err
	}
	t, err := sanitizeName(tenant)
	if err != nil {
		return "", err
	}
	return path.Join(t, owner, cat, id, clean), nil
}

func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// sanitizeName flattens separators into one path segment. A segment that is
// only dots would climb the tree and is rejected.
func sanitizeName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" || s == "." || s == ".." {
		return "", errInvalidName
	}
	return s, nil
}

var _ Archiver = (*ObjectArchiver)(nil)
