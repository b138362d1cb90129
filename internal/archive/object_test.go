package archive

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract-api/internal/shared/apperr"
	"docextract-api/internal/shared/storage/object/local"
)

type failingStore struct{}

func (failingStore) Put(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("disk full")
}

func fixedIDs(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func TestObjectArchiverGroupsURLsByCategory(t *testing.T) {
	store := local.New(t.TempDir(), "http://localhost:8080/files")
	archiver := NewObjectArchiver(store)
	archiver.newID = fixedIDs("0b7c")

	submitter, docs := testBundle()
	res, err := archiver.Store(context.Background(), submitter, docs, "")
	require.NoError(t, err)

	url, ok := res.First(CategoryDocuments)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8080/files/placeorder/"+hashKey("9876543210")+"/documents/0b7c/card.png", url)
}

func TestObjectArchiverSameNameKeepsBothObjects(t *testing.T) {
	dir := t.TempDir()
	archiver := NewObjectArchiver(local.New(dir, "http://localhost:8080/files"))
	submitter := Submitter{MobileNo: "9876543210"}

	store := func(payload string) string {
		docs := []Document{{ProductCode: CategoryDocuments, Images: []Image{{Name: "doc_1700000000.png", Type: "image/png", Bytes: []byte(payload)}}}}
		res, err := archiver.Store(context.Background(), submitter, docs, "")
		require.NoError(t, err)
		url, ok := res.First(CategoryDocuments)
		require.True(t, ok)
		return url
	}

	first := store("first")
	second := store("second")
	require.NotEqual(t, first, second)

	read := func(url string) string {
		key := strings.TrimPrefix(url, "http://localhost:8080/files/")
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "first", read(first))
	assert.Equal(t, "second", read(second))
}

func TestObjectArchiverNames(t *testing.T) {
	tests := []struct {
		name     string
		image    string
		wantErr  bool
		wantTail string
	}{
		{name: "embedded dots", image: "pan..front.jpg", wantTail: "/pan..front.jpg"},
		{name: "trailing dots", image: "scan...png", wantTail: "/scan...png"},
		{name: "separators flattened", image: "../../x.png", wantTail: "/.._.._x.png"},
		{name: "parent segment", image: "..", wantErr: true},
		{name: "current segment", image: ".", wantErr: true},
		{name: "blank", image: "  ", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			archiver := NewObjectArchiver(local.New(dir, "http://localhost:8080/files"))
			archiver.newID = fixedIDs("id1")
			docs := []Document{{ProductCode: CategoryDocuments, Images: []Image{{Name: tt.image, Bytes: []byte("x")}}}}

			res, err := archiver.Store(context.Background(), Submitter{}, docs, "")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus())
				return
			}
			require.NoError(t, err)
			url, ok := res.First(CategoryDocuments)
			require.True(t, ok)
			assert.True(t, strings.HasSuffix(url, "/documents/id1"+tt.wantTail), url)

			entries, err := os.ReadDir(filepath.Join(dir, "placeorder", hashKey(""), "documents", "id1"))
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestObjectArchiverStoreFailure(t *testing.T) {
	archiver := NewObjectArchiver(failingStore{})

	submitter, docs := testBundle()
	_, err := archiver.Store(context.Background(), submitter, docs, "acme")
	require.Error(t, err)
	appErr := apperr.As(err)
	assert.Equal(t, apperr.KindArchival, appErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus())
}

func TestHashKeyIsStableHex(t *testing.T) {
	got := hashKey("9876543210")
	assert.Equal(t, got, hashKey("9876543210"))
	assert.Len(t, got, 64)
	assert.NotEqual(t, got, hashKey("9876543211"))
}
