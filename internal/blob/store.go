package blob

import (
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
)

// ErrNotFound indicates the blob ref has no stored content.
var ErrNotFound = errors.New("blob not found")

// Store is the blob collaborator boundary: message and post images live here,
// addressed by an opaque ref. Deletion by callers is best-effort.
type Store interface {
	Put(prefix string, data []byte, contentType string) (string, error)
	Get(ref string) ([]byte, string, error)
	URL(ref string) string
	Delete(ref string) error
	Close() error
}

// PebbleStore keeps blobs in a local Pebble database, keyed by ref.
type PebbleStore struct {
	db      *pebble.DB
	baseURL string
}

// Open opens (or creates) the blob database at dir.
func Open(dir, baseURL string) (*PebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return &PebbleStore{db: db, baseURL: baseURL}, nil
}

// Put stores data under a fresh ref scoped by prefix, e.g. "posts/u1".
func (s *PebbleStore) Put(prefix string, data []byte, contentType string) (string, error) {
	ref := path.Join(prefix, fmt.Sprintf("%d_%s", time.Now().UnixNano(), uuid.NewString()))
	if err := s.db.Set(dataKey(ref), data, pebble.Sync); err != nil {
		return "", err
	}
	if err := s.db.Set(metaKey(ref), []byte(contentType), pebble.Sync); err != nil {
		return "", err
	}
	return ref, nil
}

// Get returns the stored bytes and content type for ref.
func (s *PebbleStore) Get(ref string) ([]byte, string, error) {
	value, closer, err := s.db.Get(dataKey(ref))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	data := make([]byte, len(value))
	copy(data, value)
	closer.Close()

	contentType := "application/octet-stream"
	if meta, mcloser, err := s.db.Get(metaKey(ref)); err == nil {
		contentType = string(meta)
		mcloser.Close()
	}
	return data, contentType, nil
}

// URL returns the address the API serves this ref from.
func (s *PebbleStore) URL(ref string) string {
	return s.baseURL + "/" + ref
}

// Delete removes the blob; deleting a missing ref is not an error.
func (s *PebbleStore) Delete(ref string) error {
	if err := s.db.Delete(dataKey(ref), pebble.Sync); err != nil {
		return err
	}
	return s.db.Delete(metaKey(ref), pebble.Sync)
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}

func dataKey(ref string) []byte {
	return []byte("blob:" + ref)
}

func metaKey(ref string) []byte {
	return []byte("meta:" + ref)
}
