package storage

import (
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/tcfw/nostrkeys/internal/utils/logging"
	"github.com/tcfw/nostrkeys/pkg/storage"
)

var (
	_ storage.Store  = (*PebbleStore)(nil)
	_ storage.Closer = (*PebbleStore)(nil)
)

const (
	cacheSize = 1 << 20 * 8
)

// PebbleStore is a durable Store backed by a pebble database. Every write is
// synced before it returns.
type PebbleStore struct {
	db *pebble.DB

	closeOnce sync.Once
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	c := pebble.NewCache(cacheSize)
	defer c.Unref()

	db, err := pebble.Open(path, &pebble.Options{Cache: c})
	if err != nil {
		return nil, errors.Wrap(err, "opening pebble store")
	}

	logging.Entry().WithField("path", path).Debug("opened pebble store")

	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Get(key string) (string, error) {
	d, done, err := s.db.Get([]byte(key))
	if err != nil {
		if err == pebble.ErrNotFound {
			return "", storage.ErrNotFound
		}
		return "", errors.Wrapf(err, "getting %s", key)
	}
	defer done.Close()

	return string(d), nil
}

func (s *PebbleStore) Set(key, value string) error {
	if err := s.db.Set([]byte(key), []byte(value), pebble.Sync); err != nil {
		return errors.Wrapf(err, "setting %s", key)
	}

	return nil
}

func (s *PebbleStore) Delete(key string) error {
	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		return errors.Wrapf(err, "deleting %s", key)
	}

	return nil
}

func (s *PebbleStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
	})

	return err
}
