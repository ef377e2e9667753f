package storage

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tcfw/nostrkeys/pkg/storage"
)

var _ storage.Store = (*FileStore)(nil)

type fileStoreData struct {
	Values map[string]string `yaml:"values"`
}

// FileStore is a durable Store kept in a single YAML file. The whole file is
// rewritten through a temp file and rename on every change, so readers see
// either the old or the new document.
type FileStore struct {
	path string
	data fileStoreData

	mu sync.RWMutex
}

func NewFileStore(path string) (*FileStore, error) {
	f := &FileStore{path: path}
	if err := f.read(); err != nil {
		return nil, err
	}

	return f, nil
}

func (fs *FileStore) read() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.data.Values = make(map[string]string)

	d, err := ioutil.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "opening store file for read")
	}

	if err := yaml.Unmarshal(d, &fs.data); err != nil {
		return errors.Wrap(err, "unmarshalling store data")
	}

	if fs.data.Values == nil {
		fs.data.Values = make(map[string]string)
	}

	return nil
}

func (fs *FileStore) Get(key string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	v, ok := fs.data.Values[key]
	if !ok {
		return "", storage.ErrNotFound
	}

	return v, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.data.Values[key]
	fs.data.Values[key] = value

	if err := fs.write(); err != nil {
		if had {
			fs.data.Values[key] = prev
		} else {
			delete(fs.data.Values, key)
		}
		return err
	}

	return nil
}

func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.data.Values[key]
	if !had {
		return nil
	}
	delete(fs.data.Values, key)

	if err := fs.write(); err != nil {
		fs.data.Values[key] = prev
		return err
	}

	return nil
}

func (fs *FileStore) write() error {
	//assumes locked fs.mu

	d, err := yaml.Marshal(&fs.data)
	if err != nil {
		return errors.Wrap(err, "marshalling store data")
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "creating store dir")
	}

	f, err := ioutil.TempFile(dir, filepath.Base(fs.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "opening store file for write")
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(d); err != nil {
		f.Close()
		return errors.Wrap(err, "writing store file")
	}
	if err := f.Chmod(0600); err != nil {
		f.Close()
		return errors.Wrap(err, "chmod store file")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "syncing store file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing store file")
	}

	return os.Rename(tmp, fs.path)
}
