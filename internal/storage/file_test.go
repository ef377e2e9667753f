package storage

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tcfw/nostrkeys/pkg/storage"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.yaml")

	f, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.Get("k")
	assert.Equal(t, storage.ErrNotFound, err)

	if err := f.Set("k", `[{"name":"alice"}]`); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	v, err := reopened.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, `[{"name":"alice"}]`, v)

	if err := reopened.Delete("k"); err != nil {
		t.Fatal(err)
	}

	reopened, err = NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = reopened.Get("k")
	assert.Equal(t, storage.ErrNotFound, err)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp-*"))
	if err != nil {
		t.Fatal(err)
	}
	assert.Empty(t, leftovers)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	if err := ioutil.WriteFile(path, []byte("values: [not: a map"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileStore(path)
	assert.Error(t, err)
}
