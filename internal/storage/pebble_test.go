package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tcfw/nostrkeys/pkg/storage"
)

func TestPebbleStore(t *testing.T) {
	dir := t.TempDir()

	s, err := NewPebbleStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Get("k")
	assert.Equal(t, storage.ErrNotFound, err)

	if err := s.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	s, err = NewPebbleStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	v, err := s.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "v", v)

	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
	_, err = s.Get("k")
	assert.Equal(t, storage.ErrNotFound, err)
}
