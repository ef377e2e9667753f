package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionStore(t *testing.T) {
	testStore(t, NewSessionStore())
}

func TestSessionStoreEmptyValue(t *testing.T) {
	s := NewSessionStore()

	if err := s.Set("k", ""); err != nil {
		t.Fatal(err)
	}

	v, err := s.Get("k")
	assert.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestSessionStoreClose(t *testing.T) {
	s := NewSessionStore()

	if err := s.Set("k", "deadbeef"); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, s.Len())

	assert.NoError(t, s.Close())
	assert.Equal(t, 0, s.Len())

	_, err := s.Get("k")
	assert.Equal(t, ErrClosed, err)
	assert.Equal(t, ErrClosed, s.Set("k", "x"))
	assert.Equal(t, ErrClosed, s.Delete("k"))
}
