package storage

import (
	"sync"

	"github.com/awnumar/memguard"
	"github.com/pkg/errors"
)

var (
	_ Store  = (*SessionStore)(nil)
	_ Closer = (*SessionStore)(nil)
)

// SessionStore is an in-memory Store for values that must not outlive the
// session. Values are sealed in memguard enclaves while at rest and the store
// forgets all of them on Close.
type SessionStore struct {
	mu      sync.RWMutex
	objects map[string]*memguard.Enclave
	closed  bool
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		objects: make(map[string]*memguard.Enclave),
	}
}

func (s *SessionStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrClosed
	}

	e, ok := s.objects[key]
	if !ok {
		return "", ErrNotFound
	}
	if e == nil {
		return "", nil
	}

	buf, err := e.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening enclave")
	}
	defer buf.Destroy()

	return string(buf.Bytes()), nil
}

func (s *SessionStore) Set(key, value string) error {
	var e *memguard.Enclave
	if len(value) > 0 {
		//NewEnclave wipes its input, so hand it a copy
		e = memguard.NewEnclave([]byte(value))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.objects[key] = e

	return nil
}

func (s *SessionStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	delete(s.objects, key)

	return nil
}

// Len reports how many values are held.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}

// Close ends the session. Every value is dropped and later calls fail with
// ErrClosed.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects = make(map[string]*memguard.Enclave)
	s.closed = true

	return nil
}
