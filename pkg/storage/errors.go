package storage

import "github.com/pkg/errors"

var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("store closed")
)
