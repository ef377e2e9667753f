package storage

// Store is a string key/value store. Durable backends keep values until they
// are deleted; session backends drop everything when closed.
type Store interface {
	// Get returns ErrNotFound when key has no value.
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Closer is implemented by stores that hold resources.
type Closer interface {
	Close() error
}
