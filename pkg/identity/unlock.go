package identity

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tcfw/nostrkeys/internal/utils/logging"
	"github.com/tcfw/nostrkeys/pkg/ncrypt"
	"github.com/tcfw/nostrkeys/pkg/signer"
	"github.com/tcfw/nostrkeys/pkg/storage"
)

var _ signer.KeySource = (*Cache)(nil)

// Lookup finds encrypted entries by name.
type Lookup interface {
	Find(name string) (Entry, bool)
}

// Cache holds the secret keys unlocked during this session. Keys live only
// in the session store, hex encoded under nostr-identity:sk:<name>.
type Cache struct {
	lookup  Lookup
	session storage.Store

	throttle *throttle
	metrics  *Metrics
	logger   *logrus.Entry
	now      func() time.Time
}

type CacheOption func(*Cache) error

// WithUnlockRate limits unlock attempts per identity to perSecond with the
// given burst. Zero disables the limit.
func WithUnlockRate(perSecond float64, burst int) CacheOption {
	return func(c *Cache) error {
		c.throttle = newThrottle(perSecond, burst)
		return nil
	}
}

func WithCacheMetrics(m *Metrics) CacheOption {
	return func(c *Cache) error {
		c.metrics = m
		return nil
	}
}

func WithCacheLogger(l *logrus.Entry) CacheOption {
	return func(c *Cache) error {
		c.logger = l
		return nil
	}
}

func NewCache(lookup Lookup, session storage.Store, opts ...CacheOption) (*Cache, error) {
	c := &Cache{
		lookup:  lookup,
		session: session,
		logger:  logging.Entry(),
		now:     time.Now,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Unlock decrypts the identity name with passphrase, keeps the key for the
// rest of the session and returns a copy of it. A failed attempt leaves the
// cache untouched.
func (c *Cache) Unlock(name, passphrase string) ([]byte, error) {
	l := c.logger.WithField("name", name)

	if !c.throttle.allow(name, c.now()) {
		c.metrics.unlock("throttled")
		l.Warn("unlock throttled")
		return nil, errors.Wrapf(ErrUnlockThrottled, "identity %q", name)
	}

	e, ok := c.lookup.Find(name)
	if !ok {
		c.metrics.unlock("not_found")
		return nil, errors.Wrapf(ErrIdentityNotFound, "%q", name)
	}

	sk, err := ncrypt.Decrypt(e.Ncrypt, passphrase)
	if err != nil {
		c.metrics.unlock("invalid_passphrase")
		l.Debug("unlock failed")
		return nil, fmt.Errorf("%w: %w", ErrInvalidPassphrase, err)
	}

	skHex := hex.EncodeToString(sk)
	if err := c.session.Set(sessionKey(name), skHex); err != nil {
		wipe(sk)
		return nil, errors.Wrap(err, "storing unlocked key")
	}

	c.metrics.unlock("ok")
	l.Debug("unlocked identity")

	return sk, nil
}

// Unlocked returns a copy of the session key for name, if unlocked. It never
// decrypts anything.
func (c *Cache) Unlocked(name string) ([]byte, bool) {
	v, err := c.session.Get(sessionKey(name))
	if err != nil || v == "" {
		return nil, false
	}

	sk, err := hex.DecodeString(v)
	if err != nil {
		return nil, false
	}

	return sk, true
}

// Lock drops the session key for name.
func (c *Cache) Lock(name string) error {
	if err := c.session.Delete(sessionKey(name)); err != nil {
		return errors.Wrapf(err, "locking %q", name)
	}

	return nil
}

// Close ends the session, dropping every unlocked key when the session store
// supports it.
func (c *Cache) Close() error {
	if cl, ok := c.session.(storage.Closer); ok {
		return cl.Close()
	}

	return nil
}
