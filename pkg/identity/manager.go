package identity

import (
	"github.com/pkg/errors"

	"github.com/tcfw/nostrkeys/pkg/signer"
	"github.com/tcfw/nostrkeys/pkg/storage"
)

// Manager ties the registry, the unlock cache and the selector together over
// one durable store and one session store.
type Manager struct {
	Registry *Registry
	Cache    *Cache
	Selector *Selector

	forget ForgetPolicy
}

type managerConfig struct {
	registryOpts []RegistryOption
	cacheOpts    []CacheOption
	forget       ForgetPolicy
	slot         *signer.Slot
	metrics      *Metrics
}

type ManagerOption func(*managerConfig)

func WithRegistryOptions(opts ...RegistryOption) ManagerOption {
	return func(c *managerConfig) {
		c.registryOpts = append(c.registryOpts, opts...)
	}
}

func WithCacheOptions(opts ...CacheOption) ManagerOption {
	return func(c *managerConfig) {
		c.cacheOpts = append(c.cacheOpts, opts...)
	}
}

func WithForgetPolicy(p ForgetPolicy) ManagerOption {
	return func(c *managerConfig) {
		c.forget = p
	}
}

// WithSlot installs activated signers into slot instead of a private one.
func WithSlot(slot *signer.Slot) ManagerOption {
	return func(c *managerConfig) {
		c.slot = slot
	}
}

// WithMetrics records registry, unlock and signing counters on m.
func WithMetrics(m *Metrics) ManagerOption {
	return func(c *managerConfig) {
		c.metrics = m
	}
}

func NewManager(durable, session storage.Store, opts ...ManagerOption) (*Manager, error) {
	cfg := &managerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.slot == nil {
		cfg.slot = signer.NewSlot()
	}

	regOpts := append([]RegistryOption{WithRegistryMetrics(cfg.metrics)}, cfg.registryOpts...)
	reg, err := NewRegistry(durable, regOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "opening registry")
	}

	cacheOpts := append([]CacheOption{WithCacheMetrics(cfg.metrics)}, cfg.cacheOpts...)
	cache, err := NewCache(reg, session, cacheOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "opening unlock cache")
	}

	provider := signer.NewProvider(cache, signer.WithSignCounter(cfg.metrics.SignCounter()))

	m := &Manager{
		Registry: reg,
		Cache:    cache,
		Selector: NewSelector(provider, cfg.slot),
		forget:   cfg.forget,
	}

	reg.onReplace = func(name string) {
		if err := m.relock(name); err != nil {
			reg.logger.WithError(err).WithField("name", name).Warn("replaced credential still unlocked")
		}
	}

	return m, nil
}

func (m *Manager) List() []Entry {
	return m.Registry.List()
}

func (m *Manager) Import(name, encodedSecret, passphrase string) error {
	return m.Registry.Import(name, encodedSecret, passphrase)
}

func (m *Manager) Create(name, passphrase string) (string, error) {
	return m.Registry.Create(name, passphrase)
}

func (m *Manager) Add(name, ncryptsec string) error {
	return m.Registry.Add(name, ncryptsec)
}

// Forget removes name from the registry. Under ForgetLock its session key is
// dropped too, and its signer uninstalled if it was active. If only the
// session part fails the error wraps ErrSessionLock; the entry is gone
// either way.
func (m *Manager) Forget(name string) error {
	if err := m.Registry.Forget(name); err != nil {
		return err
	}

	if m.forget != ForgetLock {
		return nil
	}

	return m.relock(name)
}

// relock uninstalls name's signer and drops its session key.
func (m *Manager) relock(name string) error {
	m.Selector.release(name)

	if err := m.Cache.Lock(name); err != nil {
		return errors.Wrapf(ErrSessionLock, "%q: %s", name, err)
	}

	return nil
}

func (m *Manager) Unlock(name, passphrase string) ([]byte, error) {
	return m.Cache.Unlock(name, passphrase)
}

func (m *Manager) Unlocked(name string) ([]byte, bool) {
	return m.Cache.Unlocked(name)
}

func (m *Manager) Activate(name string) error {
	return m.Selector.Activate(name)
}

// Signer returns the process-wide slot.
func (m *Manager) Signer() *signer.Slot {
	return m.Selector.Slot()
}

// Close ends the session: the slot is emptied and every unlocked key dropped.
func (m *Manager) Close() error {
	if name, ok := m.Selector.Active(); ok {
		m.Selector.release(name)
	}

	return m.Cache.Close()
}
