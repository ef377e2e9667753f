package keyring

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/tcfw/nostrkeys/internal/config"
	internalStorage "github.com/tcfw/nostrkeys/internal/storage"
	"github.com/tcfw/nostrkeys/pkg/identity"
	"github.com/tcfw/nostrkeys/pkg/ncrypt"
	"github.com/tcfw/nostrkeys/pkg/signer"
	"github.com/tcfw/nostrkeys/pkg/storage"
)

const storeFileName = "identities.yaml"

// Keyring is an identity.Manager wired to its stores, metrics and logger.
type Keyring struct {
	*identity.Manager

	durable storage.Store
	session storage.Store
	slot    *signer.Slot

	registry *prometheus.Registry
	logger   *logrus.Entry
}

func New(cfg *config.Config, opts ...KeyringOption) (*Keyring, error) {
	k := &Keyring{}

	for _, opt := range opts {
		if err := opt(k); err != nil {
			return nil, err
		}
	}

	if err := WithDefaultOptions(cfg)(k); err != nil {
		return nil, err
	}

	metrics := identity.NewMetrics(k.registry)
	idCfg := cfg.Identity()

	mgr, err := identity.NewManager(k.durable, k.session,
		identity.WithMetrics(metrics),
		identity.WithSlot(k.slot),
		identity.WithForgetPolicy(idCfg.Forget),
		identity.WithRegistryOptions(
			identity.WithDuplicatePolicy(idCfg.Duplicates),
			identity.WithEncryptOptions(
				ncrypt.WithLogN(idCfg.LogN),
				ncrypt.WithKeySecurity(idCfg.KeySecurity),
			),
			identity.WithRegistryLogger(k.logger.WithField("component", "registry")),
		),
		identity.WithCacheOptions(
			identity.WithUnlockRate(idCfg.UnlockRate, idCfg.UnlockBurst),
			identity.WithCacheLogger(k.logger.WithField("component", "unlock")),
		),
	)
	if err != nil {
		k.closeDurable()
		return nil, errors.Wrap(err, "initing identity manager")
	}
	k.Manager = mgr

	k.logger.WithFields(logrus.Fields{
		"identities": len(mgr.List()),
		"duplicates": idCfg.Duplicates,
		"forget":     idCfg.Forget,
	}).Debug("keyring ready")

	return k, nil
}

// Metrics returns the registry the keyring counters are registered on.
func (k *Keyring) Metrics() *prometheus.Registry {
	return k.registry
}

// Close ends the session and closes the durable store.
func (k *Keyring) Close() error {
	err := k.Manager.Close()

	if cerr := k.closeDurable(); cerr != nil && err == nil {
		err = cerr
	}

	return err
}

func (k *Keyring) closeDurable() error {
	if c, ok := k.durable.(storage.Closer); ok {
		return c.Close()
	}

	return nil
}

func openDurable(c *config.Store) (storage.Store, error) {
	switch c.Backend {
	case config.BackendPebble:
		s, err := internalStorage.NewPebbleStore(c.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendFile:
		s, err := internalStorage.NewFileStore(filepath.Join(c.Path, storeFileName))
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMemory:
		return storage.NewMemStore(), nil
	default:
		return nil, errors.Errorf("unknown store backend %q", c.Backend)
	}
}
