package keyring

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/tcfw/nostrkeys/internal/config"
	"github.com/tcfw/nostrkeys/internal/utils/logging"
	"github.com/tcfw/nostrkeys/pkg/signer"
	"github.com/tcfw/nostrkeys/pkg/storage"
)

type KeyringOption func(*Keyring) error

func WithDurableStore(s storage.Store) KeyringOption {
	return func(k *Keyring) error {
		k.durable = s
		return nil
	}
}

func WithSessionStore(s storage.Store) KeyringOption {
	return func(k *Keyring) error {
		k.session = s
		return nil
	}
}

func WithSlot(s *signer.Slot) KeyringOption {
	return func(k *Keyring) error {
		k.slot = s
		return nil
	}
}

func WithMetricsRegistry(r *prometheus.Registry) KeyringOption {
	return func(k *Keyring) error {
		k.registry = r
		return nil
	}
}

func WithLogger(l *logrus.Entry) KeyringOption {
	return func(k *Keyring) error {
		k.logger = l
		return nil
	}
}

// WithDefaultOptions fills in whatever earlier options left unset, opening
// the durable store named by cfg.
func WithDefaultOptions(cfg *config.Config) KeyringOption {
	return func(k *Keyring) error {
		if k.logger == nil {
			k.logger = logging.Entry()
		}
		if k.registry == nil {
			k.registry = prometheus.NewRegistry()
		}
		if k.slot == nil {
			k.slot = signer.NewSlot()
		}
		if k.session == nil {
			k.session = storage.NewSessionStore()
		}
		if k.durable == nil {
			s, err := openDurable(cfg.Store())
			if err != nil {
				return errors.Wrap(err, "initing storage")
			}
			k.durable = s
		}

		return nil
	}
}
