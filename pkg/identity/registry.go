package identity

import (
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tcfw/nostrkeys/internal/utils/logging"
	"github.com/tcfw/nostrkeys/pkg/ncrypt"
	"github.com/tcfw/nostrkeys/pkg/notify"
	"github.com/tcfw/nostrkeys/pkg/storage"
)

// Registry is the durable, ordered list of encrypted identities.
//
// Every change is applied as read, modify, persist under one lock. The in
// memory list only moves forward once the store has accepted the new list,
// and subscribers are told after that.
type Registry struct {
	store   storage.Store
	entries []Entry

	duplicates  DuplicatePolicy
	encryptOpts []ncrypt.Option
	metrics     *Metrics
	logger      *logrus.Entry

	topic *notify.Topic[[]Entry]

	// onReplace runs after a committed DuplicateReplace swapped the
	// credential registered under name.
	onReplace func(name string)

	// pubMu serializes mutations end to end so subscribers see changes in
	// commit order. It is always taken before mu, and mu is released before
	// subscribers run.
	pubMu sync.Mutex
	mu    sync.Mutex
}

type RegistryOption func(*Registry) error

func WithDuplicatePolicy(p DuplicatePolicy) RegistryOption {
	return func(r *Registry) error {
		r.duplicates = p
		return nil
	}
}

// WithEncryptOptions sets the codec options used for newly encrypted keys.
func WithEncryptOptions(opts ...ncrypt.Option) RegistryOption {
	return func(r *Registry) error {
		r.encryptOpts = opts
		return nil
	}
}

func WithRegistryMetrics(m *Metrics) RegistryOption {
	return func(r *Registry) error {
		r.metrics = m
		return nil
	}
}

func WithRegistryLogger(l *logrus.Entry) RegistryOption {
	return func(r *Registry) error {
		r.logger = l
		return nil
	}
}

// NewRegistry loads the entries held in store. Unreadable persisted data is
// reported as ErrCorruptRegistry.
func NewRegistry(store storage.Store, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		store:   store,
		entries: []Entry{},
		logger:  logging.Entry(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if err := r.load(); err != nil {
		return nil, err
	}

	r.topic = notify.NewTopic(r.List())

	return r, nil
}

func (r *Registry) load() error {
	d, err := r.store.Get(EntriesKey)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil
		}
		return errors.Wrap(err, "reading identities")
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(d), &entries); err != nil {
		return errors.Wrap(ErrCorruptRegistry, err.Error())
	}
	if entries != nil {
		r.entries = entries
	}

	r.logger.WithField("count", len(r.entries)).Debug("loaded identities")

	return nil
}

// List returns a copy of the entries in insertion order.
func (r *Registry) List() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Entry{}, r.entries...)
}

// Find returns the first entry registered under name.
func (r *Registry) Find(name string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.Name == name {
			return e, true
		}
	}

	return Entry{}, false
}

// Subscribe calls fn with the current entries and again after every change.
// fn may read the registry but must not modify it.
func (r *Registry) Subscribe(fn func([]Entry)) func() {
	return r.topic.Subscribe(fn)
}

// Import encrypts an nsec (or hex) secret key under passphrase and registers
// it as name.
func (r *Registry) Import(name, encodedSecret, passphrase string) error {
	if err := validName(name); err != nil {
		return err
	}

	sk, err := ncrypt.DecodeSecret(encodedSecret)
	if err != nil {
		return err
	}
	defer wipe(sk)

	ncr, err := ncrypt.Encrypt(sk, passphrase, r.encryptOpts...)
	if err != nil {
		return errors.Wrap(err, "encrypting secret key")
	}

	return r.append("import", Entry{Name: name, Ncrypt: ncr})
}

// Create generates a new secret key, registers it encrypted as name and
// returns its hex public key.
func (r *Registry) Create(name, passphrase string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}

	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return "", errors.Wrap(err, "generating secret key")
	}
	defer priv.Zero()

	sk := priv.Serialize()
	defer wipe(sk)

	ncr, err := ncrypt.Encrypt(sk, passphrase, r.encryptOpts...)
	if err != nil {
		return "", errors.Wrap(err, "encrypting secret key")
	}

	pub := hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey()))

	if err := r.append("create", Entry{Name: name, Ncrypt: ncr}); err != nil {
		return "", err
	}

	return pub, nil
}

// Add registers an already encrypted key without decrypting it. The
// credential is only checked for structure.
func (r *Registry) Add(name, ncryptsec string) error {
	if err := validName(name); err != nil {
		return err
	}

	if _, err := ncrypt.Inspect(ncryptsec); err != nil {
		return errors.Wrap(ErrInvalidCredential, err.Error())
	}

	return r.append("add", Entry{Name: name, Ncrypt: ncryptsec})
}

// Forget removes every entry named name. Forgetting an unknown name is not
// an error.
func (r *Registry) Forget(name string) error {
	r.pubMu.Lock()
	defer r.pubMu.Unlock()

	r.mu.Lock()

	next := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Name != name {
			next = append(next, e)
		}
	}

	if err := r.commit(next); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.logger.WithField("name", name).Debug("forgot identity")
	r.metrics.mutation("forget")
	r.topic.Publish(append([]Entry{}, next...))

	return nil
}

func (r *Registry) append(op string, entry Entry) error {
	r.pubMu.Lock()
	defer r.pubMu.Unlock()

	r.mu.Lock()

	next := make([]Entry, 0, len(r.entries)+1)
	replaced := false

	for _, e := range r.entries {
		if e.Name == entry.Name && !replaced {
			switch r.duplicates {
			case DuplicateReject:
				r.mu.Unlock()
				return errors.Wrapf(ErrDuplicateName, "%q", entry.Name)
			case DuplicateReplace:
				e = entry
				replaced = true
			}
		}
		next = append(next, e)
	}
	if !replaced {
		next = append(next, entry)
	}

	if err := r.commit(next); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.logger.WithFields(logrus.Fields{"name": entry.Name, "op": op}).Debug("stored identity")
	r.metrics.mutation(op)
	r.topic.Publish(append([]Entry{}, next...))

	if replaced && r.onReplace != nil {
		r.onReplace(entry.Name)
	}

	return nil
}

// commit persists next and makes it current. Assumes r.mu is held.
func (r *Registry) commit(next []Entry) error {
	d, err := json.Marshal(next)
	if err != nil {
		return errors.Wrap(err, "marshalling identities")
	}

	if err := r.store.Set(EntriesKey, string(d)); err != nil {
		return errors.Wrap(err, "persisting identities")
	}

	r.entries = next

	return nil
}
