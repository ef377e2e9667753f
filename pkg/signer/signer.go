package signer

import (
	"context"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/nbd-wtf/go-nostr"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tcfw/nostrkeys/pkg/ncrypt"
)

// EventTemplate is an unsigned event. Author, id and signature are filled in
// by a Signer.
type EventTemplate struct {
	Kind      int             `json:"kind"`
	CreatedAt nostr.Timestamp `json:"created_at"`
	Tags      nostr.Tags      `json:"tags"`
	Content   string          `json:"content"`
}

// Signer signs events for one identity. Implementations never expose the
// secret key.
type Signer interface {
	PublicKey(ctx context.Context) (string, error)
	SignEvent(ctx context.Context, tmpl EventTemplate) (*nostr.Event, error)
}

// KeySource looks up unlocked secret keys by identity name. The returned
// slice belongs to the caller.
type KeySource interface {
	Unlocked(name string) ([]byte, bool)
}

type keySigner struct {
	priv   *btcec.PrivateKey
	pubKey string

	signed prometheus.Counter
}

// New returns a Signer over sk. sk is wiped once the key has been loaded.
func New(sk []byte) (Signer, error) {
	return newKeySigner(sk, nil)
}

func newKeySigner(sk []byte, signed prometheus.Counter) (*keySigner, error) {
	defer wipe(sk)

	if err := ncrypt.ValidateSecret(sk); err != nil {
		return nil, err
	}

	priv, pub := btcec.PrivKeyFromBytes(sk)

	return &keySigner{
		priv:   priv,
		pubKey: hex.EncodeToString(schnorr.SerializePubKey(pub)),
		signed: signed,
	}, nil
}

func (s *keySigner) PublicKey(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return s.pubKey, nil
}

func (s *keySigner) SignEvent(ctx context.Context, tmpl EventTemplate) (*nostr.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tags := make(nostr.Tags, 0, len(tmpl.Tags))
	for _, t := range tmpl.Tags {
		tags = append(tags, append(nostr.Tag{}, t...))
	}

	evt := &nostr.Event{
		PubKey:    s.pubKey,
		CreatedAt: tmpl.CreatedAt,
		Kind:      tmpl.Kind,
		Tags:      tags,
		Content:   tmpl.Content,
	}
	if evt.CreatedAt == 0 {
		evt.CreatedAt = nostr.Now()
	}

	evt.ID = evt.GetID()
	id, err := hex.DecodeString(evt.ID)
	if err != nil {
		return nil, errors.Wrap(err, "decoding event id")
	}

	sig, err := schnorr.Sign(s.priv, id)
	if err != nil {
		return nil, errors.Wrap(err, "signing event")
	}
	evt.Sig = hex.EncodeToString(sig.Serialize())

	if s.signed != nil {
		s.signed.Inc()
	}

	return evt, nil
}

// Provider creates Signers for unlocked identities.
type Provider struct {
	keys   KeySource
	signed prometheus.Counter
}

type ProviderOption func(*Provider)

// WithSignCounter counts every event signed by Signers from this Provider.
func WithSignCounter(c prometheus.Counter) ProviderOption {
	return func(p *Provider) {
		p.signed = c
	}
}

func NewProvider(keys KeySource, opts ...ProviderOption) *Provider {
	p := &Provider{keys: keys}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Create returns a Signer for name, failing with ErrIdentityNotUnlocked when
// the identity has not been unlocked this session.
func (p *Provider) Create(name string) (Signer, error) {
	sk, ok := p.keys.Unlocked(name)
	if !ok {
		return nil, errors.Wrapf(ErrIdentityNotUnlocked, "identity %q", name)
	}

	return newKeySigner(sk, p.signed)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
