package ncrypt

import (
	"crypto/rand"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

const (
	// HRP is the bech32 human readable part of an encrypted secret key.
	HRP = "ncryptsec"

	// Version is the only payload version understood by this package.
	Version byte = 0x02

	// DefaultLogN is the scrypt work factor used when none is given.
	DefaultLogN uint8 = 16

	// MaxLogN bounds the work factor accepted on decrypt so a hostile blob
	// cannot ask for gigabytes of scrypt memory.
	MaxLogN uint8 = 22

	KeySize  = 32
	saltSize = 16

	payloadSize = 1 + 1 + saltSize + chacha20poly1305.NonceSizeX + 1 + KeySize + chacha20poly1305.Overhead
)

// KeySecurity records how the key was handled before it was encrypted. It is
// bound to the ciphertext as associated data.
type KeySecurity byte

const (
	KeySecurityInsecure KeySecurity = 0x00
	KeySecuritySecure   KeySecurity = 0x01
	KeySecurityUnknown  KeySecurity = 0x02
)

func (k KeySecurity) valid() bool {
	return k <= KeySecurityUnknown
}

// Params are the non-secret parameters carried by an encrypted key.
type Params struct {
	Version     byte
	LogN        uint8
	KeySecurity KeySecurity
}

type options struct {
	logN        uint8
	keySecurity KeySecurity
}

type Option func(*options)

// WithLogN sets the scrypt work factor, N = 2^logN.
func WithLogN(logN uint8) Option {
	return func(o *options) {
		o.logN = logN
	}
}

// WithKeySecurity sets the key security byte.
func WithKeySecurity(ks KeySecurity) Option {
	return func(o *options) {
		o.keySecurity = ks
	}
}

// Encrypt seals a 32 byte secret key under passphrase, returning an
// ncryptsec bech32 string. Salt and nonce are random per call.
func Encrypt(sk []byte, passphrase string, opts ...Option) (string, error) {
	o := &options{logN: DefaultLogN, keySecurity: KeySecurityUnknown}
	for _, opt := range opts {
		opt(o)
	}

	if len(sk) != KeySize {
		return "", errors.Errorf("secret key must be %d bytes, got %d", KeySize, len(sk))
	}
	if o.logN == 0 || o.logN > MaxLogN {
		return "", errors.Errorf("log_n %d out of range", o.logN)
	}
	if !o.keySecurity.valid() {
		return "", errors.Errorf("unknown key security byte 0x%02x", byte(o.keySecurity))
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "reading salt")
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "reading nonce")
	}

	key, err := deriveKey(passphrase, salt, o.logN)
	if err != nil {
		return "", err
	}
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", errors.Wrap(err, "initing aead")
	}

	ad := []byte{byte(o.keySecurity)}

	payload := make([]byte, 0, payloadSize)
	payload = append(payload, Version, o.logN)
	payload = append(payload, salt...)
	payload = append(payload, nonce...)
	payload = append(payload, ad...)
	payload = aead.Seal(payload, nonce, sk, ad)

	conv, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(err, "converting payload bits")
	}

	return bech32.Encode(HRP, conv)
}

// Decrypt opens an ncryptsec string with passphrase. Any failure, whether a
// malformed blob or a wrong passphrase, is reported as ErrDecryptionFailure.
func Decrypt(ncryptsec string, passphrase string) ([]byte, error) {
	p, payload, err := parse(ncryptsec)
	if err != nil {
		return nil, err
	}

	salt := payload[2 : 2+saltSize]
	nonce := payload[2+saltSize : 2+saltSize+chacha20poly1305.NonceSizeX]
	ad := payload[2+saltSize+chacha20poly1305.NonceSizeX : 2+saltSize+chacha20poly1305.NonceSizeX+1]
	ct := payload[2+saltSize+chacha20poly1305.NonceSizeX+1:]

	key, err := deriveKey(passphrase, salt, p.LogN)
	if err != nil {
		return nil, errors.Wrap(ErrDecryptionFailure, err.Error())
	}
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(ErrDecryptionFailure, err.Error())
	}

	sk, err := aead.Open(nil, nonce, ct, ad)
	if err != nil {
		return nil, errors.Wrap(ErrDecryptionFailure, "wrong passphrase or corrupted key")
	}

	return sk, nil
}

// Inspect validates the structure of an ncryptsec string and returns its
// parameters without needing the passphrase.
func Inspect(ncryptsec string) (Params, error) {
	p, _, err := parse(ncryptsec)
	return p, err
}

func parse(ncryptsec string) (Params, []byte, error) {
	hrp, data, err := bech32.DecodeNoLimit(ncryptsec)
	if err != nil {
		return Params{}, nil, errors.Wrap(ErrDecryptionFailure, err.Error())
	}
	if hrp != HRP {
		return Params{}, nil, errors.Wrapf(ErrDecryptionFailure, "unexpected prefix %q", hrp)
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Params{}, nil, errors.Wrap(ErrDecryptionFailure, err.Error())
	}
	if len(payload) != payloadSize {
		return Params{}, nil, errors.Wrapf(ErrDecryptionFailure, "payload is %d bytes, want %d", len(payload), payloadSize)
	}

	p := Params{
		Version:     payload[0],
		LogN:        payload[1],
		KeySecurity: KeySecurity(payload[2+saltSize+chacha20poly1305.NonceSizeX]),
	}
	if p.Version != Version {
		return Params{}, nil, errors.Wrapf(ErrDecryptionFailure, "unsupported version 0x%02x", p.Version)
	}
	if p.LogN == 0 || p.LogN > MaxLogN {
		return Params{}, nil, errors.Wrapf(ErrDecryptionFailure, "log_n %d out of range", p.LogN)
	}
	if !p.KeySecurity.valid() {
		return Params{}, nil, errors.Wrapf(ErrDecryptionFailure, "unknown key security byte 0x%02x", byte(p.KeySecurity))
	}

	return p, payload, nil
}

func deriveKey(passphrase string, salt []byte, logN uint8) ([]byte, error) {
	pw := norm.NFKC.Bytes([]byte(passphrase))
	defer wipe(pw)

	key, err := scrypt.Key(pw, salt, 1<<logN, 8, 1, chacha20poly1305.KeySize)
	if err != nil {
		return nil, errors.Wrap(err, "deriving key")
	}

	return key, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
