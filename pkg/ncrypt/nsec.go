package ncrypt

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/pkg/errors"
)

// DecodeSecret parses an nsec bech32 string, or a 64 character hex string,
// into a 32 byte secret key. The key must be a valid secp256k1 scalar.
func DecodeSecret(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)

	skHex := encoded
	if strings.HasPrefix(encoded, "nsec1") {
		prefix, value, err := nip19.Decode(encoded)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidEncodedSecret, err.Error())
		}
		if prefix != "nsec" {
			return nil, errors.Wrapf(ErrInvalidEncodedSecret, "unexpected prefix %q", prefix)
		}
		s, ok := value.(string)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidEncodedSecret, "unexpected nsec value %T", value)
		}
		skHex = s
	}

	sk, err := hex.DecodeString(skHex)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidEncodedSecret, "not nsec or hex")
	}
	if err := ValidateSecret(sk); err != nil {
		return nil, err
	}

	return sk, nil
}

// ValidateSecret checks sk is a usable secp256k1 secret key.
func ValidateSecret(sk []byte) error {
	if len(sk) != KeySize {
		return errors.Wrapf(ErrInvalidEncodedSecret, "secret key is %d bytes, want %d", len(sk), KeySize)
	}

	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(sk); overflow || s.IsZero() {
		return errors.Wrap(ErrInvalidEncodedSecret, "secret key out of range")
	}

	return nil
}

// EncodeSecret returns the nsec form of sk.
func EncodeSecret(sk []byte) (string, error) {
	if err := ValidateSecret(sk); err != nil {
		return "", err
	}

	return nip19.EncodePrivateKey(hex.EncodeToString(sk))
}

// EncodePublic returns the npub form of a hex x-only public key.
func EncodePublic(pkHex string) (string, error) {
	return nip19.EncodePublicKey(pkHex)
}
