// Package ncrypt encodes secret keys at rest.
//
// Encrypted keys use the ncryptsec format: a bech32 string wrapping
// version, scrypt work factor, salt, XChaCha20-Poly1305 nonce, a key
// security byte and the sealed 32 byte key. Plain keys are imported from
// the nsec bech32 form or from hex.
package ncrypt
