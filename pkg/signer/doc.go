// Package signer turns unlocked secret keys into event signers.
//
// A Signer only offers PublicKey and SignEvent. Events are signed with
// BIP-340 Schnorr signatures over secp256k1, the event id being the sha256 of
// its canonical serialisation. The Slot is the single process-wide signer,
// passed explicitly to the code that needs to sign.
package signer
