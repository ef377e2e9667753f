package identity

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	// EntriesKey holds the JSON list of entries in the durable store.
	EntriesKey = "nostr-identity:ncrypts"

	sessionKeyPrefix = "nostr-identity:sk:"
)

// Entry is a named, encrypted identity as persisted. It never carries
// decrypted key material.
type Entry struct {
	Name   string `json:"name"`
	Ncrypt string `json:"ncrypt"`
}

func sessionKey(name string) string {
	return sessionKeyPrefix + name
}

// DuplicatePolicy decides what happens when an identity is added under a
// name that is already registered.
type DuplicatePolicy int

const (
	// DuplicateReject fails with ErrDuplicateName.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateAllow appends a second entry with the same name. Lookups by
	// name find the first.
	DuplicateAllow
	// DuplicateReplace swaps the credential of the existing entry in place.
	DuplicateReplace
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateAllow:
		return "allow"
	case DuplicateReplace:
		return "replace"
	default:
		return "reject"
	}
}

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return DuplicateReject, nil
	case "allow":
		return DuplicateAllow, nil
	case "replace":
		return DuplicateReplace, nil
	default:
		return DuplicateReject, errors.Errorf("unknown duplicate policy %q", s)
	}
}

// ForgetPolicy decides whether forgetting an identity also drops its
// unlocked key from the session.
type ForgetPolicy int

const (
	// ForgetKeepUnlocked leaves the session key reachable until the session
	// ends.
	ForgetKeepUnlocked ForgetPolicy = iota
	// ForgetLock removes the session key and uninstalls the identity's
	// signer if it is active.
	ForgetLock
)

func (p ForgetPolicy) String() string {
	if p == ForgetLock {
		return "lock"
	}
	return "keep"
}

func ParseForgetPolicy(s string) (ForgetPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return ForgetKeepUnlocked, nil
	case "lock":
		return ForgetLock, nil
	default:
		return ForgetKeepUnlocked, errors.Errorf("unknown forget policy %q", s)
	}
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
