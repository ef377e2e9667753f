package signer

import "github.com/pkg/errors"

var (
	ErrIdentityNotUnlocked = errors.New("identity not unlocked")
	ErrNoSigner            = errors.New("no signer installed")
)
