package identity

import (
	"github.com/pkg/errors"

	"github.com/tcfw/nostrkeys/pkg/ncrypt"
	"github.com/tcfw/nostrkeys/pkg/signer"
)

var (
	ErrIdentityNotFound    = errors.New("identity not found")
	ErrInvalidPassphrase   = errors.New("invalid passphrase")
	ErrDuplicateName       = errors.New("identity name already in use")
	ErrInvalidName         = errors.New("identity name must not be empty")
	ErrInvalidCredential   = errors.New("invalid encrypted credential")
	ErrCorruptRegistry     = errors.New("persisted identities are corrupt")
	ErrUnlockThrottled     = errors.New("too many unlock attempts")
	ErrSessionLock         = errors.New("registry updated but session key not dropped")
	ErrIdentityNotUnlocked = signer.ErrIdentityNotUnlocked

	ErrInvalidEncodedSecret = ncrypt.ErrInvalidEncodedSecret
	ErrDecryptionFailure    = ncrypt.ErrDecryptionFailure
)
