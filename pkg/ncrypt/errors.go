package ncrypt

import "github.com/pkg/errors"

var (
	ErrDecryptionFailure    = errors.New("decryption failed")
	ErrInvalidEncodedSecret = errors.New("invalid encoded secret key")
)
