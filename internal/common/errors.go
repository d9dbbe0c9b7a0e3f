package common

import "github.com/pkg/errors"

// Sentinel errors returned across the paillier, encoding and zkp packages.
// Wrap with errors.Wrap/Wrapf at the call site for context; callers can
// still recover the sentinel with errors.Is or errors.Cause.
var (
	// ErrBadKey is returned when key material fails a consistency check on
	// derivation (e.g. p == q, or a CRT field whose modular inverse does not
	// exist).
	ErrBadKey = errors.New("bad key material")

	// ErrInvalidPlaintext is returned when a plaintext is outside [0, n).
	ErrInvalidPlaintext = errors.New("plaintext out of range")

	// ErrInvalidCiphertext is returned when a ciphertext is outside [0, n^2).
	// Coprimality of a ciphertext with n is not checked.
	ErrInvalidCiphertext = errors.New("ciphertext out of range")

	// ErrInvalidParameter is returned for malformed call-time parameters,
	// e.g. a modulus bit length that is too small or odd, or a packed
	// component size above 64 bits.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrProofFailed is returned by both the correct-key and range proof
	// verifiers for any soundness-check failure. It intentionally carries no
	// sub-discriminant: which of the internal checks failed must not be
	// observable by a caller or leaked to a log line.
	ErrProofFailed = errors.New("proof verification failed")
)
