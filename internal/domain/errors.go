package domain

import "errors"

// Error taxonomy for the session layer. Callers match with errors.Is;
// wrapping sites add peer and message-number context.
var (
	// ErrKeyGeneration means the underlying cryptographic primitive
	// could not produce key material. Fatal for the operation; retrying
	// without a working entropy source will not help.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrIdentityCorrupted means a stored identity failed its DID
	// re-derivation check. The identity is unusable and must be
	// regenerated, never silently repaired.
	ErrIdentityCorrupted = errors.New("identity corrupted")

	// ErrInvalidBundleSignature means a prekey bundle's signed-prekey
	// signature did not verify. No secret may be derived from such a
	// bundle.
	ErrInvalidBundleSignature = errors.New("invalid bundle signature")

	// ErrAuthenticationFailed means a ciphertext failed its integrity
	// check: tampering, corruption, or desynchronized ratchet state.
	ErrAuthenticationFailed = errors.New("message authentication failed")

	// ErrMessageKeyUnavailable means the message key for a skipped
	// message was evicted before use. The message is permanently
	// undecryptable.
	ErrMessageKeyUnavailable = errors.New("message key unavailable")
)
