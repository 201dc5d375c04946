// Package did derives and validates did:key decentralized identifiers
// for Ed25519 public keys.
//
// The identifier is deterministic: the 2-byte multicodec tag for an
// Ed25519 public key (0xED 0x01) is prepended to the raw key bytes, the
// result is base58btc-encoded, and the encoding is prefixed with
// "did:key:z". The same key always re-derives the same DID, which lets
// stored identities be checked for corruption.
package did

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"palaver/internal/domain"
)

// Prefix is the scheme and multibase marker every palaver DID starts with.
const Prefix = "did:key:z"

// multicodec tag for an Ed25519 public key.
var ed25519Tag = []byte{0xED, 0x01}

var (
	// ErrMalformed is returned for strings that are not did:key
	// identifiers of the supported key type.
	ErrMalformed = errors.New("malformed DID")
)

// FromPublicKey derives the DID for an Ed25519 public key.
func FromPublicKey(pub domain.Ed25519Public) string {
	tagged := make([]byte, 0, len(ed25519Tag)+len(pub))
	tagged = append(tagged, ed25519Tag...)
	tagged = append(tagged, pub[:]...)
	return Prefix + base58.Encode(tagged)
}

// PublicKey extracts the Ed25519 public key embedded in a DID.
func PublicKey(did string) (domain.Ed25519Public, error) {
	var pub domain.Ed25519Public
	if !strings.HasPrefix(did, Prefix) {
		return pub, fmt.Errorf("%w: missing %q prefix", ErrMalformed, Prefix)
	}
	raw, err := base58.Decode(strings.TrimPrefix(did, Prefix))
	if err != nil {
		return pub, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw) != len(ed25519Tag)+len(pub) || raw[0] != ed25519Tag[0] || raw[1] != ed25519Tag[1] {
		return pub, fmt.Errorf("%w: unexpected key type or length", ErrMalformed)
	}
	copy(pub[:], raw[len(ed25519Tag):])
	return pub, nil
}

// Matches reports whether did re-derives from pub. A mismatch on a
// stored identity signals corruption or tampering.
func Matches(did string, pub domain.Ed25519Public) bool {
	return did == FromPublicKey(pub)
}
