package x3dh

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"palaver/internal/crypto"
	"palaver/internal/domain"
	"palaver/internal/util/memzero"
)

const rootKeySize = 32

// kdfInfo labels the X3DH transcript derivation.
var kdfInfo = []byte("palaver/x3dh/v1")

// VerifyBundle checks the signed-prekey signature against the bundle's
// signing key. It must pass before any secret is derived.
func VerifyBundle(b domain.PrekeyBundle) error {
	if !crypto.VerifyEd25519(b.SigningKey, b.SignedPrekey.Slice(), b.SignedPrekeySig) {
		return fmt.Errorf("%w: signed prekey %q from %q", domain.ErrInvalidBundleSignature, b.SPKID, b.DID)
	}
	return nil
}

// InitiatorRoot runs X3DH against a peer's bundle and returns the root
// key, the prekey ids consumed, and the ephemeral public key the
// responder needs to recompute the same root.
//
// If the bundle offers one-time prekeys the first is used; its id is
// returned so the responder can consume (and delete) the private half.
func InitiatorRoot(id domain.Identity, b domain.PrekeyBundle) (root []byte, spkID, opkID string, ephPub domain.X25519Public, err error) {
	if err = VerifyBundle(b); err != nil {
		return nil, "", "", ephPub, err
	}

	ephPriv, ephPub, err := crypto.GenerateX25519()
	if err != nil {
		return nil, "", "", ephPub, err
	}
	defer memzero.Zero(ephPriv[:])

	dh1, err := crypto.DH(id.XPriv, b.SignedPrekey) // DH(IKa, SPKb)
	if err != nil {
		return nil, "", "", ephPub, err
	}
	dh2, err := crypto.DH(ephPriv, b.IdentityKey) // DH(EKa, IKb)
	if err != nil {
		return nil, "", "", ephPub, err
	}
	dh3, err := crypto.DH(ephPriv, b.SignedPrekey) // DH(EKa, SPKb)
	if err != nil {
		return nil, "", "", ephPub, err
	}

	transcript := make([]byte, 0, 32*4)
	transcript = append(transcript, dh1[:]...)
	transcript = append(transcript, dh2[:]...)
	transcript = append(transcript, dh3[:]...)

	if len(b.OneTime) > 0 {
		opk := b.OneTime[0]
		dh4, err := crypto.DH(ephPriv, opk.Pub) // DH(EKa, OPKb)
		if err != nil {
			return nil, "", "", ephPub, err
		}
		transcript = append(transcript, dh4[:]...)
		opkID = opk.ID
	}

	root = deriveRoot(transcript)
	memzero.Zero(transcript)
	return root, b.SPKID, opkID, ephPub, nil
}

// ResponderRoot recomputes the initiator's root key from the handshake
// parameters and our private prekey halves. opkPriv is nil when the
// initiator used no one-time prekey.
func ResponderRoot(id domain.Identity, spkPriv domain.X25519Private, opkPriv *domain.X25519Private, hs domain.Handshake) ([]byte, error) {
	dh1, err := crypto.DH(spkPriv, hs.InitiatorIK) // DH(SPKb, IKa)
	if err != nil {
		return nil, err
	}
	dh2, err := crypto.DH(id.XPriv, hs.Ephemeral) // DH(IKb, EKa)
	if err != nil {
		return nil, err
	}
	dh3, err := crypto.DH(spkPriv, hs.Ephemeral) // DH(SPKb, EKa)
	if err != nil {
		return nil, err
	}

	transcript := make([]byte, 0, 32*4)
	transcript = append(transcript, dh1[:]...)
	transcript = append(transcript, dh2[:]...)
	transcript = append(transcript, dh3[:]...)

	if opkPriv != nil {
		dh4, err := crypto.DH(*opkPriv, hs.Ephemeral) // DH(OPKb, EKa)
		if err != nil {
			return nil, err
		}
		transcript = append(transcript, dh4[:]...)
	}

	root := deriveRoot(transcript)
	memzero.Zero(transcript)
	return root, nil
}

func deriveRoot(transcript []byte) []byte {
	r := hkdf.New(sha256.New, transcript, nil, kdfInfo)
	root := make([]byte, rootKeySize)
	_, _ = io.ReadFull(r, root)
	return root
}
