package domain

// Identity holds the long-term key material for the local user: an
// Ed25519 pair for signing (from which the DID is derived) and an
// X25519 pair for key agreement.
type Identity struct {
	DID    string         `json:"did"`
	XPub   X25519Public   `json:"xpub"`
	XPriv  X25519Private  `json:"xpriv"`
	EdPub  Ed25519Public  `json:"edpub"`
	EdPriv Ed25519Private `json:"edpriv"`
}

// SignedPayload is a detached signature over a canonicalized payload,
// together with the signing key and the DID it belongs to. Verifiers
// must re-derive the DID from PublicKey before trusting it.
type SignedPayload struct {
	DID       string        `json:"did"`
	PublicKey Ed25519Public `json:"public_key"`
	Signature []byte        `json:"signature"`
}

// ChallengeProof is a signed liveness proof: the holder of the DID's
// private key signs a fresh random challenge and a wall-clock
// timestamp. Proofs expire after a short freshness window.
type ChallengeProof struct {
	DID       string        `json:"did"`
	Timestamp int64         `json:"timestamp"` // epoch milliseconds
	Challenge []byte        `json:"challenge"`
	PublicKey Ed25519Public `json:"public_key"`
	Signature []byte        `json:"signature"`
}
