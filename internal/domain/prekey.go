package domain

// OneTimePair is the full (private+public) one-time prekey stored
// locally. Each pair is consumed at most once.
type OneTimePair struct {
	ID   string        `json:"id"`
	Priv X25519Private `json:"priv"`
	Pub  X25519Public  `json:"pub"`
}

// OneTimePub is only the public half of a one-time prekey, as published
// in bundles.
type OneTimePub struct {
	ID  string       `json:"id"`
	Pub X25519Public `json:"pub"`
}

// PrekeyBundle is the public key-exchange material a peer publishes so
// that sessions can be established asynchronously. SignedPrekey must
// verify against SigningKey via SignedPrekeySig before any secret is
// derived from the bundle.
type PrekeyBundle struct {
	DID             string        `json:"did"`
	IdentityKey     X25519Public  `json:"identity_key"`
	SigningKey      Ed25519Public `json:"signing_key"`
	SPKID           string        `json:"spk_id"`
	SignedPrekey    X25519Public  `json:"signed_prekey"`
	SignedPrekeySig []byte        `json:"signed_prekey_sig"`
	OneTime         []OneTimePub  `json:"one_time,omitempty"`
	Timestamp       int64         `json:"timestamp"` // epoch milliseconds
}

// Handshake carries the X3DH parameters the initiator attaches to the
// first envelope so the responder can derive the same root key.
type Handshake struct {
	InitiatorDID string       `json:"initiator_did"`
	InitiatorIK  X25519Public `json:"initiator_ik"`
	Ephemeral    X25519Public `json:"ephemeral"`
	SPKID        string       `json:"spk_id"`
	OPKID        string       `json:"opk_id,omitempty"`
}
