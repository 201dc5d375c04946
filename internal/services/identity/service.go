package identity

import (
	"crypto/rand"
	"fmt"
	"time"

	"palaver/internal/canonical"
	"palaver/internal/crypto"
	"palaver/internal/did"
	"palaver/internal/domain"
)

const (
	// DefaultProofWindow bounds how old a challenge proof may be.
	DefaultProofWindow = 5 * time.Minute

	// maxProofSkew tolerates small clock drift on proofs dated in the
	// future.
	maxProofSkew = time.Minute

	challengeBytes = 32
)

// Service manages the local identity and its uses.
//
// The identity contains:
//   - Ed25519 key pair for signing; the DID is derived from its public key.
//   - X25519 key pair for key agreement (X3DH and Double Ratchet).
//
// The private keys never leave this component except inside the opaque
// Identity record handed to the stores.
type Service struct {
	ids         domain.IdentityStore
	ratchets    domain.RatchetStore
	proofWindow time.Duration
}

// New returns an identity service backed by the given stores.
// proofWindow <= 0 selects DefaultProofWindow.
func New(ids domain.IdentityStore, ratchets domain.RatchetStore, proofWindow time.Duration) *Service {
	if proofWindow <= 0 {
		proofWindow = DefaultProofWindow
	}
	return &Service{ids: ids, ratchets: ratchets, proofWindow: proofWindow}
}

// Generate creates a fresh identity, derives its DID, persists it
// encrypted under the passphrase, and returns it.
func (s *Service) Generate(passphrase string) (domain.Identity, error) {
	xPriv, xPub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.Identity{}, err
	}
	edPriv, edPub, err := crypto.GenerateEd25519()
	if err != nil {
		return domain.Identity{}, err
	}

	id := domain.Identity{
		DID:    did.FromPublicKey(edPub),
		XPub:   xPub,
		XPriv:  xPriv,
		EdPub:  edPub,
		EdPriv: edPriv,
	}
	if err := s.ids.SaveIdentity(passphrase, id); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

// Load decrypts the stored identity and re-derives its DID. A mismatch
// between the stored DID and the one derived from the stored public key
// means tampering or a partial write; the identity is rejected.
func (s *Service) Load(passphrase string) (domain.Identity, error) {
	id, err := s.ids.LoadIdentity(passphrase)
	if err != nil {
		return domain.Identity{}, err
	}
	if !did.Matches(id.DID, id.EdPub) {
		return domain.Identity{}, fmt.Errorf("%w: stored DID does not re-derive from public key", domain.ErrIdentityCorrupted)
	}
	return id, nil
}

// Wipe removes the persisted identity and all per-peer ratchet state.
func (s *Service) Wipe() error {
	if err := s.ratchets.DeleteAll(); err != nil {
		return err
	}
	return s.ids.DeleteIdentity()
}

// Sign canonicalizes payload and returns a detached signature along
// with the signing key and DID. Malformed payloads are rejected before
// any key material is touched.
func (s *Service) Sign(passphrase string, payload any) (domain.SignedPayload, error) {
	msg, err := canonical.Marshal(payload)
	if err != nil {
		return domain.SignedPayload{}, err
	}
	id, err := s.Load(passphrase)
	if err != nil {
		return domain.SignedPayload{}, err
	}
	return domain.SignedPayload{
		DID:       id.DID,
		PublicKey: id.EdPub,
		Signature: crypto.SignEd25519(id.EdPriv, msg),
	}, nil
}

// Verify checks a detached signature over payload. The claimed DID must
// re-derive from the embedded public key, so a valid signature cannot
// be presented under someone else's DID.
func (s *Service) Verify(payload any, sp domain.SignedPayload) (bool, error) {
	if !did.Matches(sp.DID, sp.PublicKey) {
		return false, nil
	}
	msg, err := canonical.Marshal(payload)
	if err != nil {
		return false, err
	}
	return crypto.VerifyEd25519(sp.PublicKey, msg, sp.Signature), nil
}

// CreateChallengeProof produces a signed {did, timestamp, challenge}
// tuple proving live possession of the identity key.
func (s *Service) CreateChallengeProof(passphrase string) (domain.ChallengeProof, error) {
	id, err := s.Load(passphrase)
	if err != nil {
		return domain.ChallengeProof{}, err
	}
	challenge := make([]byte, challengeBytes)
	if _, err := rand.Read(challenge); err != nil {
		return domain.ChallengeProof{}, fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
	}

	proof := domain.ChallengeProof{
		DID:       id.DID,
		Timestamp: time.Now().UnixMilli(),
		Challenge: challenge,
		PublicKey: id.EdPub,
	}
	msg, err := canonical.Marshal(proof)
	if err != nil {
		return domain.ChallengeProof{}, err
	}
	proof.Signature = crypto.SignEd25519(id.EdPriv, msg)
	return proof, nil
}

// VerifyChallengeProof checks a proof against the DID we expect. Proofs
// older than the freshness window are rejected to bound replay of
// captured proofs.
func (s *Service) VerifyChallengeProof(proof domain.ChallengeProof, expectedDID string) error {
	if proof.DID != expectedDID {
		return fmt.Errorf("challenge proof DID %q does not match expected %q", proof.DID, expectedDID)
	}
	if !did.Matches(proof.DID, proof.PublicKey) {
		return fmt.Errorf("challenge proof public key does not derive DID %q", proof.DID)
	}

	age := time.Since(time.UnixMilli(proof.Timestamp))
	if age > s.proofWindow {
		return fmt.Errorf("challenge proof expired: %s old, window %s", age.Round(time.Second), s.proofWindow)
	}
	if age < -maxProofSkew {
		return fmt.Errorf("challenge proof timestamp is in the future")
	}

	msg, err := canonical.Marshal(proof)
	if err != nil {
		return err
	}
	if !crypto.VerifyEd25519(proof.PublicKey, msg, proof.Signature) {
		return fmt.Errorf("%w: challenge proof signature", domain.ErrAuthenticationFailed)
	}
	return nil
}
