package identity_test

import (
	"errors"
	"testing"
	"time"

	"palaver/internal/canonical"
	"palaver/internal/crypto"
	"palaver/internal/domain"
	"palaver/internal/services/identity"
	"palaver/internal/store"
)

func newService(t *testing.T) (*identity.Service, *store.IdentityFileStore) {
	t.Helper()
	home := t.TempDir()
	ids := store.NewIdentityFileStore(home)
	ratchets := store.NewRatchetFileStore(home)
	return identity.New(ids, ratchets, 0), ids
}

func TestGenerateLoad_DIDStable(t *testing.T) {
	svc, _ := newService(t)

	id, err := svc.Generate("pass")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got, err := svc.Load("pass")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DID != id.DID {
		t.Fatalf("DID changed across load: %q vs %q", got.DID, id.DID)
	}
}

func TestLoad_TamperedPublicKey_Corrupted(t *testing.T) {
	svc, ids := newService(t)

	id, err := svc.Generate("pass")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Flip one byte of the stored public key while keeping the DID.
	id.EdPub[0] ^= 0x01
	if err := ids.SaveIdentity("pass", id); err != nil {
		t.Fatalf("SaveIdentity: %v", err)
	}

	if _, err := svc.Load("pass"); !errors.Is(err, domain.ErrIdentityCorrupted) {
		t.Fatalf("got %v, want ErrIdentityCorrupted", err)
	}
}

func TestSignVerify_AcrossIdentities(t *testing.T) {
	alice, _ := newService(t)
	bob, _ := newService(t)

	if _, err := alice.Generate("alice-pass"); err != nil {
		t.Fatalf("Generate alice: %v", err)
	}
	if _, err := bob.Generate("bob-pass"); err != nil {
		t.Fatalf("Generate bob: %v", err)
	}

	payload := map[string]any{"name": "Alice"}
	sp, err := alice.Sign("alice-pass", payload)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// Bob verifies Alice's signature over the same payload.
	ok, err := bob.Verify(map[string]any{"name": "Alice"}, sp)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("valid signature rejected")
	}

	// A different payload under the same signature must fail.
	ok, err = bob.Verify(map[string]any{"name": "Bob"}, sp)
	if err != nil {
		t.Fatalf("Verify altered payload: %v", err)
	}
	if ok {
		t.Fatal("signature accepted for altered payload")
	}
}

func TestVerify_DIDKeyMismatchRejected(t *testing.T) {
	alice, _ := newService(t)
	mallory, _ := newService(t)

	if _, err := alice.Generate("alice-pass"); err != nil {
		t.Fatalf("Generate alice: %v", err)
	}
	if _, err := mallory.Generate("mallory-pass"); err != nil {
		t.Fatalf("Generate mallory: %v", err)
	}

	payload := map[string]any{"name": "Alice"}
	sp, err := mallory.Sign("mallory-pass", payload)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// Mallory presents a valid signature under Alice's DID.
	aliceID, err := alice.Load("alice-pass")
	if err != nil {
		t.Fatalf("Load alice: %v", err)
	}
	sp.DID = aliceID.DID

	ok, err := alice.Verify(payload, sp)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("signature accepted under a DID that does not own the key")
	}
}

func TestChallengeProof_RoundTrip(t *testing.T) {
	svc, _ := newService(t)
	id, err := svc.Generate("pass")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	proof, err := svc.CreateChallengeProof("pass")
	if err != nil {
		t.Fatalf("CreateChallengeProof: %v", err)
	}
	if err := svc.VerifyChallengeProof(proof, id.DID); err != nil {
		t.Fatalf("VerifyChallengeProof: %v", err)
	}

	// Wrong expected DID is rejected.
	if err := svc.VerifyChallengeProof(proof, "did:key:zother"); err == nil {
		t.Fatal("proof accepted for the wrong DID")
	}
}

// backdatedProof builds a proof with the given age, signed correctly.
func backdatedProof(t *testing.T, id domain.Identity, age time.Duration) domain.ChallengeProof {
	t.Helper()
	proof := domain.ChallengeProof{
		DID:       id.DID,
		Timestamp: time.Now().Add(-age).UnixMilli(),
		Challenge: []byte("0123456789abcdef0123456789abcdef"),
		PublicKey: id.EdPub,
	}
	msg, err := canonical.Marshal(proof)
	if err != nil {
		t.Fatalf("canonical.Marshal: %v", err)
	}
	proof.Signature = crypto.SignEd25519(id.EdPriv, msg)
	return proof
}

func TestChallengeProof_FreshnessWindow(t *testing.T) {
	svc, _ := newService(t)
	id, err := svc.Generate("pass")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if err := svc.VerifyChallengeProof(backdatedProof(t, id, 4*time.Minute), id.DID); err != nil {
		t.Fatalf("4-minute-old proof rejected: %v", err)
	}
	if err := svc.VerifyChallengeProof(backdatedProof(t, id, 6*time.Minute), id.DID); err == nil {
		t.Fatal("6-minute-old proof accepted")
	}
}

func TestChallengeProof_TamperedChallengeRejected(t *testing.T) {
	svc, _ := newService(t)
	id, err := svc.Generate("pass")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	proof, err := svc.CreateChallengeProof("pass")
	if err != nil {
		t.Fatalf("CreateChallengeProof: %v", err)
	}
	proof.Challenge[0] ^= 0x01
	if err := svc.VerifyChallengeProof(proof, id.DID); err == nil {
		t.Fatal("tampered proof accepted")
	}
}

func TestWipe_RemovesIdentity(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.Generate("pass"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := svc.Wipe(); err != nil {
		t.Fatalf("Wipe: %v", err)
	}
	if _, err := svc.Load("pass"); err == nil {
		t.Fatal("identity still loadable after wipe")
	}
}
