package message_test

import (
	"bytes"
	"errors"
	"testing"

	"palaver/internal/domain"
	"palaver/internal/services/exchange"
	"palaver/internal/services/identity"
	"palaver/internal/services/message"
	"palaver/internal/store"
)

// party is one side of a conversation with its own home directory.
type party struct {
	did      string
	pass     string
	exchange *exchange.Coordinator
	messages *message.Service
}

func newParty(t *testing.T, pass string) *party {
	t.Helper()
	home := t.TempDir()
	ids := store.NewIdentityFileStore(home)
	prekeys := store.NewPrekeyFileStore(home)
	bundles := store.NewBundleFileStore(home)
	ratchets := store.NewRatchetFileStore(home)

	idSvc := identity.New(ids, ratchets, 0)
	id, err := idSvc.Generate(pass)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	ex := exchange.New(idSvc, prekeys, bundles, ratchets, 0, 2)
	return &party{
		did:      id.DID,
		pass:     pass,
		exchange: ex,
		messages: message.New(ex, ratchets),
	}
}

// connect has alice consume bob's published bundle, so alice can send
// immediately and bob seeds his side from her first envelope.
func connect(t *testing.T, alice, bob *party) {
	t.Helper()
	bundle, err := bob.exchange.PublishBundle(bob.pass)
	if err != nil {
		t.Fatalf("PublishBundle: %v", err)
	}
	if _, err := alice.exchange.Consume(alice.pass, bundle); err != nil {
		t.Fatalf("Consume: %v", err)
	}
}

func TestConversation_BothDirections(t *testing.T) {
	alice := newParty(t, "alice-pass")
	bob := newParty(t, "bob-pass")
	connect(t, alice, bob)

	env, err := alice.messages.Encrypt(bob.did, []byte("hello bob"))
	if err != nil {
		t.Fatalf("alice Encrypt: %v", err)
	}
	if env.Handshake == nil {
		t.Fatal("first envelope missing handshake")
	}

	pt, err := bob.messages.Decrypt(bob.pass, alice.did, env)
	if err != nil {
		t.Fatalf("bob Decrypt: %v", err)
	}
	if !bytes.Equal(pt, []byte("hello bob")) {
		t.Fatalf("plaintext mismatch: %q", pt)
	}

	reply, err := bob.messages.Encrypt(alice.did, []byte("hello alice"))
	if err != nil {
		t.Fatalf("bob Encrypt: %v", err)
	}
	pt, err = alice.messages.Decrypt(alice.pass, bob.did, reply)
	if err != nil {
		t.Fatalf("alice Decrypt: %v", err)
	}
	if !bytes.Equal(pt, []byte("hello alice")) {
		t.Fatalf("plaintext mismatch: %q", pt)
	}

	// Alice has now heard from bob; the handshake stops riding along.
	env2, err := alice.messages.Encrypt(bob.did, []byte("again"))
	if err != nil {
		t.Fatalf("alice Encrypt again: %v", err)
	}
	if env2.Handshake != nil {
		t.Fatal("handshake still attached after first inbound message")
	}
	if _, err := bob.messages.Decrypt(bob.pass, alice.did, env2); err != nil {
		t.Fatalf("bob Decrypt again: %v", err)
	}
}

func TestEncrypt_WithoutSession(t *testing.T) {
	alice := newParty(t, "alice-pass")

	if _, err := alice.messages.Encrypt("did:key:zunknown", []byte("hi")); !errors.Is(err, message.ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession", err)
	}
}

func TestDecrypt_WithoutSessionOrHandshake(t *testing.T) {
	bob := newParty(t, "bob-pass")

	env := domain.Envelope{Cipher: []byte("junk")}
	if _, err := bob.messages.Decrypt(bob.pass, "did:key:zunknown", env); !errors.Is(err, message.ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession", err)
	}
}

func TestReplayedEnvelopeRejected(t *testing.T) {
	alice := newParty(t, "alice-pass")
	bob := newParty(t, "bob-pass")
	connect(t, alice, bob)

	env, err := alice.messages.Encrypt(bob.did, []byte("once"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := bob.messages.Decrypt(bob.pass, alice.did, env); err != nil {
		t.Fatalf("first Decrypt: %v", err)
	}
	if _, err := bob.messages.Decrypt(bob.pass, alice.did, env); !errors.Is(err, domain.ErrMessageKeyUnavailable) {
		t.Fatalf("replay: got %v, want ErrMessageKeyUnavailable", err)
	}
}

func TestOutOfOrderDeliveryAcrossServices(t *testing.T) {
	alice := newParty(t, "alice-pass")
	bob := newParty(t, "bob-pass")
	connect(t, alice, bob)

	var envs []domain.Envelope
	for _, msg := range []string{"one", "two", "three"} {
		env, err := alice.messages.Encrypt(bob.did, []byte(msg))
		if err != nil {
			t.Fatalf("Encrypt %q: %v", msg, err)
		}
		envs = append(envs, env)
	}

	// Deliver 1, 3, 2.
	for _, i := range []int{0, 2, 1} {
		want := []string{"one", "two", "three"}[i]
		pt, err := bob.messages.Decrypt(bob.pass, alice.did, envs[i])
		if err != nil {
			t.Fatalf("Decrypt message %d: %v", i, err)
		}
		if string(pt) != want {
			t.Fatalf("message %d: got %q, want %q", i, pt, want)
		}
	}
}

func TestTamperedEnvelope_StateUntouched(t *testing.T) {
	alice := newParty(t, "alice-pass")
	bob := newParty(t, "bob-pass")
	connect(t, alice, bob)

	good, err := alice.messages.Encrypt(bob.did, []byte("intact"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	bad := good
	bad.Cipher = append([]byte(nil), good.Cipher...)
	bad.Cipher[0] ^= 0x01
	if _, err := bob.messages.Decrypt(bob.pass, alice.did, bad); !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("tampered: got %v, want ErrAuthenticationFailed", err)
	}

	// The failed attempt must not have consumed the message key.
	pt, err := bob.messages.Decrypt(bob.pass, alice.did, good)
	if err != nil {
		t.Fatalf("Decrypt after failed attempt: %v", err)
	}
	if string(pt) != "intact" {
		t.Fatalf("plaintext mismatch: %q", pt)
	}
}

func TestOneTimePrekeyNotReusableAcrossSessions(t *testing.T) {
	alice := newParty(t, "alice-pass")
	bob := newParty(t, "bob-pass")
	connect(t, alice, bob)

	env, err := alice.messages.Encrypt(bob.did, []byte("hi"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := bob.messages.Decrypt(bob.pass, alice.did, env); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	// A second handshake targeting the same one-time prekey must be
	// rejected, its private half was deleted on first use.
	if env.Handshake == nil || env.Handshake.OPKID == "" {
		t.Fatal("expected a handshake targeting a one-time prekey")
	}
	if err := bob.exchange.Accept(bob.pass, *env.Handshake); err == nil {
		t.Fatal("second accept of the same one-time prekey succeeded")
	}
}
