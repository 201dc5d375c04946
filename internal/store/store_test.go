package store_test

import (
	"testing"

	"palaver/internal/domain"
	"palaver/internal/store"
)

func TestIdentity_SaveLoad_OK(t *testing.T) {
	ids := store.NewIdentityFileStore(t.TempDir())

	id := domain.Identity{
		DID:    "did:key:ztest",
		XPub:   domain.X25519Public{1},
		XPriv:  domain.X25519Private{2},
		EdPub:  domain.Ed25519Public{3},
		EdPriv: domain.Ed25519Private{4},
	}
	if err := ids.SaveIdentity("pass", id); err != nil {
		t.Fatalf("save identity: %v", err)
	}

	got, err := ids.LoadIdentity("pass")
	if err != nil {
		t.Fatalf("load identity: %v", err)
	}
	if got.DID != id.DID || got.XPub != id.XPub || got.EdPub != id.EdPub {
		t.Fatal("mismatch after load")
	}
}

func TestIdentity_WrongPassphrase_Fails(t *testing.T) {
	ids := store.NewIdentityFileStore(t.TempDir())

	if err := ids.SaveIdentity("correct", domain.Identity{DID: "did:key:ztest"}); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	if _, err := ids.LoadIdentity("wrong"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}

func TestIdentity_Delete_Idempotent(t *testing.T) {
	ids := store.NewIdentityFileStore(t.TempDir())

	if err := ids.SaveIdentity("pass", domain.Identity{DID: "did:key:ztest"}); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	if err := ids.DeleteIdentity(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ids.DeleteIdentity(); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := ids.LoadIdentity("pass"); err == nil {
		t.Fatal("identity still loadable after delete")
	}
}

func TestPrekeys_SignedPrekeyRoundTrip(t *testing.T) {
	pks := store.NewPrekeyFileStore(t.TempDir())

	priv := domain.X25519Private{5}
	pub := domain.X25519Public{6}
	if err := pks.SaveSignedPrekey("spk-1", priv, pub, []byte("sig")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := pks.SetCurrentSignedPrekeyID("spk-1"); err != nil {
		t.Fatalf("set current: %v", err)
	}

	id, ok, err := pks.CurrentSignedPrekeyID()
	if err != nil || !ok || id != "spk-1" {
		t.Fatalf("current: %q %v %v", id, ok, err)
	}
	gotPriv, gotPub, sig, ok, err := pks.LoadSignedPrekey("spk-1")
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if gotPriv != priv || gotPub != pub || string(sig) != "sig" {
		t.Fatal("mismatch after load")
	}
}

func TestPrekeys_OneTimeConsumedOnce(t *testing.T) {
	pks := store.NewPrekeyFileStore(t.TempDir())

	pairs := []domain.OneTimePair{{ID: "opk-1", Priv: domain.X25519Private{7}, Pub: domain.X25519Public{8}}}
	if err := pks.SaveOneTimePrekeys(pairs); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, _, ok, err := pks.ConsumeOneTimePrekey("opk-1")
	if err != nil || !ok {
		t.Fatalf("first consume: %v %v", ok, err)
	}
	// One-time means one time.
	_, _, ok, err = pks.ConsumeOneTimePrekey("opk-1")
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if ok {
		t.Fatal("one-time prekey consumed twice")
	}

	left, err := pks.ListOneTimePrekeyPublics()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected no remaining one-time prekeys, got %d", len(left))
	}
}

func TestRatchet_ConversationRoundTrip(t *testing.T) {
	rs := store.NewRatchetFileStore(t.TempDir())

	conv := domain.Conversation{
		Peer: "did:key:zpeer",
		State: domain.RatchetState{
			RootKey:    []byte{1, 2, 3},
			Ns:         4,
			Nr:         2,
			PN:         1,
			MaxSkipped: 100,
			Skipped: []domain.SkippedKey{
				{RatchetPub: []byte{9}, N: 1, MessageKey: []byte{10}},
			},
		},
	}
	if err := rs.SaveConversation(conv.Peer, conv); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := rs.LoadConversation(conv.Peer)
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if got.State.Ns != 4 || got.State.Nr != 2 || len(got.State.Skipped) != 1 {
		t.Fatal("mismatch after load")
	}

	if err := rs.DeleteAll(); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if _, ok, _ := rs.LoadConversation(conv.Peer); ok {
		t.Fatal("conversation survived DeleteAll")
	}
}

func TestBundles_KeyedByDID(t *testing.T) {
	bs := store.NewBundleFileStore(t.TempDir())

	if err := bs.SaveBundle(domain.PrekeyBundle{DID: "did:key:za", SPKID: "spk-a"}); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := bs.SaveBundle(domain.PrekeyBundle{DID: "did:key:zb", SPKID: "spk-b"}); err != nil {
		t.Fatalf("save b: %v", err)
	}

	b, ok, err := bs.LoadBundle("did:key:za")
	if err != nil || !ok || b.SPKID != "spk-a" {
		t.Fatalf("load a: %+v %v %v", b, ok, err)
	}
	if _, ok, _ := bs.LoadBundle("did:key:zmissing"); ok {
		t.Fatal("missing bundle reported found")
	}
}
