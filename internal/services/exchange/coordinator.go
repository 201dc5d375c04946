package exchange

import (
	"fmt"
	"time"

	"palaver/internal/crypto"
	"palaver/internal/domain"
	"palaver/internal/protocol/ratchet"
	"palaver/internal/protocol/x3dh"
	"palaver/internal/services/identity"
	"palaver/internal/util/memzero"
)

// DefaultOneTimeBatch is how many one-time prekeys a published bundle
// is provisioned with.
const DefaultOneTimeBatch = 10

// Coordinator builds and consumes prekey bundles and seeds ratchet
// sessions from the derived shared secrets.
type Coordinator struct {
	ids        *identity.Service
	prekeys    domain.PrekeyStore
	bundles    domain.BundleStore
	ratchets   domain.RatchetStore
	maxSkipped int
	batch      int
}

// New constructs a Coordinator. maxSkipped <= 0 selects the ratchet
// default; batch <= 0 selects DefaultOneTimeBatch.
func New(ids *identity.Service, prekeys domain.PrekeyStore, bundles domain.BundleStore, ratchets domain.RatchetStore, maxSkipped, batch int) *Coordinator {
	if batch <= 0 {
		batch = DefaultOneTimeBatch
	}
	return &Coordinator{
		ids:        ids,
		prekeys:    prekeys,
		bundles:    bundles,
		ratchets:   ratchets,
		maxSkipped: maxSkipped,
		batch:      batch,
	}
}

// PublishBundle rotates the signed prekey, provisions a fresh batch of
// one-time prekeys, persists the private halves, and returns the public
// bundle for distribution.
func (c *Coordinator) PublishBundle(passphrase string) (domain.PrekeyBundle, error) {
	id, err := c.ids.Load(passphrase)
	if err != nil {
		return domain.PrekeyBundle{}, err
	}

	spkPriv, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.PrekeyBundle{}, err
	}
	spkID := fmt.Sprintf("spk-%d", time.Now().UnixMilli())
	sig := crypto.SignEd25519(id.EdPriv, spkPub.Slice())
	if err := c.prekeys.SaveSignedPrekey(spkID, spkPriv, spkPub, sig); err != nil {
		return domain.PrekeyBundle{}, err
	}
	if err := c.prekeys.SetCurrentSignedPrekeyID(spkID); err != nil {
		return domain.PrekeyBundle{}, err
	}

	pairs := make([]domain.OneTimePair, 0, c.batch)
	publics := make([]domain.OneTimePub, 0, c.batch)
	for i := 0; i < c.batch; i++ {
		priv, pub, err := crypto.GenerateX25519()
		if err != nil {
			return domain.PrekeyBundle{}, err
		}
		opkID := fmt.Sprintf("opk-%d-%d", time.Now().UnixMilli(), i)
		pairs = append(pairs, domain.OneTimePair{ID: opkID, Priv: priv, Pub: pub})
		publics = append(publics, domain.OneTimePub{ID: opkID, Pub: pub})
	}
	if err := c.prekeys.SaveOneTimePrekeys(pairs); err != nil {
		return domain.PrekeyBundle{}, err
	}

	b := domain.PrekeyBundle{
		DID:             id.DID,
		IdentityKey:     id.XPub,
		SigningKey:      id.EdPub,
		SPKID:           spkID,
		SignedPrekey:    spkPub,
		SignedPrekeySig: sig,
		OneTime:         publics,
		Timestamp:       time.Now().UnixMilli(),
	}
	if err := c.bundles.SaveBundle(b); err != nil {
		return domain.PrekeyBundle{}, err
	}
	return b, nil
}

// CurrentBundle returns the last published bundle, refreshed with the
// one-time prekeys that are still unconsumed. ok is false when no
// bundle was published yet or the cached bundle no longer matches the
// current signed prekey, in which case the caller should publish a
// fresh one.
func (c *Coordinator) CurrentBundle(passphrase string) (domain.PrekeyBundle, bool, error) {
	id, err := c.ids.Load(passphrase)
	if err != nil {
		return domain.PrekeyBundle{}, false, err
	}

	b, ok, err := c.bundles.LoadBundle(id.DID)
	if err != nil || !ok {
		return domain.PrekeyBundle{}, false, err
	}
	spkID, ok, err := c.prekeys.CurrentSignedPrekeyID()
	if err != nil {
		return domain.PrekeyBundle{}, false, err
	}
	if !ok || spkID != b.SPKID {
		return domain.PrekeyBundle{}, false, nil
	}

	remaining, err := c.prekeys.ListOneTimePrekeyPublics()
	if err != nil {
		return domain.PrekeyBundle{}, false, err
	}
	b.OneTime = remaining
	return b, true, nil
}

// Consume verifies a remote bundle, derives the shared secret as
// initiator, and seeds a ratchet session for the peer. It returns the
// handshake the peer needs to derive the same secret; the caller
// attaches it to the first envelopes.
//
// The signature check is a hard gate: on failure no secret is derived
// and no session is created.
func (c *Coordinator) Consume(passphrase string, b domain.PrekeyBundle) (domain.Handshake, error) {
	id, err := c.ids.Load(passphrase)
	if err != nil {
		return domain.Handshake{}, err
	}

	root, spkID, opkID, ephPub, err := x3dh.InitiatorRoot(id, b)
	if err != nil {
		return domain.Handshake{}, fmt.Errorf("consume bundle from %q: %w", b.DID, err)
	}
	defer memzero.Zero(root)

	st, err := ratchet.InitAsInitiator(root, b.SignedPrekey, c.maxSkipped)
	if err != nil {
		return domain.Handshake{}, err
	}

	hs := domain.Handshake{
		InitiatorDID: id.DID,
		InitiatorIK:  id.XPub,
		Ephemeral:    ephPub,
		SPKID:        spkID,
		OPKID:        opkID,
	}
	conv := domain.Conversation{Peer: b.DID, State: st, Handshake: &hs}
	if err := c.ratchets.SaveConversation(b.DID, conv); err != nil {
		return domain.Handshake{}, err
	}
	if err := c.bundles.SaveBundle(b); err != nil {
		return domain.Handshake{}, err
	}
	return hs, nil
}

// Accept runs the responder side of the exchange: it recomputes the
// initiator's root key from the handshake, consumes the targeted
// one-time prekey so it can never be reused, and seeds the responder
// ratchet session.
func (c *Coordinator) Accept(passphrase string, hs domain.Handshake) error {
	id, err := c.ids.Load(passphrase)
	if err != nil {
		return err
	}

	spkPriv, spkPub, _, ok, err := c.prekeys.LoadSignedPrekey(hs.SPKID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("handshake from %q targets unknown signed prekey %q", hs.InitiatorDID, hs.SPKID)
	}

	var opkPriv *domain.X25519Private
	if hs.OPKID != "" {
		priv, _, ok, err := c.prekeys.ConsumeOneTimePrekey(hs.OPKID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("handshake from %q targets consumed one-time prekey %q", hs.InitiatorDID, hs.OPKID)
		}
		opkPriv = &priv
	}

	root, err := x3dh.ResponderRoot(id, spkPriv, opkPriv, hs)
	if err != nil {
		return err
	}
	defer memzero.Zero(root)

	st, err := ratchet.InitAsResponder(root, spkPriv, spkPub, c.maxSkipped)
	if err != nil {
		return err
	}
	conv := domain.Conversation{Peer: hs.InitiatorDID, State: st}
	return c.ratchets.SaveConversation(hs.InitiatorDID, conv)
}
