package ratchet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"palaver/internal/crypto"
	"palaver/internal/domain"
	"palaver/internal/util/memzero"
)

// DefaultMaxSkipped bounds the skipped-message-key cache per peer.
const DefaultMaxSkipped = 1000

var errChainUninitialised = errors.New("ratchet chain key is uninitialised")

// InitAsInitiator seeds a session from the X3DH root key. The peer's
// signed prekey acts as its first ratchet public key, so the sending
// chain is ready immediately.
func InitAsInitiator(root []byte, peerSPK domain.X25519Public, maxSkipped int) (domain.RatchetState, error) {
	if maxSkipped <= 0 {
		maxSkipped = DefaultMaxSkipped
	}
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.RatchetState{}, err
	}

	dh, err := crypto.DH(priv, peerSPK)
	if err != nil {
		return domain.RatchetState{}, err
	}
	newRoot, sendCK := kdfRoot(root, dh[:])
	memzero.Zero(dh[:])

	return domain.RatchetState{
		RootKey:    newRoot,
		DHPriv:     priv,
		DHPub:      pub,
		PeerDHPub:  peerSPK,
		HasPeerDH:  true,
		SendCK:     sendCK,
		MaxSkipped: maxSkipped,
	}, nil
}

// InitAsResponder seeds a session from the X3DH root key. The signed
// prekey pair the initiator targeted becomes our first ratchet key
// pair; the receiving chain is derived when the first message arrives
// and triggers a DH ratchet step.
func InitAsResponder(root []byte, spkPriv domain.X25519Private, spkPub domain.X25519Public, maxSkipped int) (domain.RatchetState, error) {
	if maxSkipped <= 0 {
		maxSkipped = DefaultMaxSkipped
	}
	return domain.RatchetState{
		RootKey:    append([]byte(nil), root...),
		DHPriv:     spkPriv,
		DHPub:      spkPub,
		MaxSkipped: maxSkipped,
	}, nil
}

// Encrypt derives the next sending message key, seals plaintext with
// the header as associated data, and advances the send counter. State
// is committed only on success.
func Encrypt(st *domain.RatchetState, ad, plaintext []byte) (domain.RatchetHeader, []byte, error) {
	if len(st.SendCK) == 0 {
		return domain.RatchetHeader{}, nil, errChainUninitialised
	}

	nextCK, mk := kdfChain(st.SendCK)
	header := domain.RatchetHeader{
		RatchetPub: st.DHPub.Slice(),
		PN:         st.PN,
		N:          st.Ns,
	}

	ct, err := seal(mk, header, ad, plaintext)
	memzero.Zero(mk)
	if err != nil {
		return domain.RatchetHeader{}, nil, err
	}

	memzero.Zero(st.SendCK)
	st.SendCK = nextCK
	st.Ns++
	return header, ct, nil
}

// Decrypt resolves the message key for the envelope header and opens
// the ciphertext. The key comes from the skipped-key cache when the
// message was cached earlier, otherwise from advancing the receive
// chain after any pending DH ratchet step.
//
// All mutation happens on a copy of the state that is committed only on
// success, so a failure (tampered ciphertext, evicted key) never leaves
// a half-applied ratchet step behind.
func Decrypt(st *domain.RatchetState, ad []byte, header domain.RatchetHeader, ciphertext []byte) ([]byte, error) {
	if len(header.RatchetPub) != 32 {
		return nil, fmt.Errorf("%w: bad ratchet public key length %d", domain.ErrAuthenticationFailed, len(header.RatchetPub))
	}

	work := cloneState(*st)
	pt, err := decrypt(&work, ad, header, ciphertext)
	if err != nil {
		return nil, err
	}
	*st = work
	return pt, nil
}

func decrypt(st *domain.RatchetState, ad []byte, header domain.RatchetHeader, ciphertext []byte) ([]byte, error) {
	// A skipped key, if present, is consumed exactly once.
	if mk, ok := takeSkipped(st, header.RatchetPub, header.N); ok {
		pt, err := open(mk, header, ad, ciphertext)
		memzero.Zero(mk)
		return pt, err
	}

	if st.HasPrevPeerDH && bytes.Equal(st.PrevPeerDHPub.Slice(), header.RatchetPub) {
		// The message belongs to the previous remote chain and its key
		// is not in the cache: consumed or evicted. Only the most recent
		// previous chain is remembered; older ones fail authentication.
		return nil, fmt.Errorf("%w: message %d on previous chain", domain.ErrMessageKeyUnavailable, header.N)
	}

	if !st.HasPeerDH || !bytes.Equal(st.PeerDHPub.Slice(), header.RatchetPub) {
		// New remote ratchet key: cache the remainder of the old
		// receiving chain, then step the DH ratchet.
		skipMessageKeys(st, header.PN)
		if err := dhRatchetStep(st, header); err != nil {
			return nil, err
		}
	}

	if header.N < st.Nr {
		// The chain already advanced past this message and its key is
		// not in the cache: it was consumed or evicted.
		return nil, fmt.Errorf("%w: message %d on current chain", domain.ErrMessageKeyUnavailable, header.N)
	}
	skipMessageKeys(st, header.N)

	if len(st.RecvCK) == 0 {
		return nil, errChainUninitialised
	}
	nextCK, mk := kdfChain(st.RecvCK)
	pt, err := open(mk, header, ad, ciphertext)
	memzero.Zero(mk)
	if err != nil {
		return nil, err
	}
	memzero.Zero(st.RecvCK)
	st.RecvCK = nextCK
	st.Nr++
	return pt, nil
}

// dhRatchetStep applies a full DH ratchet: derive the new receiving
// chain from the old root and the remote's new key, then rotate our own
// key pair and derive the new sending chain. Runs to completion on the
// working copy; a failure aborts the whole decrypt.
func dhRatchetStep(st *domain.RatchetState, header domain.RatchetHeader) error {
	var newPeer domain.X25519Public
	copy(newPeer[:], header.RatchetPub)

	dhRecv, err := crypto.DH(st.DHPriv, newPeer)
	if err != nil {
		return err
	}
	rootAfterRecv, recvCK := kdfRoot(st.RootKey, dhRecv[:])
	memzero.Zero(dhRecv[:])

	newPriv, newPub, err := crypto.GenerateX25519()
	if err != nil {
		return err
	}
	dhSend, err := crypto.DH(newPriv, newPeer)
	if err != nil {
		return err
	}
	rootAfterSend, sendCK := kdfRoot(rootAfterRecv, dhSend[:])
	memzero.Zero(dhSend[:])
	memzero.Zero(rootAfterRecv)

	st.PN = st.Ns
	st.Ns, st.Nr = 0, 0
	memzero.Zero(st.RootKey)
	st.RootKey = rootAfterSend
	st.DHPriv, st.DHPub = newPriv, newPub
	st.PrevPeerDHPub, st.HasPrevPeerDH = st.PeerDHPub, st.HasPeerDH
	st.PeerDHPub = newPeer
	st.HasPeerDH = true
	memzero.Zero(st.SendCK)
	memzero.Zero(st.RecvCK)
	st.SendCK, st.RecvCK = sendCK, recvCK
	return nil
}

// skipMessageKeys advances the receiving chain up to (but not
// including) message number until, caching each intermediate key. The
// cache is bounded: when full, the oldest entry is evicted first.
func skipMessageKeys(st *domain.RatchetState, until uint32) {
	if len(st.RecvCK) == 0 {
		return
	}
	for st.Nr < until {
		nextCK, mk := kdfChain(st.RecvCK)
		storeSkipped(st, st.PeerDHPub.Slice(), st.Nr, mk)
		memzero.Zero(st.RecvCK)
		st.RecvCK = nextCK
		st.Nr++
	}
}

// storeSkipped appends a cached key, evicting the oldest entries when
// the bound would be exceeded.
func storeSkipped(st *domain.RatchetState, ratchetPub []byte, n uint32, mk []byte) {
	st.Skipped = append(st.Skipped, domain.SkippedKey{
		RatchetPub: append([]byte(nil), ratchetPub...),
		N:          n,
		MessageKey: mk,
	})
	for len(st.Skipped) > st.MaxSkipped {
		memzero.Zero(st.Skipped[0].MessageKey)
		st.Skipped = st.Skipped[1:]
	}
}

// takeSkipped removes and returns the cached key for (ratchetPub, n).
func takeSkipped(st *domain.RatchetState, ratchetPub []byte, n uint32) ([]byte, bool) {
	for i, sk := range st.Skipped {
		if sk.N == n && bytes.Equal(sk.RatchetPub, ratchetPub) {
			mk := sk.MessageKey
			st.Skipped = append(st.Skipped[:i], st.Skipped[i+1:]...)
			return mk, true
		}
	}
	return nil, false
}

// --- AEAD ---

func seal(mk []byte, header domain.RatchetHeader, ad, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(mk)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonceFor(header.N), plaintext, aadBytes(ad, header)), nil
}

func open(mk []byte, header domain.RatchetHeader, ad, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(mk)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonceFor(header.N), ciphertext, aadBytes(ad, header))
	if err != nil {
		return nil, fmt.Errorf("%w: message %d", domain.ErrAuthenticationFailed, header.N)
	}
	return pt, nil
}

// nonceFor builds the per-message nonce. Message keys are single use,
// so a counter-based nonce is never reused under the same key.
func nonceFor(n uint32) []byte {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint32(nonce[chacha20poly1305.NonceSize-4:], n)
	return nonce
}

// aadBytes binds the clear-text header to the ciphertext.
func aadBytes(ad []byte, h domain.RatchetHeader) []byte {
	out := make([]byte, 0, len(ad)+len(h.RatchetPub)+8)
	out = append(out, ad...)
	out = append(out, h.RatchetPub...)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], h.PN)
	out = append(out, b[:]...)
	binary.BigEndian.PutUint32(b[:], h.N)
	out = append(out, b[:]...)
	return out
}

// cloneState deep-copies every mutable field so Decrypt can work on a
// private copy and commit atomically.
func cloneState(st domain.RatchetState) domain.RatchetState {
	out := st
	out.RootKey = append([]byte(nil), st.RootKey...)
	out.SendCK = append([]byte(nil), st.SendCK...)
	out.RecvCK = append([]byte(nil), st.RecvCK...)
	if st.Skipped != nil {
		out.Skipped = make([]domain.SkippedKey, len(st.Skipped))
		for i, sk := range st.Skipped {
			out.Skipped[i] = domain.SkippedKey{
				RatchetPub: append([]byte(nil), sk.RatchetPub...),
				N:          sk.N,
				MessageKey: append([]byte(nil), sk.MessageKey...),
			}
		}
	}
	return out
}
