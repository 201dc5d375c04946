package message

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"palaver/internal/domain"
	"palaver/internal/protocol/ratchet"
	"palaver/internal/services/exchange"
)

// ErrNoSession indicates there is no seeded session with the peer.
var ErrNoSession = errors.New("no session with peer; consume its bundle first")

// Service turns plaintext into envelopes and back using the stored
// per-peer ratchet state.
type Service struct {
	exchange *exchange.Coordinator
	ratchets domain.RatchetStore

	mu    sync.Mutex
	peers map[string]*sync.Mutex
}

// New constructs a message service.
func New(ex *exchange.Coordinator, ratchets domain.RatchetStore) *Service {
	return &Service{
		exchange: ex,
		ratchets: ratchets,
		peers:    make(map[string]*sync.Mutex),
	}
}

// peerLock returns the mutex serializing all ratchet operations for one
// peer.
func (s *Service) peerLock(peer string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.peers[peer]
	if !ok {
		l = &sync.Mutex{}
		s.peers[peer] = l
	}
	return l
}

// Encrypt derives the next sending message key for peer, seals
// plaintext, advances the ratchet, and persists the new state before
// the envelope is handed back for transport.
//
// While we are the initiator and have not yet received anything from
// the peer, the X3DH handshake rides along so the peer can seed its
// side from any of our messages.
func (s *Service) Encrypt(peer string, plaintext []byte) (domain.Envelope, error) {
	l := s.peerLock(peer)
	l.Lock()
	defer l.Unlock()

	conv, found, err := s.ratchets.LoadConversation(peer)
	if err != nil {
		return domain.Envelope{}, err
	}
	if !found {
		return domain.Envelope{}, fmt.Errorf("%w: %s", ErrNoSession, peer)
	}

	header, ct, err := ratchet.Encrypt(&conv.State, nil, plaintext)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("encrypt to %q: %w", peer, err)
	}
	if err := s.ratchets.SaveConversation(peer, conv); err != nil {
		return domain.Envelope{}, err
	}

	return domain.Envelope{
		Header:    header,
		Cipher:    ct,
		Handshake: conv.Handshake,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Decrypt resolves the message key for env and returns the plaintext.
// If no session exists yet and the envelope carries a handshake, the
// responder side is seeded first. The used message key is deleted with
// the state commit; replaying the same envelope fails.
func (s *Service) Decrypt(passphrase, peer string, env domain.Envelope) ([]byte, error) {
	l := s.peerLock(peer)
	l.Lock()
	defer l.Unlock()

	conv, found, err := s.ratchets.LoadConversation(peer)
	if err != nil {
		return nil, err
	}
	if !found {
		if env.Handshake == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoSession, peer)
		}
		if err := s.exchange.Accept(passphrase, *env.Handshake); err != nil {
			return nil, err
		}
		conv, found, err = s.ratchets.LoadConversation(peer)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNoSession, peer)
		}
	}

	pt, err := ratchet.Decrypt(&conv.State, nil, env.Header, env.Cipher)
	if err != nil {
		return nil, fmt.Errorf("decrypt from %q (message %d): %w", peer, env.Header.N, err)
	}

	// Hearing from the peer proves its session is seeded; stop
	// attaching our handshake.
	conv.Handshake = nil
	if err := s.ratchets.SaveConversation(peer, conv); err != nil {
		return nil, err
	}
	return pt, nil
}
