// Package message encrypts outbound plaintext into envelopes and
// decrypts inbound envelopes through the per-peer Double Ratchet.
//
// All ratchet mutation for one peer is serialized behind a per-peer
// mutex: concurrent Encrypt/Decrypt calls against the same peer run one
// at a time, while different peers proceed fully in parallel. Transport
// of the envelope bytes is the caller's concern and must happen outside
// the lock.
package message
