// Package ratchet implements the Double Ratchet algorithm following
// Signal's design.
//
// The algorithm maintains a root key and two message chains (send and
// receive). Each message advances a KDF chain so that message keys are
// forward secure and used exactly once. When a peer presents a new DH
// ratchet public key, both sides derive new chain keys from a new root
// via DH, so a compromised ratchet key pair exposes neither past nor
// (after the next step) future traffic.
//
// Messages that arrive out of order are handled by deriving and caching
// the intermediate message keys, bounded by RatchetState.MaxSkipped with
// oldest-first eviction. A message whose cached key was evicted is
// permanently undecryptable and fails with ErrMessageKeyUnavailable.
//
// Concurrency: RatchetState is NOT safe for concurrent use. Callers
// must serialise access per peer; see the message service. Encrypt and
// Decrypt commit state only on success, so a failed call never leaves a
// half-applied ratchet step behind.
package ratchet
