// Package exchange implements the key-exchange coordinator: it builds
// the publishable prekey bundle from the local identity and consumes
// remote bundles to derive the shared secret that seeds a Double
// Ratchet session.
//
// The state machine per peer is binary: no-session until a bundle
// exchange succeeds, ratchet-seeded afterwards. A failed signature
// verification never transitions.
package exchange
