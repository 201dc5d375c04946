// Package identity implements the decentralized identity component:
// key generation, DID derivation, persistence through the identity
// store, detached signing and verification of application payloads, and
// time-bounded challenge proofs.
package identity
