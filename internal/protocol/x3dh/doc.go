// Package x3dh implements the asynchronous key agreement used to
// bootstrap a Double Ratchet session between two peers.
//
// # Overview
//
// The initiator derives a shared 32-byte root key from a responder's
// published prekey bundle. The bundle contains:
//   - Identity key (X25519) and signing key (Ed25519)
//   - Signed prekey (X25519) and its Ed25519 signature
//   - Optional one-time prekeys (X25519)
//
// # Flows
//
// Initiator:
//  1. Verify the signed-prekey signature. Failure is a hard gate: no
//     secret is derived from an unverified bundle.
//  2. Generate an ephemeral X25519 key pair.
//  3. Compute DH values (IKa·SPKb, EKa·IKb, EKa·SPKb[, EKa·OPKb]).
//  4. HKDF over the concatenated DH transcript to produce the root key.
//
// Responder:
//  1. Receive the handshake (initiator IK, ephemeral EK, SPK id[, OPK id]).
//  2. Look up the SPK private half and consume the OPK; one-time keys
//     are used at most once.
//  3. Compute the symmetric DH set and HKDF the same transcript to the
//     identical root key.
//
// # Security notes
//
// Only public material crosses the wire. One-time prekeys, when
// present, ensure the handshake mixes in a value deleted after first
// use, which protects the initial secret even if longer-lived keys are
// later compromised.
package x3dh
