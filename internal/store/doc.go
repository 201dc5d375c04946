// Package store persists palaver state on disk.
//
// The identity is encrypted with a passphrase-derived key (scrypt +
// ChaCha20-Poly1305) in a versioned JSON envelope. Prekey pairs, cached
// bundles and per-peer ratchet state are JSON files written via a temp
// file and rename so a crash never leaves a torn write behind.
//
// Loss of the skipped-key portion of ratchet state is tolerable (those
// messages become undecryptable); loss of the chain or root keys breaks
// the session and requires re-keying.
package store
