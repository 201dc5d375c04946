package ratchet

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keySize = 32

// Derivation labels. The chain and message constants keep the two
// outputs of the symmetric ratchet in separate derivation domains, so a
// chain key can never be rolled back to recover an earlier message key.
var (
	infoRoot    = []byte("palaver/dr/root")
	infoChain   = []byte("palaver/dr/chain")
	infoMessage = []byte("palaver/dr/message")
)

// kdfRoot mixes a DH output into the root key, producing the next root
// key and a fresh chain key.
func kdfRoot(rootKey, dh []byte) (newRoot, chainKey []byte) {
	r := hkdf.New(sha256.New, dh, rootKey, infoRoot)
	newRoot = make([]byte, keySize)
	chainKey = make([]byte, keySize)
	_, _ = io.ReadFull(r, newRoot)
	_, _ = io.ReadFull(r, chainKey)
	return newRoot, chainKey
}

// kdfChain advances the symmetric ratchet: the message key and the next
// chain key are derived from the current chain key under distinct
// labels.
func kdfChain(chainKey []byte) (nextChainKey, messageKey []byte) {
	nextChainKey = expand(chainKey, infoChain)
	messageKey = expand(chainKey, infoMessage)
	return nextChainKey, messageKey
}

func expand(key, info []byte) []byte {
	r := hkdf.New(sha256.New, key, nil, info)
	out := make([]byte, keySize)
	_, _ = io.ReadFull(r, out)
	return out
}
