// Package memzero provides best-effort wiping of sensitive byte slices.
package memzero

import "runtime"

// Zero overwrites b with zeroes. Best effort: it reduces the window in
// which key material sits in memory but cannot defeat an adversary who
// captures the live process.
//
//go:noinline
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(&b)
}
