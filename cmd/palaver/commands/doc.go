// Package commands defines the palaver CLI.
//
// Transport is out of scope for this tool: bundles, handshakes,
// envelopes and proofs are JSON documents read from and written to
// files or stdio, so any delivery mechanism can carry them between
// peers.
package commands
