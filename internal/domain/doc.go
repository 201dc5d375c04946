// Package domain defines the core types shared across palaver: key
// material, identities and DIDs, prekey bundles, ratchet state, message
// envelopes, the error taxonomy, and the store interfaces the services
// are wired against.
//
// The package has no dependencies on the rest of the module so that
// protocol code, services and stores can all import it freely.
package domain
