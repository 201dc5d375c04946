// Package canonical produces a deterministic byte encoding of JSON-like
// payloads for signing. Object keys are sorted recursively and any
// pre-existing "signature" fields are stripped, so a signature neither
// depends on field order nor covers nested signatures.
package canonical

import (
	"encoding/json"
	"fmt"
)

// signatureField is removed at every nesting level before signing.
const signatureField = "signature"

// Marshal returns the canonical encoding of v.
//
// v is first round-tripped through JSON so struct tags apply, then
// signature fields are stripped and the result re-encoded.
// encoding/json writes map keys in sorted order, which gives the
// deterministic byte form. Payloads that cannot be represented as JSON
// are rejected before any cryptographic operation sees them.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return json.Marshal(strip(tree))
}

// strip removes signature fields from every object in the tree.
func strip(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if k == signatureField {
				continue
			}
			out[k] = strip(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = strip(val)
		}
		return out
	default:
		return v
	}
}
