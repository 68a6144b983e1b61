package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// New derives a stable content hash from a document's significant fields.
//
// Keys are sorted lexicographically before serialization so that the
// insertion order of the source map never affects the digest; the hash is
// the sole signal for "did anything change", so this must hold for every
// possible iteration order. Values are JSON-encoded, which keeps nested
// maps deterministic as well (encoding/json sorts map keys).
//
// A value that cannot be JSON-serialized fails with an error before any
// hashing happens. Pure function, no side effects.
func New(fields map[string]any) (string, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte('=')
		if err := enc.Encode(fields[k]); err != nil {
			return "", fmt.Errorf("field %q is not serializable: %w", k, err)
		}
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
