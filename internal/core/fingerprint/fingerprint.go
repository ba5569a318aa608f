// Package fingerprint derives stable content identities for chunks.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex sha256 digest of text. Identical text always maps to
// the identical fingerprint, which is what makes re-ingestion of unchanged
// content overwrite instead of duplicate.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
