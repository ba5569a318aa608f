// Package sanitize maps document storage keys onto vector index namespaces.
//
// Namespace names must match ^[a-z0-9_]{1,64}$. Every document gets exactly
// one namespace, derived deterministically from its storage key.
package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// MaxNamespaceLength is the longest namespace the index accepts.
	MaxNamespaceLength = 64

	// hashSuffixLength is "_" plus an 8-char hash, appended when a key is
	// truncated so distinct long keys cannot collapse into one namespace.
	hashSuffixLength = 9

	// DefaultNamespace is used when sanitization leaves nothing behind.
	DefaultNamespace = "default"
)

// NamespaceKey sanitizes a storage key for use as a vector index namespace.
//
// Rules:
//   - lowercase
//   - non [a-z0-9_] bytes become underscores
//   - underscore runs collapse, leading/trailing underscores are trimmed
//   - overlong results are truncated with a content-hash suffix
//   - an empty result becomes DefaultNamespace
func NamespaceKey(key string) string {
	if key == "" {
		return DefaultNamespace
	}

	lowered := strings.ToLower(key)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	ns := b.String()
	for strings.Contains(ns, "__") {
		ns = strings.ReplaceAll(ns, "__", "_")
	}
	ns = strings.Trim(ns, "_")

	if ns == "" {
		return DefaultNamespace
	}
	if len(ns) > MaxNamespaceLength {
		ns = truncateWithHash(key, ns)
	}
	return ns
}

// truncateWithHash keeps a readable prefix and appends a short hash of the
// original key, so "…/reports/2024/q1.pdf" and "…/reports/2024/q2.pdf" stay
// distinct even when their sanitized prefixes agree.
func truncateWithHash(original, sanitized string) string {
	sum := sha256.Sum256([]byte(original))
	suffix := "_" + hex.EncodeToString(sum[:])[:hashSuffixLength-1]
	return sanitized[:MaxNamespaceLength-hashSuffixLength] + suffix
}
