package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// DefaultIDPrefixLen is the number of leading content runes hashed
// into a document id.
const DefaultIDPrefixLen = 500

// DocumentID derives the content-addressed identifier for a document:
// the first 16 hex characters of sha256(source + ":" + prefix), where
// prefix is the first prefixLen runes of the content. Documents with
// the same source and content prefix collapse to the same id, which is
// what makes ingestion idempotent.
func DocumentID(source, content string, prefixLen int) string {
	if prefixLen <= 0 {
		prefixLen = DefaultIDPrefixLen
	}
	prefix := TruncateRunes(content, prefixLen)
	sum := sha256.Sum256([]byte(source + ":" + prefix))
	return hex.EncodeToString(sum[:])[:16]
}

// TruncateRunes returns at most n leading runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
