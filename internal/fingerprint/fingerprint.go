// Package fingerprint computes the content-addressed digest used to detect
// duplicate memories during cross-store transfer. Two memories with the same
// fingerprint are duplicates regardless of their embedding values, which may
// differ slightly between encoding runs.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
)

// Compute returns the hex-encoded SHA-256 fingerprint of a memory's
// identity: content, type, and origin message. Fields are length-prefixed so
// no two field combinations can collide by concatenation. Deterministic and
// pure; used only for dedup decisions, never for ranking.
func Compute(content string, memType models.MemoryType, originMessageID string) string {
	h := sha256.New()
	for _, field := range []string{content, string(memType), originMessageID} {
		var size [8]byte
		binary.LittleEndian.PutUint64(size[:], uint64(len(field)))
		h.Write(size[:])
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ForMemory computes the fingerprint of a memory value.
func ForMemory(m *models.Memory) string {
	return Compute(m.Content, m.Type, m.OriginMessageID)
}
