package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/docent/core"
)

// Key prefixes for different data types
const (
	documentPrefix     = "docrec"
	documentHashPrefix = "dochash"
	documentIDSeq      = "docrecseq"
	chunkPrefix        = "chkrec"
	chunkDocPrefix     = "chkdoc"
	chunkIDSeq         = "chkrecseq"
	messagePrefix      = "msgrec"
	messageSessPrefix  = "msgses"
	messageIDSeq       = "msgrecseq"
	usagePrefix        = "usgrec"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentHashKey generates a key for the content-hash index.
// Format: prefix:hash
func makeDocumentHashKey(hash string) []byte {
	return []byte(documentHashPrefix + ":" + hash)
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkDocKey generates a composite key for the per-document chunk index.
// Format: prefix:documentID:index:chunkID
func makeChunkDocKey(documentID core.ID, index int, chunkID core.ID) []byte {
	prefix := chunkDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 24 // 8 bytes each for documentID, index, chunkID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makePartialChunkDocKey generates a partial key for scanning one document's chunks.
// Format: prefix:documentID
func makePartialChunkDocKey(documentID core.ID) []byte {
	prefix := chunkDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for documentID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeMessageKey generates a key for a message by ID.
func makeMessageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", messagePrefix, id))
}

// makeMessageSessKey generates a composite key for the session index.
// Message IDs are sequence-assigned, so id order is chronological order.
// Format: prefix:sessionID:messageID
func makeMessageSessKey(sessionID, messageID core.ID) []byte {
	prefix := messageSessPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for sessionID + 8 bytes for messageID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(sessionID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(messageID))
	return buf
}

// makePartialMessageSessKey generates a partial key for session scans.
// Format: prefix:sessionID
func makePartialMessageSessKey(sessionID core.ID) []byte {
	prefix := messageSessPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for sessionID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(sessionID))
	return buf
}

// makeUsageKey generates a key for an organization's usage counters.
func makeUsageKey(organizationID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", usagePrefix, organizationID))
}
