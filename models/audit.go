package models

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// AuditEntry is one link in the catalog's append-only audit log. Every
// mutating catalog operation appends an entry chained to its predecessor by
// Keccak-256, so tampering with stored history is detectable on load.
type AuditEntry struct {
	Index     uint64 `json:"index"`
	Timestamp int64  `json:"timestamp"`
	Op        string `json:"op"`  // "put" or "delete"
	Key       string `json:"key"` // catalog key the operation touched
	BlobHash  []byte `json:"blob_hash,omitempty"`
	PrevHash  []byte `json:"prev_hash"`
	Hash      []byte `json:"hash"`
}

// Seal computes and stores the entry's chain hash. Must be called after all
// other fields are set.
func (e *AuditEntry) Seal() {
	e.Hash = e.calculateHash()
}

func (e *AuditEntry) calculateHash() []byte {
	buffer := new(bytes.Buffer)
	binary.Write(buffer, binary.BigEndian, e.Index)
	binary.Write(buffer, binary.BigEndian, e.Timestamp)
	buffer.WriteString(e.Op)
	buffer.WriteString(e.Key)
	buffer.Write(e.BlobHash)
	buffer.Write(e.PrevHash)

	d := sha3.NewLegacyKeccak256()
	d.Write(buffer.Bytes())
	return d.Sum(nil)
}

// Validate reports whether the entry's stored hash matches its contents.
func (e *AuditEntry) Validate() bool {
	return bytes.Equal(e.Hash, e.calculateHash())
}

// ValidateAuditLog validates the whole chain: each entry's own hash, its link
// to the previous entry, and monotonically increasing indices.
func ValidateAuditLog(entries []*AuditEntry) bool {
	if len(entries) == 0 {
		return true
	}

	if !entries[0].Validate() {
		return false
	}

	for i := 1; i < len(entries); i++ {
		current := entries[i]
		previous := entries[i-1]

		if !current.Validate() {
			return false
		}
		if !bytes.Equal(current.PrevHash, previous.Hash) {
			return false
		}
		if current.Index != previous.Index+1 {
			return false
		}
	}

	return true
}
