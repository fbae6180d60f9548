package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sealedEntry(index uint64, op, key string, prev []byte) *AuditEntry {
	e := &AuditEntry{
		Index:     index,
		Timestamp: int64(1000 + index),
		Op:        op,
		Key:       key,
		PrevHash:  prev,
	}
	e.Seal()
	return e
}

func TestValidateAuditLog(t *testing.T) {
	genesis := sealedEntry(0, "put", "preference_a", make([]byte, 32))
	second := sealedEntry(1, "put", "preference_b", genesis.Hash)
	third := sealedEntry(2, "delete", "preference_a", second.Hash)

	assert.True(t, ValidateAuditLog(nil))
	assert.True(t, ValidateAuditLog([]*AuditEntry{genesis, second, third}))
}

func TestValidateAuditLog_DetectsTampering(t *testing.T) {
	genesis := sealedEntry(0, "put", "preference_a", make([]byte, 32))
	second := sealedEntry(1, "put", "preference_b", genesis.Hash)

	// Content changed after sealing.
	tampered := sealedEntry(0, "put", "preference_a", make([]byte, 32))
	tampered.Key = "preference_evil"
	assert.False(t, ValidateAuditLog([]*AuditEntry{tampered, second}))

	// Broken link.
	orphan := sealedEntry(1, "put", "preference_b", make([]byte, 32))
	assert.False(t, ValidateAuditLog([]*AuditEntry{genesis, orphan}))

	// Index gap.
	gapped := sealedEntry(5, "put", "preference_c", genesis.Hash)
	assert.False(t, ValidateAuditLog([]*AuditEntry{genesis, gapped}))
}
