package models

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// PreferenceRecord holds one owner's accessibility preferences as encrypted
// 32-bit integers. All four ciphertexts are written atomically on submit;
// a partially populated record never exists on the ledger.
type PreferenceRecord struct {
	Owner       common.Address `json:"owner"`
	Vision      Ciphertext     `json:"vision"`
	Hearing     Ciphertext     `json:"hearing"`
	Mobility    Ciphertext     `json:"mobility"`
	Cognitive   Ciphertext     `json:"cognitive"`
	LastUpdated int64          `json:"last_updated"`
}

// PreferenceKeyPrefix and IndexKey define the catalog layout for stored
// records. The index blob under IndexKey is a JSON array of every other
// populated key and is the only supported way to enumerate the catalog.
const (
	PreferenceKeyPrefix = "preference_"
	AdjustmentKeyPrefix = "adjustment_"
	IndexKey            = "preference_keys"
)

// PreferenceKey returns the catalog key for an owner's preference record.
// Addresses are lower-cased so lookups are insensitive to the case of the
// identity string the caller supplied.
func PreferenceKey(owner common.Address) string {
	return PreferenceKeyPrefix + strings.ToLower(owner.Hex())
}

// AdjustmentKey returns the catalog key for an owner's adjustment record.
func AdjustmentKey(owner common.Address) string {
	return AdjustmentKeyPrefix + strings.ToLower(owner.Hex())
}
