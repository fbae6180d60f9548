package models

import "github.com/ethereum/go-ethereum/common"

// DefaultAdjustments is the process-wide baseline every derived adjustment
// starts from. Initialized once, never mutated.
var DefaultAdjustments = RevealedAdjustments{
	FontSize:       16,
	ContrastRatio:  4,
	VolumeLevel:    50,
	AnimationSpeed: 3,
}

// RevealedAdjustments is the cleartext tuple produced by a verified
// decryption round. It is also the wire payload the oracle returns.
type RevealedAdjustments struct {
	FontSize       uint32 `json:"font_size"`
	ContrastRatio  uint32 `json:"contrast_ratio"`
	VolumeLevel    uint32 `json:"volume_level"`
	AnimationSpeed uint32 `json:"animation_speed"`
}

// AdjustmentRecord holds the UI-adjustment ciphertexts derived from an
// owner's preference record. Revealed stays nil until a decryption request
// for this exact record generation completes with a valid proof; recomputing
// the record starts a new generation and drops any prior revealed tuple.
type AdjustmentRecord struct {
	Owner          common.Address       `json:"owner"`
	FontSize       Ciphertext           `json:"font_size"`
	ContrastRatio  Ciphertext           `json:"contrast_ratio"`
	VolumeLevel    Ciphertext           `json:"volume_level"`
	AnimationSpeed Ciphertext           `json:"animation_speed"`
	LastCalculated int64                `json:"last_calculated"`
	Revealed       *RevealedAdjustments `json:"revealed,omitempty"`
}

// Ciphertexts returns the record's handles in the fixed order the decryption
// protocol submits them: fontSize, contrastRatio, volumeLevel, animationSpeed.
func (r *AdjustmentRecord) Ciphertexts() []Ciphertext {
	return []Ciphertext{r.FontSize, r.ContrastRatio, r.VolumeLevel, r.AnimationSpeed}
}
