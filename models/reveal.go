package models

import "github.com/ethereum/go-ethereum/common"

// RequestState tracks a decryption request through its lifecycle.
// Pending is the only non-terminal state; a request that reaches Verified or
// Rejected is never reused.
type RequestState string

const (
	RequestPending  RequestState = "pending"
	RequestVerified RequestState = "verified"
	RequestRejected RequestState = "rejected"
)

// Terminal reports whether the state admits no further transitions.
func (s RequestState) Terminal() bool {
	return s == RequestVerified || s == RequestRejected
}

// DecryptionRequest is the bookkeeping record for one reveal round-trip.
// Ciphertexts preserves the submission order so the proof can be verified
// against exactly what the oracle was asked to open.
type DecryptionRequest struct {
	RequestID   string         `json:"request_id"`
	Owner       common.Address `json:"owner"`
	Ciphertexts []Ciphertext   `json:"ciphertexts"`
	State       RequestState   `json:"state"`
	CreatedAt   int64          `json:"created_at"`
}

// DecryptionJob is what gets dispatched to the oracle: the request id it must
// echo back and the handles to open, in order.
type DecryptionJob struct {
	RequestID   string
	Owner       common.Address
	Ciphertexts []Ciphertext
}
