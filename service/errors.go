package service

import "errors"

// Sentinel errors returned by ledger services. Callers match them with
// [errors.Is]. None of these are retried internally; retry policy belongs to
// the presentation layer.
var (
	// ErrPreconditionFailed is returned when an operation requires prior state
	// that is missing, e.g. computing adjustments before any preferences were
	// submitted.
	ErrPreconditionFailed = errors.New("required record does not exist")

	// ErrIncompleteRecord is returned when a submission is missing one of the
	// four preference ciphertexts; partial records are never written.
	ErrIncompleteRecord = errors.New("all four preference ciphertexts are required")

	// ErrMalformedPayload is returned when a payload fails to decode in its
	// expected encoding.
	ErrMalformedPayload = errors.New("payload failed to decode")

	// ErrInvalidProof is returned when a decryption proof fails verification.
	// The offending request is terminally rejected.
	ErrInvalidProof = errors.New("decryption proof failed verification")

	// ErrUnknownRequest is returned when a callback references no outstanding
	// request, either because the id was never issued or because the request
	// already reached a terminal state.
	ErrUnknownRequest = errors.New("no outstanding decryption request")

	// ErrRejected is returned by RevealService.AwaitReveal when the caller's
	// deadline fires before the oracle answers and the request is abandoned.
	ErrRejected = errors.New("caller stopped waiting for the request")
)
