package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"prefledger/encryption"
	"prefledger/models"
	"prefledger/storage"
)

// RevealService runs the decryption request/callback protocol. Each request
// is an explicit state machine: Pending until the oracle's callback resolves
// it to Verified or Rejected, both terminal. The service itself never retries
// or times out a Pending request; a host wanting bounded latency calls
// Abandon after its own deadline.
type RevealService struct {
	catalog *storage.Catalog
	proofs  *encryption.ProofService
	oracle  DecryptionOracle
	locks   *RecordLocks
	emitter *Emitter
	metrics *MetricsCollector
	logger  zerolog.Logger

	mu       sync.Mutex
	requests map[string]*models.DecryptionRequest
}

// NewRevealService creates the protocol handler bound to one trusted oracle.
func NewRevealService(catalog *storage.Catalog, proofs *encryption.ProofService, oracle DecryptionOracle, locks *RecordLocks, emitter *Emitter, metrics *MetricsCollector, logger zerolog.Logger) *RevealService {
	return &RevealService{
		catalog:  catalog,
		proofs:   proofs,
		locks:    locks,
		oracle:   oracle,
		emitter:  emitter,
		metrics:  metrics,
		logger:   logger,
		requests: make(map[string]*models.DecryptionRequest),
	}
}

// RequestReveal collects the owner's four adjustment ciphertexts in fixed
// order (fontSize, contrastRatio, volumeLevel, animationSpeed), registers a
// Pending request under a fresh id, and dispatches it to the oracle. Returns
// the request id; the result arrives asynchronously via
// OnDecryptionCallback. Fails with ErrPreconditionFailed when no adjustment
// record exists.
func (rs *RevealService) RequestReveal(owner common.Address) (string, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	// Owner lock nests inside rs.mu everywhere in this service so the record
	// load and the request registration see one consistent generation.
	lock := rs.locks.ForOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	record, err := loadAdjustmentRecord(rs.catalog, owner)
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("%w: no adjustments calculated for %s", ErrPreconditionFailed, owner.Hex())
	}
	if err != nil {
		return "", err
	}

	request := &models.DecryptionRequest{
		RequestID:   uuid.New().String(),
		Owner:       owner,
		Ciphertexts: record.Ciphertexts(),
		State:       models.RequestPending,
		CreatedAt:   time.Now().UnixNano(),
	}
	rs.requests[request.RequestID] = request

	job := &models.DecryptionJob{
		RequestID:   request.RequestID,
		Owner:       owner,
		Ciphertexts: request.Ciphertexts,
	}
	if err := rs.oracle.RequestDecryption(job); err != nil {
		delete(rs.requests, request.RequestID)
		return "", fmt.Errorf("failed to dispatch decryption request: %w", err)
	}

	rs.metrics.RecordRevealRequested()
	rs.logger.Info().Str("owner", owner.Hex()).Str("request_id", request.RequestID).Msg("reveal requested")

	return request.RequestID, nil
}

// OnDecryptionCallback resolves an outstanding request with the oracle's
// cleartext payload and proof.
//
// Unknown or already-terminal request ids fail with ErrUnknownRequest. A
// proof that does not verify against the oracle's address terminally rejects
// the request and fails with ErrInvalidProof; the owner's records are left
// untouched. A payload that fails to decode also rejects terminally and
// fails with ErrMalformedPayload. On success the revealed tuple is stored on
// the owner's adjustment record, the request becomes Verified, and UIAdjusted
// is emitted.
func (rs *RevealService) OnDecryptionCallback(requestID string, payload []byte, proof []byte) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	request, exists := rs.requests[requestID]
	if !exists || request.State.Terminal() {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}

	// A reset or recompute racing this callback must not have its effect
	// undone: the record load, the generation check, and the store below all
	// happen under the same owner lock the other services take.
	lock := rs.locks.ForOwner(request.Owner)
	lock.Lock()
	defer lock.Unlock()

	if !rs.proofs.VerifyReveal(rs.oracle.Address(), requestID, payload, request.Ciphertexts, proof) {
		rs.reject(request, "invalid proof")
		return fmt.Errorf("request %s: %w", requestID, ErrInvalidProof)
	}

	var revealed models.RevealedAdjustments
	if err := json.Unmarshal(payload, &revealed); err != nil {
		rs.reject(request, "undecodable payload")
		return fmt.Errorf("request %s: %w: %v", requestID, ErrMalformedPayload, err)
	}

	record, err := loadAdjustmentRecord(rs.catalog, request.Owner)
	if err != nil {
		rs.reject(request, "adjustment record gone")
		return fmt.Errorf("%w: adjustment record missing for %s", ErrPreconditionFailed, request.Owner.Hex())
	}

	// The reveal binds to the record generation the request was made for. If
	// the engine recomputed (or the owner resubmitted) in the meantime, the
	// ciphertexts no longer match and the stale reveal must not be stored.
	if !sameCiphertexts(request.Ciphertexts, record.Ciphertexts()) {
		rs.reject(request, "record recomputed since request")
		return fmt.Errorf("%w: adjustment record changed since reveal was requested", ErrPreconditionFailed)
	}

	record.Revealed = &revealed
	if err := storeAdjustmentRecord(rs.catalog, record); err != nil {
		rs.reject(request, "store failed")
		return err
	}

	request.State = models.RequestVerified
	rs.metrics.RecordRevealVerified(time.Since(time.Unix(0, request.CreatedAt)))
	rs.emitter.Publish(EventUIAdjusted, request.Owner)
	rs.logger.Info().Str("owner", request.Owner.Hex()).Str("request_id", requestID).Msg("reveal verified")

	return nil
}

// Abandon terminally rejects a Pending request that will never receive its
// callback. This is the host-side escape hatch for bounding latency; the
// protocol itself never times out.
func (rs *RevealService) Abandon(requestID string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	request, exists := rs.requests[requestID]
	if !exists || request.State.Terminal() {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}

	rs.reject(request, "abandoned by host")
	return nil
}

// AwaitReveal polls a request until it reaches a terminal state or the
// timeout elapses. On timeout the request is abandoned and the call fails
// with ErrRejected; if the callback lands while the deadline fires, the
// terminal request wins and is returned instead.
func (rs *RevealService) AwaitReveal(requestID string, timeout, interval time.Duration) (*models.DecryptionRequest, error) {
	deadline := time.Now().Add(timeout)
	for {
		request, err := rs.GetRequest(requestID)
		if err != nil {
			return nil, err
		}
		if request.State.Terminal() {
			return request, nil
		}
		if time.Now().After(deadline) {
			if err := rs.Abandon(requestID); errors.Is(err, ErrUnknownRequest) {
				// The callback resolved the request between the poll and the
				// abandon; report its outcome.
				return rs.GetRequest(requestID)
			}
			return nil, fmt.Errorf("%w: gave up waiting for reveal %s after %s", ErrRejected, requestID, timeout)
		}
		time.Sleep(interval)
	}
}

// GetRequest returns a copy of the request's current state.
func (rs *RevealService) GetRequest(requestID string) (*models.DecryptionRequest, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	request, exists := rs.requests[requestID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}

	snapshot := *request
	return &snapshot, nil
}

// PendingCount reports how many requests are still awaiting a callback.
func (rs *RevealService) PendingCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	count := 0
	for _, request := range rs.requests {
		if !request.State.Terminal() {
			count++
		}
	}
	return count
}

// reject transitions a request to its terminal Rejected state. Caller holds
// the mutex.
func (rs *RevealService) reject(request *models.DecryptionRequest, reason string) {
	request.State = models.RequestRejected
	rs.metrics.RecordRevealRejected(time.Since(time.Unix(0, request.CreatedAt)))
	rs.logger.Warn().Str("request_id", request.RequestID).Str("reason", reason).Msg("reveal rejected")
}

func sameCiphertexts(a, b []models.Ciphertext) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !models.CiphertextEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
