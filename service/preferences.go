package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"prefledger/models"
	"prefledger/storage"
)

// PreferenceService owns the encrypted preference records on the ledger.
// Records are persisted through the generic catalog under the
// preference_<owner> convention so existing stored data stays readable.
//
// Record mutations are serialized through the RecordLocks registry shared
// with the adjustment engine and the reveal protocol, so a reset can never
// interleave with a reveal callback acting on the same owner.
type PreferenceService struct {
	catalog *storage.Catalog
	locks   *RecordLocks
	emitter *Emitter
	metrics *MetricsCollector
	logger  zerolog.Logger
}

// NewPreferenceService creates a preference service over the given catalog.
// locks must be the same registry handed to the other services on this
// catalog.
func NewPreferenceService(catalog *storage.Catalog, locks *RecordLocks, emitter *Emitter, metrics *MetricsCollector, logger zerolog.Logger) *PreferenceService {
	return &PreferenceService{
		catalog: catalog,
		locks:   locks,
		emitter: emitter,
		metrics: metrics,
		logger:  logger,
	}
}

// SubmitPreferences replaces the owner's entire preference record with the
// four supplied ciphertexts and a fresh timestamp. There is no partial merge:
// repeated calls fully overwrite. Emits PreferencesUpdated.
func (ps *PreferenceService) SubmitPreferences(owner common.Address, vision, hearing, mobility, cognitive models.Ciphertext) (*models.PreferenceRecord, error) {
	start := time.Now()

	if len(vision) == 0 || len(hearing) == 0 || len(mobility) == 0 || len(cognitive) == 0 {
		return nil, ErrIncompleteRecord
	}

	lock := ps.locks.ForOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	record := &models.PreferenceRecord{
		Owner:       owner,
		Vision:      vision,
		Hearing:     hearing,
		Mobility:    mobility,
		Cognitive:   cognitive,
		LastUpdated: time.Now().UnixNano(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preference record: %w", err)
	}
	if err := ps.catalog.PutBlob(models.PreferenceKey(owner), data); err != nil {
		return nil, fmt.Errorf("failed to store preference record: %w", err)
	}

	ps.metrics.RecordSubmit(time.Since(start))
	ps.emitter.Publish(EventPreferencesUpdated, owner)
	ps.logger.Info().Str("owner", owner.Hex()).Msg("preferences submitted")

	return record, nil
}

// ResetPreferences deletes the owner's preference and adjustment records.
// Absent records are not an error; the reset is a no-op for them. Emits
// PreferencesUpdated.
func (ps *PreferenceService) ResetPreferences(owner common.Address) error {
	lock := ps.locks.ForOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	for _, key := range []string{models.PreferenceKey(owner), models.AdjustmentKey(owner)} {
		if err := ps.catalog.DeleteBlob(key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to delete %q: %w", key, err)
		}
	}

	ps.emitter.Publish(EventPreferencesUpdated, owner)
	ps.logger.Info().Str("owner", owner.Hex()).Msg("preferences reset")

	return nil
}

// GetPreferences loads the owner's preference record. Returns
// storage.ErrNotFound (wrapped) when the owner never submitted.
func (ps *PreferenceService) GetPreferences(owner common.Address) (*models.PreferenceRecord, error) {
	lock := ps.locks.ForOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	return loadPreferenceRecord(ps.catalog, owner)
}

// HasPreferences reports whether a preference record exists for owner.
func (ps *PreferenceService) HasPreferences(owner common.Address) bool {
	lock := ps.locks.ForOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	_, err := ps.catalog.GetBlob(models.PreferenceKey(owner))
	return err == nil
}

// loadPreferenceRecord reads and decodes a preference record from the
// catalog. Shared with the adjustment engine.
func loadPreferenceRecord(catalog *storage.Catalog, owner common.Address) (*models.PreferenceRecord, error) {
	data, err := catalog.GetBlob(models.PreferenceKey(owner))
	if err != nil {
		return nil, err
	}

	var record models.PreferenceRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: preference record: %v", ErrMalformedPayload, err)
	}
	return &record, nil
}

// loadAdjustmentRecord reads and decodes an adjustment record from the
// catalog. Shared between the engine and the reveal protocol.
func loadAdjustmentRecord(catalog *storage.Catalog, owner common.Address) (*models.AdjustmentRecord, error) {
	data, err := catalog.GetBlob(models.AdjustmentKey(owner))
	if err != nil {
		return nil, err
	}

	var record models.AdjustmentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: adjustment record: %v", ErrMalformedPayload, err)
	}
	return &record, nil
}

// storeAdjustmentRecord persists an adjustment record through the catalog.
func storeAdjustmentRecord(catalog *storage.Catalog, record *models.AdjustmentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal adjustment record: %w", err)
	}
	if err := catalog.PutBlob(models.AdjustmentKey(record.Owner), data); err != nil {
		return fmt.Errorf("failed to store adjustment record: %w", err)
	}
	return nil
}
