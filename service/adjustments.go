package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"prefledger/encryption"
	"prefledger/models"
	"prefledger/storage"
)

// AdjustmentService is the homomorphic adjustment engine: it derives the four
// UI-adjustment ciphertexts from an owner's preference record using only the
// scheme's blind operations. Nothing is decrypted here.
//
// animationSpeed = default - cognitive/10 can underflow; the result is
// whatever the scheme's encrypted subtraction produces (uint32 wraparound for
// the transparent scheme, modular arithmetic for Paillier). Clamping at zero
// would require a decrypting comparison, so the engine leaves underflow
// untouched.
type AdjustmentService struct {
	scheme  encryption.Scheme
	catalog *storage.Catalog
	locks   *RecordLocks
	emitter *Emitter
	metrics *MetricsCollector
	logger  zerolog.Logger

	// Baseline ciphertexts, encrypted once at construction from
	// models.DefaultAdjustments and never mutated.
	defaultFontSize       models.Ciphertext
	defaultContrastRatio  models.Ciphertext
	defaultVolumeLevel    models.Ciphertext
	defaultAnimationSpeed models.Ciphertext
}

// NewAdjustmentService constructs the engine, encrypting the default
// adjustment baseline under the supplied scheme.
func NewAdjustmentService(scheme encryption.Scheme, catalog *storage.Catalog, locks *RecordLocks, emitter *Emitter, metrics *MetricsCollector, logger zerolog.Logger) (*AdjustmentService, error) {
	as := &AdjustmentService{
		scheme:  scheme,
		catalog: catalog,
		locks:   locks,
		emitter: emitter,
		metrics: metrics,
		logger:  logger,
	}

	var err error
	if as.defaultFontSize, err = scheme.EncryptConstant(models.DefaultAdjustments.FontSize); err != nil {
		return nil, fmt.Errorf("failed to encrypt default font size: %w", err)
	}
	if as.defaultContrastRatio, err = scheme.EncryptConstant(models.DefaultAdjustments.ContrastRatio); err != nil {
		return nil, fmt.Errorf("failed to encrypt default contrast ratio: %w", err)
	}
	if as.defaultVolumeLevel, err = scheme.EncryptConstant(models.DefaultAdjustments.VolumeLevel); err != nil {
		return nil, fmt.Errorf("failed to encrypt default volume level: %w", err)
	}
	if as.defaultAnimationSpeed, err = scheme.EncryptConstant(models.DefaultAdjustments.AnimationSpeed); err != nil {
		return nil, fmt.Errorf("failed to encrypt default animation speed: %w", err)
	}

	return as, nil
}

// CalculateAdjustments derives a fresh adjustment record from the owner's
// current preference record:
//
//	fontSize       = default + vision/10
//	contrastRatio  = default + vision/5
//	volumeLevel    = default + hearing/2
//	animationSpeed = default - cognitive/10
//
// The result overwrites any prior adjustment record, starting a new record
// generation (any previously revealed tuple is dropped). Recomputation always
// derives solely from the preference record, never from prior adjustment
// state. Fails with ErrPreconditionFailed when no preference record exists.
// Emits AdjustmentCalculated.
func (as *AdjustmentService) CalculateAdjustments(owner common.Address) (*models.AdjustmentRecord, error) {
	start := time.Now()

	lock := as.locks.ForOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	prefs, err := loadPreferenceRecord(as.catalog, owner)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: no preferences submitted for %s", ErrPreconditionFailed, owner.Hex())
	}
	if err != nil {
		return nil, err
	}

	fontSize, err := as.addScaled(as.defaultFontSize, prefs.Vision, 10)
	if err != nil {
		return nil, fmt.Errorf("font size: %w", err)
	}
	contrastRatio, err := as.addScaled(as.defaultContrastRatio, prefs.Vision, 5)
	if err != nil {
		return nil, fmt.Errorf("contrast ratio: %w", err)
	}
	volumeLevel, err := as.addScaled(as.defaultVolumeLevel, prefs.Hearing, 2)
	if err != nil {
		return nil, fmt.Errorf("volume level: %w", err)
	}
	animationSpeed, err := as.subtractScaled(as.defaultAnimationSpeed, prefs.Cognitive, 10)
	if err != nil {
		return nil, fmt.Errorf("animation speed: %w", err)
	}

	record := &models.AdjustmentRecord{
		Owner:          owner,
		FontSize:       fontSize,
		ContrastRatio:  contrastRatio,
		VolumeLevel:    volumeLevel,
		AnimationSpeed: animationSpeed,
		LastCalculated: time.Now().UnixNano(),
	}
	if err := storeAdjustmentRecord(as.catalog, record); err != nil {
		return nil, err
	}

	as.metrics.RecordCalculate(time.Since(start))
	as.emitter.Publish(EventAdjustmentCalculated, owner)
	as.logger.Info().Str("owner", owner.Hex()).Str("scheme", as.scheme.Name()).Msg("adjustments calculated")

	return record, nil
}

// GetAdjustments loads the owner's adjustment record. Returns
// storage.ErrNotFound (wrapped) when none was ever calculated.
func (as *AdjustmentService) GetAdjustments(owner common.Address) (*models.AdjustmentRecord, error) {
	lock := as.locks.ForOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	return loadAdjustmentRecord(as.catalog, owner)
}

// ApplyAdjustments signals downstream consumers that the owner's adjustments
// are ready by emitting UIAdjusted. It requires an adjustment record but not
// a revealed tuple: applying still-encrypted adjustments is a valid readiness
// signal, and callers needing cleartext must check Revealed themselves.
func (as *AdjustmentService) ApplyAdjustments(owner common.Address) error {
	lock := as.locks.ForOwner(owner)
	lock.Lock()
	defer lock.Unlock()

	if _, err := loadAdjustmentRecord(as.catalog, owner); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: no adjustments calculated for %s", ErrPreconditionFailed, owner.Hex())
		}
		return err
	}

	as.emitter.Publish(EventUIAdjusted, owner)
	as.logger.Info().Str("owner", owner.Hex()).Msg("adjustments applied")

	return nil
}

// addScaled computes base + value/divisor over ciphertexts.
func (as *AdjustmentService) addScaled(base, value models.Ciphertext, divisor uint32) (models.Ciphertext, error) {
	scaled, err := as.scheme.DivideByConstant(value, divisor)
	if err != nil {
		return nil, err
	}
	return as.scheme.Add(base, scaled)
}

// subtractScaled computes base - value/divisor over ciphertexts. No underflow
// guard, see the type comment.
func (as *AdjustmentService) subtractScaled(base, value models.Ciphertext, divisor uint32) (models.Ciphertext, error) {
	scaled, err := as.scheme.DivideByConstant(value, divisor)
	if err != nil {
		return nil, err
	}
	return as.scheme.Subtract(base, scaled)
}
