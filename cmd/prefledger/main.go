package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"prefledger/encryption"
	"prefledger/logger"
	"prefledger/models"
	"prefledger/service"
	"prefledger/storage"
)

// Config is read from the environment at startup.
type Config struct {
	StorageDir      string        `env:"PREFLEDGER_STORAGE_DIR" envDefault:"./prefledger_data"`
	Scheme          string        `env:"PREFLEDGER_SCHEME" envDefault:"paillier"`
	KeySize         int           `env:"PREFLEDGER_KEY_SIZE" envDefault:"2048"`
	OracleQueueSize int           `env:"PREFLEDGER_ORACLE_QUEUE" envDefault:"16"`
	RevealTimeout   time.Duration `env:"PREFLEDGER_REVEAL_TIMEOUT" envDefault:"30s"`
}

func main() {
	log := logger.New("prefledger")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("error reading configuration")
	}
	log.Info().Any("config", cfg).Msg("starting")

	scheme, decryptor, err := buildScheme(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing encryption scheme")
	}
	log.Info().Str("scheme", scheme.Name()).Int("key_size", scheme.KeySize()).Msg("scheme ready")

	catalog, err := storage.NewCatalog(cfg.StorageDir)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening catalog")
	}

	emitter := service.NewEmitter(16)
	defer emitter.Close()
	metrics := service.NewMetricsCollector()
	proofs := encryption.NewProofService()
	locks := service.NewRecordLocks()

	preferences := service.NewPreferenceService(catalog, locks, emitter, metrics, logger.New("preferences"))
	adjustments, err := service.NewAdjustmentService(scheme, catalog, locks, emitter, metrics, logger.New("adjustments"))
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing adjustment engine")
	}

	oracle, err := service.NewLocalOracle(decryptor, proofs, cfg.OracleQueueSize, logger.New("oracle"))
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing oracle")
	}
	reveal := service.NewRevealService(catalog, proofs, oracle, locks, emitter, metrics, logger.New("reveal"))
	oracle.Start(reveal.OnDecryptionCallback)
	defer oracle.Stop()

	events := emitter.Subscribe()
	go func() {
		for evt := range events {
			log.Info().Str("event", string(evt.Type)).Str("owner", evt.Owner.Hex()).Msg("ledger event")
		}
	}()

	if err := runDemo(cfg, log, scheme, proofs, preferences, adjustments, reveal); err != nil {
		log.Fatal().Err(err).Msg("demo round-trip failed")
	}

	log.Info().Any("metrics", metrics.Snapshot()).Msg("done")
}

// runDemo walks one owner through the full flow: encrypted submission,
// homomorphic adjustment calculation, and an oracle-verified reveal.
func runDemo(cfg Config, log zerolog.Logger, scheme encryption.Scheme, proofs *encryption.ProofService, preferences *service.PreferenceService, adjustments *service.AdjustmentService, reveal *service.RevealService) error {
	ownerKey, err := proofs.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("failed to generate owner key: %w", err)
	}
	owner := proofs.AddressOf(ownerKey)
	log.Info().Str("owner", owner.Hex()).Msg("demo owner")

	// Preference levels are encrypted caller-side; the ledger only ever sees
	// the handles.
	handles := make([]models.Ciphertext, 4)
	for i, level := range []uint32{40, 60, 0, 30} {
		if handles[i], err = scheme.EncryptConstant(level); err != nil {
			return fmt.Errorf("failed to encrypt preference: %w", err)
		}
	}

	if _, err := preferences.SubmitPreferences(owner, handles[0], handles[1], handles[2], handles[3]); err != nil {
		return fmt.Errorf("submit failed: %w", err)
	}

	if _, err := adjustments.CalculateAdjustments(owner); err != nil {
		return fmt.Errorf("calculate failed: %w", err)
	}

	requestID, err := reveal.RequestReveal(owner)
	if err != nil {
		return fmt.Errorf("reveal request failed: %w", err)
	}

	request, err := reveal.AwaitReveal(requestID, cfg.RevealTimeout, 10*time.Millisecond)
	if errors.Is(err, service.ErrRejected) {
		return fmt.Errorf("reveal abandoned after %s: %w", cfg.RevealTimeout, err)
	}
	if err != nil {
		return err
	}
	if request.State != models.RequestVerified {
		return fmt.Errorf("reveal terminated in state %s", request.State)
	}

	record, err := adjustments.GetAdjustments(owner)
	if err != nil {
		return err
	}
	log.Info().
		Uint32("font_size", record.Revealed.FontSize).
		Uint32("contrast_ratio", record.Revealed.ContrastRatio).
		Uint32("volume_level", record.Revealed.VolumeLevel).
		Uint32("animation_speed", record.Revealed.AnimationSpeed).
		Msg("revealed adjustments")

	if err := adjustments.ApplyAdjustments(owner); err != nil {
		return err
	}

	return nil
}

func buildScheme(cfg Config) (encryption.Scheme, encryption.Decryptor, error) {
	switch cfg.Scheme {
	case "transparent":
		s := encryption.NewTransparentScheme()
		return s, s, nil
	case "paillier":
		s, err := encryption.NewPaillierScheme(cfg.KeySize)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown scheme %q", cfg.Scheme)
	}
}
