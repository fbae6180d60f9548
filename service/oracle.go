package service

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"prefledger/encryption"
	"prefledger/models"
)

// DecryptionCallback is how an oracle delivers its result: the request id it
// was given, the cleartext payload, and a proof binding the payload to the
// original ciphertexts.
type DecryptionCallback func(requestID string, payload []byte, proof []byte) error

// DecryptionOracle is the external collaborator that opens ciphertexts. The
// ledger trusts its output only after proof verification against Address().
// RequestDecryption must not block on the decryption itself; the callback
// arrives asynchronously, after an arbitrary delay.
type DecryptionOracle interface {
	Address() common.Address
	RequestDecryption(job *models.DecryptionJob) error
}

// LocalOracle is an in-process oracle for demo and test deployments: a
// channel-fed worker that decrypts each job with the scheme's Decryptor,
// signs the result, and invokes the ledger's callback. Production setups
// substitute a remote oracle behind the same interface.
type LocalOracle struct {
	decryptor  encryption.Decryptor
	proofs     *encryption.ProofService
	signingKey *ecdsa.PrivateKey
	logger     zerolog.Logger

	callback   DecryptionCallback
	jobCh      chan *models.DecryptionJob
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once
}

// NewLocalOracle creates an oracle with a fresh signing key and a job queue
// of the given size.
func NewLocalOracle(decryptor encryption.Decryptor, proofs *encryption.ProofService, queueSize int, logger zerolog.Logger) (*LocalOracle, error) {
	signingKey, err := proofs.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate oracle signing key: %w", err)
	}
	if queueSize <= 0 {
		queueSize = 16
	}

	return &LocalOracle{
		decryptor:  decryptor,
		proofs:     proofs,
		signingKey: signingKey,
		logger:     logger,
		jobCh:      make(chan *models.DecryptionJob, queueSize),
		shutdownCh: make(chan struct{}),
	}, nil
}

// Address returns the identity proofs are verified against.
func (o *LocalOracle) Address() common.Address {
	return o.proofs.AddressOf(o.signingKey)
}

// Start launches the worker goroutine delivering results to callback.
func (o *LocalOracle) Start(callback DecryptionCallback) {
	o.startOnce.Do(func() {
		o.callback = callback
		o.wg.Add(1)
		go o.worker()
	})
}

// Stop drains no further jobs and waits for the worker to exit.
func (o *LocalOracle) Stop() {
	o.stopOnce.Do(func() {
		close(o.shutdownCh)
		o.wg.Wait()
	})
}

// RequestDecryption enqueues a job without blocking. A full queue is an
// error; the caller decides whether to surface or retry it.
func (o *LocalOracle) RequestDecryption(job *models.DecryptionJob) error {
	select {
	case o.jobCh <- job:
		return nil
	default:
		return fmt.Errorf("oracle queue is full, request %s dropped", job.RequestID)
	}
}

func (o *LocalOracle) worker() {
	defer o.wg.Done()

	for {
		select {
		case <-o.shutdownCh:
			return
		case job := <-o.jobCh:
			o.process(job)
		}
	}
}

// process opens the job's ciphertexts, signs the cleartext, and delivers the
// callback. A job that cannot be decrypted is dropped: the corresponding
// request simply stays Pending, which is the protocol's defined behavior for
// a callback that never arrives.
func (o *LocalOracle) process(job *models.DecryptionJob) {
	if len(job.Ciphertexts) != 4 {
		o.logger.Error().Str("request_id", job.RequestID).Int("count", len(job.Ciphertexts)).
			Msg("oracle expects exactly four ciphertexts")
		return
	}

	values := make([]uint32, len(job.Ciphertexts))
	for i, ct := range job.Ciphertexts {
		value, err := o.decryptor.Decrypt(ct)
		if err != nil {
			o.logger.Error().Err(err).Str("request_id", job.RequestID).Int("position", i).
				Msg("oracle failed to decrypt ciphertext")
			return
		}
		values[i] = value
	}

	payload, err := json.Marshal(models.RevealedAdjustments{
		FontSize:       values[0],
		ContrastRatio:  values[1],
		VolumeLevel:    values[2],
		AnimationSpeed: values[3],
	})
	if err != nil {
		o.logger.Error().Err(err).Str("request_id", job.RequestID).Msg("oracle failed to encode payload")
		return
	}

	proof, err := o.proofs.SignReveal(job.RequestID, payload, job.Ciphertexts, o.signingKey)
	if err != nil {
		o.logger.Error().Err(err).Str("request_id", job.RequestID).Msg("oracle failed to sign payload")
		return
	}

	if err := o.callback(job.RequestID, payload, proof); err != nil {
		o.logger.Error().Err(err).Str("request_id", job.RequestID).Msg("decryption callback failed")
	}
}
