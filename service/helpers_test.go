package service

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"prefledger/encryption"
	"prefledger/logger"
	"prefledger/models"
	"prefledger/storage"
)

// testLedger wires the services over the transparent scheme so tests can
// check plaintext-equivalent results.
type testLedger struct {
	scheme      *encryption.TransparentScheme
	catalog     *storage.Catalog
	locks       *RecordLocks
	emitter     *Emitter
	metrics     *MetricsCollector
	proofs      *encryption.ProofService
	preferences *PreferenceService
	adjustments *AdjustmentService
}

func newTestLedger(t *testing.T) *testLedger {
	t.Helper()

	catalog, err := storage.NewCatalog(t.TempDir())
	require.NoError(t, err)

	l := &testLedger{
		scheme:  encryption.NewTransparentScheme(),
		catalog: catalog,
		locks:   NewRecordLocks(),
		emitter: NewEmitter(64),
		metrics: NewMetricsCollector(),
		proofs:  encryption.NewProofService(),
	}
	t.Cleanup(l.emitter.Close)

	l.preferences = NewPreferenceService(catalog, l.locks, l.emitter, l.metrics, logger.Nop())
	l.adjustments, err = NewAdjustmentService(l.scheme, catalog, l.locks, l.emitter, l.metrics, logger.Nop())
	require.NoError(t, err)

	return l
}

func (l *testLedger) encrypt(t *testing.T, v uint32) models.Ciphertext {
	t.Helper()
	ct, err := l.scheme.EncryptConstant(v)
	require.NoError(t, err)
	return ct
}

func (l *testLedger) decrypt(t *testing.T, ct models.Ciphertext) uint32 {
	t.Helper()
	v, err := l.scheme.Decrypt(ct)
	require.NoError(t, err)
	return v
}

func (l *testLedger) submit(t *testing.T, owner common.Address, vision, hearing, mobility, cognitive uint32) *models.PreferenceRecord {
	t.Helper()
	record, err := l.preferences.SubmitPreferences(owner,
		l.encrypt(t, vision), l.encrypt(t, hearing), l.encrypt(t, mobility), l.encrypt(t, cognitive))
	require.NoError(t, err)
	return record
}

// drainEvents returns the event types currently buffered on ch.
func drainEvents(ch <-chan Event) []EventType {
	var types []EventType
	for {
		select {
		case evt := <-ch:
			types = append(types, evt.Type)
		default:
			return types
		}
	}
}

var (
	testOwner = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	otherUser = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

// stubOracle records dispatched jobs so tests drive the callback themselves.
type stubOracle struct {
	addr common.Address
	jobs []*models.DecryptionJob
	err  error
}

func (s *stubOracle) Address() common.Address { return s.addr }

func (s *stubOracle) RequestDecryption(job *models.DecryptionJob) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}
