package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"prefledger/models"
)

const (
	catalogFile = "catalog.json"
	auditFile   = "audit.json"
)

// catalogState is the on-disk shape of the catalog. The whole state is
// rewritten on every mutation and reloaded at construction.
type catalogState struct {
	Blobs map[string]hexutil.Bytes `json:"blobs"`
}

// Catalog is the generic keyed blob store backing the ledger. Preference and
// adjustment records are stored as JSON blobs under their conventional keys;
// the blob under models.IndexKey is a JSON array listing every other
// populated key and is the only supported enumeration path.
//
// The index read-modify-write is serialized by its own mutex so concurrent
// writers cannot lose a key registration; blob reads and writes are guarded
// separately by an RWMutex.
type Catalog struct {
	basePath string
	mu       sync.RWMutex
	idxMu    sync.Mutex
	blobs    map[string]hexutil.Bytes
	audit    []*models.AuditEntry
}

// NewCatalog opens (or creates) a catalog rooted at basePath, loading any
// persisted state and validating the audit chain.
func NewCatalog(basePath string) (*Catalog, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	c := &Catalog{
		basePath: basePath,
		blobs:    make(map[string]hexutil.Bytes),
	}

	if err := c.loadState(); err != nil {
		return nil, err
	}
	if err := c.loadAudit(); err != nil {
		return nil, err
	}
	if !models.ValidateAuditLog(c.audit) {
		return nil, ErrCorruptAuditLog
	}

	return c, nil
}

// GetBlob returns the bytes stored under key, or ErrNotFound.
func (c *Catalog) GetBlob(key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blob, exists := c.blobs[key]
	if !exists {
		return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
	}
	return blob, nil
}

// PutBlob stores blob under key, registering the key in the index if it is
// new. Writing the index key directly is rejected. Repeated puts under the
// same key overwrite the blob and leave the index unchanged, so a key appears
// in the index at most once. The index update and the blob write commit
// together: a failed persist leaves neither behind, so the index never
// references a key with no blob.
func (c *Catalog) PutBlob(key string, blob []byte) error {
	if key == models.IndexKey {
		return ErrReservedKey
	}

	c.idxMu.Lock()
	defer c.idxMu.Unlock()

	keys, err := c.readIndex()
	if err != nil {
		return err
	}
	muts := []mutation{{op: "put", key: key, blob: blob}}
	if !containsKey(keys, key) {
		keys = append(keys, key)
		indexBlob, err := json.Marshal(keys)
		if err != nil {
			return fmt.Errorf("failed to encode index: %w", err)
		}
		muts = append([]mutation{{op: "put", key: models.IndexKey, blob: indexBlob}}, muts...)
	}

	return c.commit(muts)
}

// DeleteBlob removes the blob under key and its index registration. Returns
// ErrNotFound when the key was never populated.
func (c *Catalog) DeleteBlob(key string) error {
	if key == models.IndexKey {
		return ErrReservedKey
	}

	c.idxMu.Lock()
	defer c.idxMu.Unlock()

	c.mu.RLock()
	_, exists := c.blobs[key]
	c.mu.RUnlock()
	if !exists {
		return fmt.Errorf("key %q: %w", key, ErrNotFound)
	}

	keys, err := c.readIndex()
	if err != nil {
		return err
	}
	remaining := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != key {
			remaining = append(remaining, k)
		}
	}
	indexBlob, err := json.Marshal(remaining)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	return c.commit([]mutation{
		{op: "put", key: models.IndexKey, blob: indexBlob},
		{op: "delete", key: key},
	})
}

// Keys enumerates the catalog through the index blob, in first-put order.
func (c *Catalog) Keys() ([]string, error) {
	c.idxMu.Lock()
	defer c.idxMu.Unlock()
	return c.readIndex()
}

// AuditLog returns a copy of the catalog's audit chain.
func (c *Catalog) AuditLog() []*models.AuditEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]*models.AuditEntry, len(c.audit))
	copy(entries, c.audit)
	return entries
}

// readIndex parses the index blob into its key list. An absent index means an
// empty catalog; an unparseable one is ErrMalformedIndex.
func (c *Catalog) readIndex() ([]string, error) {
	c.mu.RLock()
	blob, exists := c.blobs[models.IndexKey]
	c.mu.RUnlock()

	if !exists {
		return nil, nil
	}

	var keys []string
	if err := json.Unmarshal(blob, &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIndex, err)
	}
	return keys, nil
}

// mutation is one step of an atomic catalog change: op is "put" or "delete".
type mutation struct {
	op   string
	key  string
	blob []byte
}

// commit applies the mutations to the in-memory state, appends their audit
// entries, and rewrites both state files in a single persist. When the persist
// fails, the in-memory blobs and audit log are rolled back so the catalog
// never exposes a state that is not on disk. Caller holds idxMu.
func (c *Catalog) commit(muts []mutation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prior := make(map[string]hexutil.Bytes, len(muts))
	existed := make(map[string]bool, len(muts))
	for _, m := range muts {
		if _, seen := existed[m.key]; seen {
			continue
		}
		blob, ok := c.blobs[m.key]
		prior[m.key] = blob
		existed[m.key] = ok
	}
	auditLen := len(c.audit)

	for _, m := range muts {
		switch m.op {
		case "put":
			c.blobs[m.key] = m.blob
			c.appendAudit("put", m.key, m.blob)
		case "delete":
			delete(c.blobs, m.key)
			c.appendAudit("delete", m.key, nil)
		}
	}

	if err := c.persist(); err != nil {
		for key, was := range existed {
			if was {
				c.blobs[key] = prior[key]
			} else {
				delete(c.blobs, key)
			}
		}
		c.audit = c.audit[:auditLen]
		return err
	}
	return nil
}

// appendAudit chains a new entry onto the audit log. Caller holds mu.
func (c *Catalog) appendAudit(op, key string, blob []byte) {
	entry := &models.AuditEntry{
		Index:     uint64(len(c.audit)),
		Timestamp: time.Now().UnixNano(),
		Op:        op,
		Key:       key,
		PrevHash:  c.lastAuditHash(),
	}
	if blob != nil {
		d := sha3.NewLegacyKeccak256()
		d.Write(blob)
		entry.BlobHash = d.Sum(nil)
	}
	entry.Seal()
	c.audit = append(c.audit, entry)
}

func (c *Catalog) lastAuditHash() []byte {
	if len(c.audit) == 0 {
		return make([]byte, 32)
	}
	return c.audit[len(c.audit)-1].Hash
}

// persist rewrites both state files. Caller holds mu.
func (c *Catalog) persist() error {
	state := catalogState{Blobs: c.blobs}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.basePath, catalogFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}

	auditData, err := json.MarshalIndent(c.audit, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal audit log: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.basePath, auditFile), auditData, 0644); err != nil {
		return fmt.Errorf("failed to write audit file: %w", err)
	}

	return nil
}

func (c *Catalog) loadState() error {
	data, err := os.ReadFile(filepath.Join(c.basePath, catalogFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var state catalogState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to decode catalog file: %w", err)
	}
	if state.Blobs != nil {
		c.blobs = state.Blobs
	}
	return nil
}

func (c *Catalog) loadAudit() error {
	data, err := os.ReadFile(filepath.Join(c.basePath, auditFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read audit file: %w", err)
	}

	if err := json.Unmarshal(data, &c.audit); err != nil {
		return fmt.Errorf("failed to decode audit file: %w", err)
	}
	return nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
