package encryption

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"

	"prefledger/models"
)

// ProofService provides the signing and verification capability the
// decryption protocol relies on: the oracle signs the cleartext it returns,
// and the ledger accepts the cleartext only if the signature recovers to the
// oracle's known address.
type ProofService struct{}

// NewProofService returns a ProofService.
func NewProofService() *ProofService {
	return &ProofService{}
}

// GenerateKeyPair generates a new ECDSA key pair.
func (ps *ProofService) GenerateKeyPair() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// Keccak256 computes a Keccak-256 hash over the concatenation of the inputs.
func (ps *ProofService) Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// RevealDigest binds a decryption result to the exact request it answers:
// the request id, the returned cleartext payload, and the original ciphertext
// handles in submission order.
func (ps *ProofService) RevealDigest(requestID string, payload []byte, ciphertexts []models.Ciphertext) []byte {
	parts := make([][]byte, 0, len(ciphertexts)+2)
	parts = append(parts, []byte(requestID), payload)
	for _, ct := range ciphertexts {
		parts = append(parts, ct)
	}
	return ps.Keccak256(parts...)
}

// SignReveal produces the proof an oracle attaches to its callback.
func (ps *ProofService) SignReveal(requestID string, payload []byte, ciphertexts []models.Ciphertext, key *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(ps.RevealDigest(requestID, payload, ciphertexts), key)
}

// VerifyReveal checks that proof is a valid oracle signature over the reveal
// digest. The signer is recovered from the signature and compared against the
// oracle address the ledger was configured to trust.
func (ps *ProofService) VerifyReveal(oracle common.Address, requestID string, payload []byte, ciphertexts []models.Ciphertext, proof []byte) bool {
	digest := ps.RevealDigest(requestID, payload, ciphertexts)
	pub, err := crypto.SigToPub(digest, proof)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == oracle
}

// AddressOf returns the ledger identity derived from a key pair.
func (ps *ProofService) AddressOf(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
