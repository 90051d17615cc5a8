// Package beacon turns a public, low-entropy value (for example a block
// hash) into the deterministic randomness used by the ceremony's closing
// contribution. The derivation is a long chain of one-way hashes, so the
// output is fixed the moment the seed is public but cannot be known before.
package beacon

import (
	"crypto/sha256"

	"golang.org/x/crypto/chacha20"
)

// SeedSize is the byte length of a beacon seed and of the derived RNG seed.
const SeedSize = sha256.Size

// checkpointWindow: 2^checkpointWindow checkpoints are exposed per
// derivation so observers can spot-check the chain in parallel.
const checkpointWindow = 10

// Checkpoint is an intermediate state of the hash chain, recorded before the
// iteration it numbers is applied. Checkpoint 0 is the seed itself.
type Checkpoint struct {
	Iteration uint64
	State     [SeedSize]byte
}

// Derive applies seed = SHA256(seed) exactly 2^logIterations times and
// returns the final state plus the exposed checkpoints. Given the same seed
// and logIterations the result is bit-exact across implementations; the
// security property is unpredictability of the seed, not secrecy of the
// derivation.
func Derive(seed [SeedSize]byte, logIterations uint) ([SeedSize]byte, []Checkpoint) {
	iterations := uint64(1) << logIterations
	stride := uint64(1)
	if logIterations > checkpointWindow {
		stride = uint64(1) << (logIterations - checkpointWindow)
	}

	checkpoints := make([]Checkpoint, 0, iterations/stride)
	cur := seed
	for i := uint64(0); i < iterations; i++ {
		if i%stride == 0 {
			checkpoints = append(checkpoints, Checkpoint{Iteration: i, State: cur})
		}
		cur = sha256.Sum256(cur[:])
	}
	return cur, checkpoints
}

// RNG is a deterministic random generator keyed by a derived beacon seed.
// It reads the ChaCha20 keystream, so two generators built from the same
// seed produce identical bytes forever.
type RNG struct {
	stream *chacha20.Cipher
}

// NewRNG keys a deterministic generator from a 32-byte seed, normally the
// final digest of Derive.
func NewRNG(seed [SeedSize]byte) (*RNG, error) {
	var nonce [chacha20.NonceSize]byte
	stream, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, err
	}
	return &RNG{stream: stream}, nil
}

// Read fills p with keystream bytes. It never fails.
func (r *RNG) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.stream.XORKeyStream(p, p)
	return len(p), nil
}
