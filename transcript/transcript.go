// Package transcript fixes the digest that binds a contribution to the
// accumulator state it was computed on. Every participant of one ceremony
// instance must use the identical function; changing it forks the ceremony.
package transcript

import (
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"golang.org/x/crypto/blake2b"
)

// Size is the transcript hash width in bytes.
const Size = blake2b.Size256

// pokDST is the domain separation prefix for proof-of-knowledge challenge
// points; a per-secret tag byte is appended.
var pokDST = []byte("powersoftau-pok-v1/")

// New returns a streaming transcript hasher, for digesting mapped files
// without loading them.
func New() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails on a bad key; there is none.
		panic(err)
	}
	return h
}

// Hash digests raw accumulator bytes into a transcript hash.
func Hash(data []byte) [Size]byte {
	return blake2b.Sum256(data)
}

// BlankHash is the transcript prefix of the genesis challenge, the digest of
// the empty string.
func BlankHash() [Size]byte {
	return Hash(nil)
}

// ChallengePoint derives the Fiat-Shamir challenge point in G2 for one
// proof of knowledge: the transcript hash and the prover's blinded G1 pair
// are digested together, so the resulting proof verifies only against that
// specific accumulator state.
func ChallengePoint(digest []byte, sG1, sxG1 *bn254.G1Affine, tag byte) (bn254.G2Affine, error) {
	h := New()
	h.Write(digest)
	b := sG1.RawBytes()
	h.Write(b[:])
	b = sxG1.RawBytes()
	h.Write(b[:])
	return bn254.HashToG2(h.Sum(nil), append(pokDST, tag))
}
