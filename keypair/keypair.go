// Package keypair samples one contribution's secrets and builds the public
// key that lets anyone verify the contribution without learning them.
package keypair

import (
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkceremony/powersoftau/group"
	"github.com/zkceremony/powersoftau/transcript"
)

// Per-secret domain tags for the Fiat-Shamir challenge points, in record
// order tau, alpha, beta.
const (
	tagTau byte = iota
	tagAlpha
	tagBeta
)

// maxScalarDraws bounds resampling on a zero draw. A sound generator draws
// zero with probability ~2^-254, so hitting the bound means the RNG is broken.
const maxScalarDraws = 128

// DegenerateScalarError reports a randomness source that only ever produced
// zero scalars.
type DegenerateScalarError struct{}

func (DegenerateScalarError) Error() string {
	return "randomness source produced only zero scalars"
}

// PrivateKey holds the three secret scalars of one contribution. It exists
// only in memory for the duration of the transform; callers must Destroy it
// on every exit path.
type PrivateKey struct {
	Tau   fr.Element
	Alpha fr.Element
	Beta  fr.Element
}

// Destroy overwrites the secret scalars. The ceremony's guarantee depends on
// this running before the process does any further I/O.
func (k *PrivateKey) Destroy() {
	k.Tau.SetZero()
	k.Alpha.SetZero()
	k.Beta.SetZero()
}

// Proof is the public record for one secret x: an ephemeral blinding
// commitment s*G1, the blinded secret (x*s)*G1, the secret in G2, and the
// proof element x*R where R is the transcript-bound challenge point.
type Proof struct {
	SG1  bn254.G1Affine
	SXG1 bn254.G1Affine
	XG2  bn254.G2Affine
	XR   bn254.G2Affine
}

// PublicKey is the verifiable part of a contribution, appended to the
// response after the parameter vectors. Immutable once created.
type PublicKey struct {
	Tau   Proof
	Alpha Proof
	Beta  Proof
}

func randomNonZero(rng io.Reader) (fr.Element, error) {
	var e fr.Element
	var buf [64]byte
	for i := 0; i < maxScalarDraws; i++ {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return e, fmt.Errorf("reading randomness: %w", err)
		}
		// 64 bytes reduced mod r keep the bias negligible.
		e.SetBytes(buf[:])
		if !e.IsZero() {
			return e, nil
		}
	}
	return e, DegenerateScalarError{}
}

func prove(x *fr.Element, rng io.Reader, digest []byte, tag byte) (Proof, error) {
	var p Proof

	s, err := randomNonZero(rng)
	if err != nil {
		return p, err
	}
	defer s.SetZero()

	_, _, g1, g2 := bn254.Generators()
	var sBig, xBig big.Int
	defer func() {
		sBig.SetInt64(0)
		xBig.SetInt64(0)
	}()
	s.BigInt(&sBig)
	x.BigInt(&xBig)

	p.SG1.ScalarMultiplication(&g1, &sBig)
	p.SXG1.ScalarMultiplication(&p.SG1, &xBig)
	p.XG2.ScalarMultiplication(&g2, &xBig)

	r, err := transcript.ChallengePoint(digest, &p.SG1, &p.SXG1, tag)
	if err != nil {
		return p, fmt.Errorf("deriving challenge point: %w", err)
	}
	p.XR.ScalarMultiplication(&r, &xBig)
	return p, nil
}

// Generate draws tau, alpha and beta uniformly from the scalar field
// (resampling on a zero draw) and proves knowledge of each, bound to the
// given transcript hash. The caller owns the private key and must not retain
// it beyond the transform.
func Generate(rng io.Reader, digest []byte) (*PublicKey, *PrivateKey, error) {
	priv := new(PrivateKey)
	pub := new(PublicKey)

	var err error
	if priv.Tau, err = randomNonZero(rng); err != nil {
		return nil, nil, err
	}
	if priv.Alpha, err = randomNonZero(rng); err != nil {
		priv.Destroy()
		return nil, nil, err
	}
	if priv.Beta, err = randomNonZero(rng); err != nil {
		priv.Destroy()
		return nil, nil, err
	}

	if pub.Tau, err = prove(&priv.Tau, rng, digest, tagTau); err != nil {
		priv.Destroy()
		return nil, nil, err
	}
	if pub.Alpha, err = prove(&priv.Alpha, rng, digest, tagAlpha); err != nil {
		priv.Destroy()
		return nil, nil, err
	}
	if pub.Beta, err = prove(&priv.Beta, rng, digest, tagBeta); err != nil {
		priv.Destroy()
		return nil, nil, err
	}
	return pub, priv, nil
}

func (p *Proof) verify(digest []byte, tag byte) bool {
	// Pairings against the identity hold for any exponent, so an
	// all-identity record would otherwise pass every check below.
	if p.SG1.IsInfinity() || p.SXG1.IsInfinity() || p.XG2.IsInfinity() || p.XR.IsInfinity() {
		return false
	}
	r, err := transcript.ChallengePoint(digest, &p.SG1, &p.SXG1, tag)
	if err != nil {
		return false
	}
	_, _, _, g2 := bn254.Generators()
	// Knowledge of x, bound to the transcript: (SG1, SXG1) and (R, XR)
	// must hide the same exponent.
	if !group.SameRatio(p.SG1, p.SXG1, r, p.XR) {
		return false
	}
	// XG2 must encode that same exponent.
	return group.SameRatio(p.SG1, p.SXG1, g2, p.XG2)
}

// Verify checks all three proofs of knowledge against the given transcript
// hash. A key replayed against a different accumulator state verifies false.
func (pk *PublicKey) Verify(digest []byte) bool {
	return pk.Tau.verify(digest, tagTau) &&
		pk.Alpha.verify(digest, tagAlpha) &&
		pk.Beta.verify(digest, tagBeta)
}
