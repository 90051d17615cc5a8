// Package group wraps the BN254 point codec and the pairing relation every
// verification step is built on. The curve arithmetic itself comes from
// gnark-crypto; this package only fixes how points travel through ceremony
// files and how two point pairs are compared for a hidden common exponent.
package group

import (
	"bytes"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/zkceremony/powersoftau/parameters"
)

// PointDecodeError reports bytes that do not decode to a curve point.
type PointDecodeError struct {
	Err error
}

func (e *PointDecodeError) Error() string {
	return fmt.Sprintf("invalid point encoding: %v", e.Err)
}

func (e *PointDecodeError) Unwrap() error { return e.Err }

// SubgroupError reports a decoded point outside the prime-order subgroup.
type SubgroupError struct{}

func (e *SubgroupError) Error() string {
	return "point is not in the prime-order subgroup"
}

// IdentityError reports a decoded point that is the group identity. Ceremony
// files never legitimately contain one, and every pairing against the
// identity is vacuously satisfied, so checked reads treat it as fatal.
type IdentityError struct{}

func (e *IdentityError) Error() string {
	return "point is the identity element"
}

// WriteG1 encodes p into buf, which must hold exactly G1Size(c) bytes.
func WriteG1(buf []byte, p *bn254.G1Affine, c parameters.Compression) {
	if c == parameters.Compressed {
		b := p.Bytes()
		copy(buf, b[:])
		return
	}
	b := p.RawBytes()
	copy(buf, b[:])
}

// WriteG2 encodes p into buf, which must hold exactly G2Size(c) bytes.
func WriteG2(buf []byte, p *bn254.G2Affine, c parameters.Compression) {
	if c == parameters.Compressed {
		b := p.Bytes()
		copy(buf, b[:])
		return
	}
	b := p.RawBytes()
	copy(buf, b[:])
}

// ReadG1 decodes a G1 point from buf. The on-curve check always happens;
// the identity and subgroup checks only when asked for.
func ReadG1(buf []byte, p *bn254.G1Affine, check parameters.Correctness) error {
	dec := bn254.NewDecoder(bytes.NewReader(buf), bn254.NoSubgroupChecks())
	if err := dec.Decode(p); err != nil {
		return &PointDecodeError{Err: err}
	}
	if check == parameters.CheckInput {
		if p.IsInfinity() {
			return &IdentityError{}
		}
		if !p.IsInSubGroup() {
			return &SubgroupError{}
		}
	}
	return nil
}

// ReadG2 decodes a G2 point from buf, as ReadG1.
func ReadG2(buf []byte, p *bn254.G2Affine, check parameters.Correctness) error {
	dec := bn254.NewDecoder(bytes.NewReader(buf), bn254.NoSubgroupChecks())
	if err := dec.Decode(p); err != nil {
		return &PointDecodeError{Err: err}
	}
	if check == parameters.CheckInput {
		if p.IsInfinity() {
			return &IdentityError{}
		}
		if !p.IsInSubGroup() {
			return &SubgroupError{}
		}
	}
	return nil
}

// SameRatio reports whether e(a1, b2) == e(a2, b1), i.e. whether the pairs
// (a1, a2) and (b1, b2) hide the same exponent. It never panics; a pairing
// failure counts as a mismatch.
func SameRatio(a1, a2 bn254.G1Affine, b1, b2 bn254.G2Affine) bool {
	var na1 bn254.G1Affine
	na1.Neg(&a1)
	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{na1, a2},
		[]bn254.G2Affine{b2, b1},
	)
	return err == nil && ok
}
