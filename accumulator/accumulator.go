// Package accumulator owns the ceremony's large point vectors: their byte
// layout in challenge and response files, the batched per-element
// transformation by a contributor's secrets, and the pairing checks that let
// anyone verify a transformation after the fact.
//
// Vectors may hold millions of points backed by multi-gigabyte files, so
// everything that touches them runs in bounded-size chunks; peak memory
// depends on the configured chunk size, not on the power bound.
package accumulator

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/zkceremony/powersoftau/group"
	"github.com/zkceremony/powersoftau/parameters"
	"github.com/zkceremony/powersoftau/transcript"
)

// Accumulator is one decoded ceremony state. Element i of each vector
// carries the cumulative secret raised to the i-th power: generator^(tau^i)
// for TauG1/TauG2, generator^(alpha*tau^i) and generator^(beta*tau^i) for
// the alpha and beta vectors, and generator^beta for BetaG2. The genesis
// state encodes cumulative secret 1 everywhere.
type Accumulator struct {
	Params *parameters.Ceremony

	TauG1      []bn254.G1Affine
	TauG2      []bn254.G2Affine
	AlphaTauG1 []bn254.G1Affine
	BetaTauG1  []bn254.G1Affine
	BetaG2     bn254.G2Affine
}

// NewInitial is the genesis accumulator: every element the base generator.
func NewInitial(p *parameters.Ceremony) *Accumulator {
	_, _, g1, g2 := bn254.Generators()

	a := &Accumulator{
		Params:     p,
		TauG1:      make([]bn254.G1Affine, p.TauPowersG1),
		TauG2:      make([]bn254.G2Affine, p.TauPowers),
		AlphaTauG1: make([]bn254.G1Affine, p.TauPowers),
		BetaTauG1:  make([]bn254.G1Affine, p.TauPowers),
		BetaG2:     g2,
	}
	for i := range a.TauG1 {
		a.TauG1[i] = g1
	}
	for i := range a.TauG2 {
		a.TauG2[i] = g2
	}
	for i := range a.AlphaTauG1 {
		a.AlphaTauG1[i] = g1
	}
	for i := range a.BetaTauG1 {
		a.BetaTauG1[i] = g1
	}
	return a
}

// CalculateHash digests a whole ceremony file into the transcript hash that
// binds the next contribution to it. Cost is linear in the file size and
// independent of decoding.
func CalculateHash(data []byte) [transcript.Size]byte {
	return transcript.Hash(data)
}

// checkFileSize accepts a file with or without the trailing public key
// record; everything else is fatal before parsing starts.
func checkFileSize(n int, comp parameters.Compression, p *parameters.Ceremony) error {
	bare := p.ExpectedSize(comp, false)
	if n == bare || n == p.ExpectedSize(comp, true) {
		return nil
	}
	return &FormatError{Expected: bare, Actual: n}
}

// Deserialize decodes a full ceremony file (transcript prefix included in
// the layout, public key record ignored if present) into an Accumulator.
func Deserialize(data []byte, comp parameters.Compression, check parameters.Correctness, p *parameters.Ceremony) (*Accumulator, error) {
	if err := checkFileSize(len(data), comp, p); err != nil {
		return nil, err
	}
	lay := p.Layout(comp)

	a := &Accumulator{
		Params:     p,
		TauG1:      make([]bn254.G1Affine, p.TauPowersG1),
		TauG2:      make([]bn254.G2Affine, p.TauPowers),
		AlphaTauG1: make([]bn254.G1Affine, p.TauPowers),
		BetaTauG1:  make([]bn254.G1Affine, p.TauPowers),
	}

	if err := decodeG1Vector(data, lay.TauG1, a.TauG1, comp, check, p.ChunkSize, "tau_g1"); err != nil {
		return nil, err
	}
	if err := decodeG1Vector(data, lay.AlphaTauG1, a.AlphaTauG1, comp, check, p.ChunkSize, "alpha_tau_g1"); err != nil {
		return nil, err
	}
	if err := decodeG1Vector(data, lay.BetaTauG1, a.BetaTauG1, comp, check, p.ChunkSize, "beta_tau_g1"); err != nil {
		return nil, err
	}
	if err := decodeG2Vector(data, lay.TauG2, a.TauG2, comp, check, p.ChunkSize, "tau_g2"); err != nil {
		return nil, err
	}
	g2Size := parameters.G2Size(comp)
	if err := group.ReadG2(data[lay.BetaG2:lay.BetaG2+g2Size], &a.BetaG2, check); err != nil {
		return nil, fmt.Errorf("beta_g2: %w", err)
	}
	return a, nil
}

// Serialize encodes the accumulator body into buf at the fixed section
// offsets, leaving the transcript prefix bytes untouched.
func (a *Accumulator) Serialize(buf []byte, comp parameters.Compression) error {
	p := a.Params
	lay := p.Layout(comp)
	if len(buf) < lay.End {
		return &FormatError{Expected: lay.End, Actual: len(buf)}
	}

	encodeG1Vector(buf, lay.TauG1, a.TauG1, comp, p.ChunkSize)
	encodeG1Vector(buf, lay.AlphaTauG1, a.AlphaTauG1, comp, p.ChunkSize)
	encodeG1Vector(buf, lay.BetaTauG1, a.BetaTauG1, comp, p.ChunkSize)
	encodeG2Vector(buf, lay.TauG2, a.TauG2, comp, p.ChunkSize)
	g2Size := parameters.G2Size(comp)
	group.WriteG2(buf[lay.BetaG2:lay.BetaG2+g2Size], &a.BetaG2, comp)
	return nil
}

func decodeG1Vector(data []byte, off int, dst []bn254.G1Affine, comp parameters.Compression, check parameters.Correctness, chunkSize int, name string) error {
	size := parameters.G1Size(comp)
	return forEachChunk(len(dst), chunkSize, func(start, end int) error {
		return parallel(start, end, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				at := off + i*size
				if err := group.ReadG1(data[at:at+size], &dst[i], check); err != nil {
					return fmt.Errorf("%s[%d]: %w", name, i, err)
				}
			}
			return nil
		})
	})
}

func decodeG2Vector(data []byte, off int, dst []bn254.G2Affine, comp parameters.Compression, check parameters.Correctness, chunkSize int, name string) error {
	size := parameters.G2Size(comp)
	return forEachChunk(len(dst), chunkSize, func(start, end int) error {
		return parallel(start, end, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				at := off + i*size
				if err := group.ReadG2(data[at:at+size], &dst[i], check); err != nil {
					return fmt.Errorf("%s[%d]: %w", name, i, err)
				}
			}
			return nil
		})
	})
}

func encodeG1Vector(buf []byte, off int, src []bn254.G1Affine, comp parameters.Compression, chunkSize int) {
	size := parameters.G1Size(comp)
	forEachChunk(len(src), chunkSize, func(start, end int) error {
		return parallel(start, end, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				at := off + i*size
				group.WriteG1(buf[at:at+size], &src[i], comp)
			}
			return nil
		})
	})
}

func encodeG2Vector(buf []byte, off int, src []bn254.G2Affine, comp parameters.Compression, chunkSize int) {
	size := parameters.G2Size(comp)
	forEachChunk(len(src), chunkSize, func(start, end int) error {
		return parallel(start, end, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				at := off + i*size
				group.WriteG2(buf[at:at+size], &src[i], comp)
			}
			return nil
		})
	})
}
