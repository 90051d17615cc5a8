// Package parameters carries the immutable sizing of one ceremony instance:
// the power bound, the derived vector lengths and the exact byte layout of
// challenge and response files. All core operations take a *Ceremony so the
// same binary can serve ceremonies of different sizes.
package parameters

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// Compression selects the point encoding used in a ceremony file. The choice
// is fixed per deployment variant and is not self-describing in the file.
type Compression int

const (
	Uncompressed Compression = iota
	Compressed
)

func (c Compression) String() string {
	if c == Compressed {
		return "compressed"
	}
	return "uncompressed"
}

// Correctness selects whether decoded points are checked for membership in
// the prime-order subgroup. Skipping the check is a documented speed/trust
// tradeoff for inputs that already passed verification.
type Correctness int

const (
	TrustInput Correctness = iota
	CheckInput
)

const (
	// HashSize is the width of the transcript hash that prefixes every
	// ceremony file. A cross-version compatibility constant.
	HashSize = 32

	// DefaultPower matches the original BN254 ceremony.
	DefaultPower = 21

	// DefaultChunkSize bounds how many vector elements are resident at once.
	DefaultChunkSize = 1 << 21
)

// G1Size returns the encoded size of a G1 point in the given mode.
func G1Size(c Compression) int {
	if c == Compressed {
		return bn254.SizeOfG1AffineCompressed
	}
	return bn254.SizeOfG1AffineUncompressed
}

// G2Size returns the encoded size of a G2 point in the given mode.
func G2Size(c Compression) int {
	if c == Compressed {
		return bn254.SizeOfG2AffineCompressed
	}
	return bn254.SizeOfG2AffineUncompressed
}

// PublicKeySize is the byte size of the public key record appended to a
// response: for each of tau, alpha, beta two G1 and two G2 points.
func PublicKeySize(c Compression) int {
	return 3 * (2*G1Size(c) + 2*G2Size(c))
}

// Ceremony is the sizing configuration threaded through all core operations.
type Ceremony struct {
	// Power is the log2 bound on the number of tau powers.
	Power uint

	// TauPowers is 2^Power, the length of TauG2, AlphaTauG1 and BetaTauG1.
	TauPowers int

	// TauPowersG1 is 2^(Power+1)-1, the length of TauG1. The extra powers
	// are what phase-2 H-query computation needs.
	TauPowersG1 int

	// ChunkSize bounds how many elements a batch reads, transforms and
	// writes at a time, keeping peak memory independent of the power.
	ChunkSize int
}

// New returns the ceremony sizing for 2^power tau powers.
func New(power uint) *Ceremony {
	return NewWithChunkSize(power, DefaultChunkSize)
}

// NewWithChunkSize is New with an explicit batch size, mainly for tests and
// memory tuning.
func NewWithChunkSize(power uint, chunkSize int) *Ceremony {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &Ceremony{
		Power:       power,
		TauPowers:   1 << power,
		TauPowersG1: (1 << (power + 1)) - 1,
		ChunkSize:   chunkSize,
	}
}

// Layout holds the byte offsets of the accumulator sections within a ceremony
// file, after the transcript hash prefix. Field order on disk is fixed:
// TauG1, AlphaTauG1, BetaTauG1, TauG2, BetaG2.
type Layout struct {
	TauG1      int
	AlphaTauG1 int
	BetaTauG1  int
	TauG2      int
	BetaG2     int
	End        int
}

// Layout returns the section offsets for the given encoding mode.
func (c *Ceremony) Layout(comp Compression) Layout {
	g1 := G1Size(comp)
	g2 := G2Size(comp)
	var l Layout
	l.TauG1 = HashSize
	l.AlphaTauG1 = l.TauG1 + c.TauPowersG1*g1
	l.BetaTauG1 = l.AlphaTauG1 + c.TauPowers*g1
	l.TauG2 = l.BetaTauG1 + c.TauPowers*g1
	l.BetaG2 = l.TauG2 + c.TauPowers*g2
	l.End = l.BetaG2 + g2
	return l
}

// ExpectedSize is the exact byte size of a ceremony file in the given mode,
// with or without the trailing public key record. File length must equal this
// before any parsing happens.
func (c *Ceremony) ExpectedSize(comp Compression, withKey bool) int {
	n := c.Layout(comp).End
	if withKey {
		n += PublicKeySize(comp)
	}
	return n
}
