package accumulator

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkceremony/powersoftau/group"
	"github.com/zkceremony/powersoftau/keypair"
)

// VerifyTransform checks that after was obtained from before by exactly one
// honest contribution under the given public key, bound to the transcript
// hash of the before state. It never fails with an error: any mismatch,
// including a replayed public key, simply returns false.
//
// The checks are: no identity element anywhere in either state; the three
// proofs of knowledge against digest; generator pinning of index 0; same-ratio pairings tying the before/after deltas to
// the key's tau, alpha and beta; and random-linear-combination structure
// checks that every vector is a consistent power ladder of the cumulative
// tau.
func VerifyTransform(before, after *Accumulator, pk *keypair.PublicKey, digest []byte) bool {
	if before == nil || after == nil || pk == nil {
		return false
	}
	p := after.Params
	if len(before.TauG1) != p.TauPowersG1 || len(after.TauG1) != p.TauPowersG1 ||
		len(before.TauG2) != p.TauPowers || len(after.TauG2) != p.TauPowers ||
		len(before.AlphaTauG1) != p.TauPowers || len(after.AlphaTauG1) != p.TauPowers ||
		len(before.BetaTauG1) != p.TauPowers || len(after.BetaTauG1) != p.TauPowers {
		return false
	}
	if p.TauPowers < 2 {
		return false
	}

	// No legitimate state contains the identity, and every pairing below is
	// vacuously satisfied by it, so degenerate elements are rejected before
	// any same-ratio check runs.
	if containsIdentity(before) || containsIdentity(after) {
		return false
	}

	if !pk.Verify(digest) {
		return false
	}

	_, _, g1, g2 := bn254.Generators()

	// Index 0 of the tau vectors is the untouched base generator in every
	// state; anything else means the ladder convention was violated.
	if !before.TauG1[0].Equal(&g1) || !after.TauG1[0].Equal(&g1) {
		return false
	}
	if !before.TauG2[0].Equal(&g2) || !after.TauG2[0].Equal(&g2) {
		return false
	}

	// The deltas between states must match the secrets the key commits to.
	if !group.SameRatio(before.TauG1[1], after.TauG1[1], g2, pk.Tau.XG2) {
		return false
	}
	if !group.SameRatio(before.AlphaTauG1[0], after.AlphaTauG1[0], g2, pk.Alpha.XG2) {
		return false
	}
	if !group.SameRatio(before.BetaTauG1[0], after.BetaTauG1[0], g2, pk.Beta.XG2) {
		return false
	}
	// BetaG2 moved by the same beta, checked through the key's blinding pair.
	if !group.SameRatio(pk.Beta.SG1, pk.Beta.SXG1, before.BetaG2, after.BetaG2) {
		return false
	}
	// BetaG2 and BetaTauG1[0] agree on the cumulative beta.
	if !group.SameRatio(g1, after.BetaTauG1[0], g2, after.BetaG2) {
		return false
	}

	// Structure: consecutive elements of every vector are related by the
	// cumulative tau. A random linear combination compresses each whole
	// vector into a single pairing check.
	tauG2 := after.TauG2[1]
	tauG1 := after.TauG1[1]
	if !powerLadderG1(after.TauG1, g2, tauG2) {
		return false
	}
	if !powerLadderG1(after.AlphaTauG1, g2, tauG2) {
		return false
	}
	if !powerLadderG1(after.BetaTauG1, g2, tauG2) {
		return false
	}
	return powerLadderG2(after.TauG2, g1, tauG1)
}

func containsIdentity(a *Accumulator) bool {
	for i := range a.TauG1 {
		if a.TauG1[i].IsInfinity() {
			return true
		}
	}
	for i := range a.TauG2 {
		if a.TauG2[i].IsInfinity() {
			return true
		}
	}
	for i := range a.AlphaTauG1 {
		if a.AlphaTauG1[i].IsInfinity() {
			return true
		}
	}
	for i := range a.BetaTauG1 {
		if a.BetaTauG1[i].IsInfinity() {
			return true
		}
	}
	return a.BetaG2.IsInfinity()
}

func randomScalars(n int) ([]fr.Element, bool) {
	r := make([]fr.Element, n)
	for i := range r {
		if _, err := r[i].SetRandom(); err != nil {
			return nil, false
		}
	}
	return r, true
}

// powerLadderG1 checks that v[i+1] = tau * v[i] for all i, where tau is the
// hidden exponent of (g2, tauG2), by comparing random linear combinations of
// the vector against its shift.
func powerLadderG1(v []bn254.G1Affine, g2, tauG2 bn254.G2Affine) bool {
	n := len(v) - 1
	if n < 1 {
		return true
	}
	r, ok := randomScalars(n)
	if !ok {
		return false
	}
	var lo, hi bn254.G1Affine
	if _, err := lo.MultiExp(v[:n], r, ecc.MultiExpConfig{}); err != nil {
		return false
	}
	if _, err := hi.MultiExp(v[1:], r, ecc.MultiExpConfig{}); err != nil {
		return false
	}
	return group.SameRatio(lo, hi, g2, tauG2)
}

func powerLadderG2(v []bn254.G2Affine, g1, tauG1 bn254.G1Affine) bool {
	n := len(v) - 1
	if n < 1 {
		return true
	}
	r, ok := randomScalars(n)
	if !ok {
		return false
	}
	var lo, hi bn254.G2Affine
	if _, err := lo.MultiExp(v[:n], r, ecc.MultiExpConfig{}); err != nil {
		return false
	}
	if _, err := hi.MultiExp(v[1:], r, ecc.MultiExpConfig{}); err != nil {
		return false
	}
	return group.SameRatio(g1, tauG1, lo, hi)
}
