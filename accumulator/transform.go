package accumulator

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkceremony/powersoftau/group"
	"github.com/zkceremony/powersoftau/keypair"
	"github.com/zkceremony/powersoftau/parameters"
)

// Transform applies one contribution to a serialized accumulator: element i
// of the tau vectors is multiplied by tau^i, the alpha and beta vectors by
// alpha*tau^i and beta*tau^i, and BetaG2 by beta once. Input and output are
// whole ceremony files (the transcript prefix and any trailing public key
// bytes are left alone) and may use different encodings.
//
// Vectors are walked in ChunkSize chunks; within a chunk, workers own
// disjoint index ranges of the shared read-only input and write disjoint
// byte ranges of the output, so a failure leaves the output consistent up
// through the last fully written chunk.
func Transform(input, output []byte, inComp, outComp parameters.Compression, check parameters.Correctness, key *keypair.PrivateKey, p *parameters.Ceremony) error {
	if err := checkFileSize(len(input), inComp, p); err != nil {
		return err
	}
	if err := checkFileSize(len(output), outComp, p); err != nil {
		return err
	}
	inLay := p.Layout(inComp)
	outLay := p.Layout(outComp)

	err := transformG1(vectorArgs{
		input: input, output: output,
		inOff: inLay.TauG1, outOff: outLay.TauG1,
		count:  p.TauPowersG1,
		inComp: inComp, outComp: outComp, check: check,
		chunkSize: p.ChunkSize,
		name:      "tau_g1",
	}, &key.Tau, nil)
	if err != nil {
		return err
	}

	err = transformG1(vectorArgs{
		input: input, output: output,
		inOff: inLay.AlphaTauG1, outOff: outLay.AlphaTauG1,
		count:  p.TauPowers,
		inComp: inComp, outComp: outComp, check: check,
		chunkSize: p.ChunkSize,
		name:      "alpha_tau_g1",
	}, &key.Tau, &key.Alpha)
	if err != nil {
		return err
	}

	err = transformG1(vectorArgs{
		input: input, output: output,
		inOff: inLay.BetaTauG1, outOff: outLay.BetaTauG1,
		count:  p.TauPowers,
		inComp: inComp, outComp: outComp, check: check,
		chunkSize: p.ChunkSize,
		name:      "beta_tau_g1",
	}, &key.Tau, &key.Beta)
	if err != nil {
		return err
	}

	err = transformG2(vectorArgs{
		input: input, output: output,
		inOff: inLay.TauG2, outOff: outLay.TauG2,
		count:  p.TauPowers,
		inComp: inComp, outComp: outComp, check: check,
		chunkSize: p.ChunkSize,
		name:      "tau_g2",
	}, &key.Tau)
	if err != nil {
		return err
	}

	// BetaG2 is a single element multiplied by beta once.
	g2In := parameters.G2Size(inComp)
	g2Out := parameters.G2Size(outComp)
	var betaG2 bn254.G2Affine
	if err := group.ReadG2(input[inLay.BetaG2:inLay.BetaG2+g2In], &betaG2, check); err != nil {
		return fmt.Errorf("beta_g2: %w", err)
	}
	if betaG2.IsInfinity() {
		return &ArithmeticError{Vector: "beta_g2", Index: 0}
	}
	var betaBig big.Int
	betaG2.ScalarMultiplication(&betaG2, key.Beta.BigInt(&betaBig))
	group.WriteG2(output[outLay.BetaG2:outLay.BetaG2+g2Out], &betaG2, outComp)
	betaBig.SetInt64(0)
	return nil
}

type vectorArgs struct {
	input, output  []byte
	inOff, outOff  int
	count          int
	inComp         parameters.Compression
	outComp        parameters.Compression
	check          parameters.Correctness
	chunkSize      int
	name           string
}

// transformG1 multiplies element i by coeff*base^i (coeff nil means 1).
// Each worker seeds its own power ladder with one Exp, then steps it.
func transformG1(a vectorArgs, base, coeff *fr.Element) error {
	inSize := parameters.G1Size(a.inComp)
	outSize := parameters.G1Size(a.outComp)

	return forEachChunk(a.count, a.chunkSize, func(start, end int) error {
		return parallel(start, end, func(lo, hi int) error {
			var sc fr.Element
			var scBig big.Int
			// Scrub on every exit, error returns included.
			defer func() {
				sc.SetZero()
				scBig.SetInt64(0)
			}()
			sc.Exp(*base, big.NewInt(int64(lo)))
			if coeff != nil {
				sc.Mul(&sc, coeff)
			}
			var pt bn254.G1Affine
			for i := lo; i < hi; i++ {
				in := a.inOff + i*inSize
				if err := group.ReadG1(a.input[in:in+inSize], &pt, a.check); err != nil {
					return fmt.Errorf("%s[%d]: %w", a.name, i, err)
				}
				if pt.IsInfinity() {
					return &ArithmeticError{Vector: a.name, Index: i}
				}
				pt.ScalarMultiplication(&pt, sc.BigInt(&scBig))
				out := a.outOff + i*outSize
				group.WriteG1(a.output[out:out+outSize], &pt, a.outComp)
				if i+1 < hi {
					sc.Mul(&sc, base)
				}
			}
			return nil
		})
	})
}

func transformG2(a vectorArgs, base *fr.Element) error {
	inSize := parameters.G2Size(a.inComp)
	outSize := parameters.G2Size(a.outComp)

	return forEachChunk(a.count, a.chunkSize, func(start, end int) error {
		return parallel(start, end, func(lo, hi int) error {
			var sc fr.Element
			var scBig big.Int
			defer func() {
				sc.SetZero()
				scBig.SetInt64(0)
			}()
			sc.Exp(*base, big.NewInt(int64(lo)))
			var pt bn254.G2Affine
			for i := lo; i < hi; i++ {
				in := a.inOff + i*inSize
				if err := group.ReadG2(a.input[in:in+inSize], &pt, a.check); err != nil {
					return fmt.Errorf("%s[%d]: %w", a.name, i, err)
				}
				if pt.IsInfinity() {
					return &ArithmeticError{Vector: a.name, Index: i}
				}
				pt.ScalarMultiplication(&pt, sc.BigInt(&scBig))
				out := a.outOff + i*outSize
				group.WriteG2(a.output[out:out+outSize], &pt, a.outComp)
				if i+1 < hi {
					sc.Mul(&sc, base)
				}
			}
			return nil
		})
	})
}
