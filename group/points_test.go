package group

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/stretchr/testify/require"

	"github.com/zkceremony/powersoftau/parameters"
)

func TestG1RoundTrip(t *testing.T) {
	_, _, g1, _ := bn254.Generators()
	var p bn254.G1Affine
	p.ScalarMultiplication(&g1, big.NewInt(12345))

	for _, comp := range []parameters.Compression{parameters.Compressed, parameters.Uncompressed} {
		buf := make([]byte, parameters.G1Size(comp))
		WriteG1(buf, &p, comp)

		var got bn254.G1Affine
		require.NoError(t, ReadG1(buf, &got, parameters.CheckInput), comp.String())
		require.True(t, p.Equal(&got), comp.String())
	}
}

func TestG2RoundTrip(t *testing.T) {
	_, _, _, g2 := bn254.Generators()
	var p bn254.G2Affine
	p.ScalarMultiplication(&g2, big.NewInt(98765))

	for _, comp := range []parameters.Compression{parameters.Compressed, parameters.Uncompressed} {
		buf := make([]byte, parameters.G2Size(comp))
		WriteG2(buf, &p, comp)

		var got bn254.G2Affine
		require.NoError(t, ReadG2(buf, &got, parameters.CheckInput), comp.String())
		require.True(t, p.Equal(&got), comp.String())
	}
}

func TestReadG1TruncatedInput(t *testing.T) {
	_, _, g1, _ := bn254.Generators()
	buf := make([]byte, parameters.G1Size(parameters.Uncompressed))
	WriteG1(buf, &g1, parameters.Uncompressed)

	var got bn254.G1Affine
	err := ReadG1(buf[:16], &got, parameters.TrustInput)
	require.Error(t, err)

	var decodeErr *PointDecodeError
	require.True(t, errors.As(err, &decodeErr))
}

func TestReadRejectsIdentityWhenChecked(t *testing.T) {
	var infG1 bn254.G1Affine
	var infG2 bn254.G2Affine
	var identityErr *IdentityError

	for _, comp := range []parameters.Compression{parameters.Compressed, parameters.Uncompressed} {
		buf1 := make([]byte, parameters.G1Size(comp))
		WriteG1(buf1, &infG1, comp)

		var gotG1 bn254.G1Affine
		err := ReadG1(buf1, &gotG1, parameters.CheckInput)
		require.True(t, errors.As(err, &identityErr), comp.String())

		// Trusted reads still pass the identity through; the transform
		// rejects it with a positioned error instead.
		require.NoError(t, ReadG1(buf1, &gotG1, parameters.TrustInput), comp.String())
		require.True(t, gotG1.IsInfinity(), comp.String())

		buf2 := make([]byte, parameters.G2Size(comp))
		WriteG2(buf2, &infG2, comp)

		var gotG2 bn254.G2Affine
		err = ReadG2(buf2, &gotG2, parameters.CheckInput)
		require.True(t, errors.As(err, &identityErr), comp.String())
		require.NoError(t, ReadG2(buf2, &gotG2, parameters.TrustInput), comp.String())
		require.True(t, gotG2.IsInfinity(), comp.String())
	}
}

// nonSubgroupG2Bytes searches small compressed x-coordinates for one that
// decodes to a curve point. G2's cofactor is enormous, so any such point is
// outside the prime-order subgroup except with negligible probability.
func nonSubgroupG2Bytes(t *testing.T) []byte {
	t.Helper()
	buf := make([]byte, parameters.G2Size(parameters.Compressed))
	var pt bn254.G2Affine
	for x := byte(1); x < 255; x++ {
		for i := range buf {
			buf[i] = 0
		}
		buf[0] = 0x80 // compressed flag, smaller y
		buf[len(buf)-1] = x
		if err := ReadG2(buf, &pt, parameters.TrustInput); err == nil {
			return buf
		}
	}
	t.Fatal("no decodable x-coordinate found")
	return nil
}

func TestReadG2RejectsNonSubgroupPoint(t *testing.T) {
	buf := nonSubgroupG2Bytes(t)

	var pt bn254.G2Affine
	err := ReadG2(buf, &pt, parameters.CheckInput)
	require.Error(t, err)

	var subgroupErr *SubgroupError
	require.True(t, errors.As(err, &subgroupErr))
}

func TestSameRatio(t *testing.T) {
	_, _, g1, g2 := bn254.Generators()
	x := big.NewInt(7)

	var a2 bn254.G1Affine
	a2.ScalarMultiplication(&g1, x)
	var b2 bn254.G2Affine
	b2.ScalarMultiplication(&g2, x)

	require.True(t, SameRatio(g1, a2, g2, b2))

	var wrong bn254.G2Affine
	wrong.ScalarMultiplication(&g2, big.NewInt(8))
	require.False(t, SameRatio(g1, a2, g2, wrong))
}
