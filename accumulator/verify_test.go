package accumulator

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/stretchr/testify/require"

	"github.com/zkceremony/powersoftau/beacon"
	"github.com/zkceremony/powersoftau/keypair"
	"github.com/zkceremony/powersoftau/parameters"
)

// contribute runs one genuine contribution over the genesis state and
// returns everything an external auditor would see.
func contribute(t *testing.T, p *parameters.Ceremony, seedByte byte) (digest []byte, response []byte, pub *keypair.PublicKey) {
	t.Helper()

	input := serializeInitial(t, p, parameters.Uncompressed)
	d := CalculateHash(input)
	digest = d[:]

	var seed [beacon.SeedSize]byte
	seed[0] = seedByte
	rng, err := beacon.NewRNG(seed)
	require.NoError(t, err)

	pub, priv, err := keypair.Generate(rng, digest)
	require.NoError(t, err)
	defer priv.Destroy()

	response = make([]byte, p.ExpectedSize(parameters.Compressed, true))
	copy(response[:parameters.HashSize], digest)
	require.NoError(t, Transform(input, response, parameters.Uncompressed, parameters.Compressed, parameters.TrustInput, priv, p))

	keyOffset := p.ExpectedSize(parameters.Compressed, false)
	require.NoError(t, pub.Serialize(response[keyOffset:], parameters.Compressed))
	return digest, response, pub
}

func TestVerifyTransformAcceptsGenuineContribution(t *testing.T) {
	p := smallParams()
	digest, response, pub := contribute(t, p, 1)

	before := NewInitial(p)
	after, err := Deserialize(response, parameters.Compressed, parameters.CheckInput, p)
	require.NoError(t, err)

	require.True(t, VerifyTransform(before, after, pub, digest))
}

func TestVerifyTransformRejectsWrongDigest(t *testing.T) {
	p := smallParams()
	digest, response, pub := contribute(t, p, 2)

	before := NewInitial(p)
	after, err := Deserialize(response, parameters.Compressed, parameters.CheckInput, p)
	require.NoError(t, err)

	other := make([]byte, len(digest))
	copy(other, digest)
	other[0] ^= 1
	require.False(t, VerifyTransform(before, after, pub, other))
}

func TestVerifyTransformRejectsForeignKey(t *testing.T) {
	p := smallParams()
	digest, response, _ := contribute(t, p, 3)
	_, _, foreign := contribute(t, p, 4)

	before := NewInitial(p)
	after, err := Deserialize(response, parameters.Compressed, parameters.CheckInput, p)
	require.NoError(t, err)

	// Same transcript, different contributor's key: the deltas no longer
	// match the key's secrets.
	require.False(t, VerifyTransform(before, after, foreign, digest))
}

func TestVerifyTransformRejectsTamperedVector(t *testing.T) {
	p := smallParams()
	digest, response, pub := contribute(t, p, 5)

	before := NewInitial(p)
	after, err := Deserialize(response, parameters.Compressed, parameters.CheckInput, p)
	require.NoError(t, err)

	// Break the power ladder without touching the checked endpoints.
	after.TauG1[3] = after.TauG1[2]
	require.False(t, VerifyTransform(before, after, pub, digest))
}

func TestVerifyTransformRejectsSkippedContribution(t *testing.T) {
	p := smallParams()
	digest, response, pub := contribute(t, p, 6)

	after, err := Deserialize(response, parameters.Compressed, parameters.CheckInput, p)
	require.NoError(t, err)

	// Claiming the response extends itself (instead of the state it was
	// really computed on) must fail even with the honest key attached.
	require.False(t, VerifyTransform(after, after, pub, digest))
}

func TestTamperedResponseIsDetected(t *testing.T) {
	p := smallParams()
	digest, response, pub := contribute(t, p, 7)
	before := NewInitial(p)

	// Flip one byte inside the first TauG1 coordinate. Depending on where
	// the flip lands the point either stops decoding or decodes to a
	// different point that fails verification; both reject the file.
	lay := p.Layout(parameters.Compressed)
	response[lay.TauG1+5] ^= 1

	after, err := Deserialize(response, parameters.Compressed, parameters.CheckInput, p)
	if err == nil {
		require.False(t, VerifyTransform(before, after, pub, digest))
	}
}

func TestVerifyTransformNilArguments(t *testing.T) {
	p := smallParams()
	digest, response, pub := contribute(t, p, 8)

	after, err := Deserialize(response, parameters.Compressed, parameters.CheckInput, p)
	require.NoError(t, err)

	require.False(t, VerifyTransform(nil, after, pub, digest))
	require.False(t, VerifyTransform(NewInitial(p), nil, pub, digest))
	require.False(t, VerifyTransform(NewInitial(p), after, nil, digest))
}

func TestVerifyTransformRejectsAllIdentityState(t *testing.T) {
	p := smallParams()
	input := serializeInitial(t, p, parameters.Uncompressed)
	d := CalculateHash(input)

	// A wiped accumulator: only the pinned generators survive, every other
	// element is the identity, and the key is the all-identity record.
	// Every pairing against the identity holds, so only explicit identity
	// rejection stands between this file and the transcript.
	_, _, g1, g2 := bn254.Generators()
	after := &Accumulator{
		Params:     p,
		TauG1:      make([]bn254.G1Affine, p.TauPowersG1),
		TauG2:      make([]bn254.G2Affine, p.TauPowers),
		AlphaTauG1: make([]bn254.G1Affine, p.TauPowers),
		BetaTauG1:  make([]bn254.G1Affine, p.TauPowers),
	}
	after.TauG1[0] = g1
	after.TauG2[0] = g2

	require.False(t, VerifyTransform(NewInitial(p), after, new(keypair.PublicKey), d[:]))

	// Still rejected when a genuine key is attached to the wiped state.
	digest, _, pub := contribute(t, p, 10)
	require.False(t, VerifyTransform(NewInitial(p), after, pub, digest))
}

func TestVerifyTransformRejectsIdentityElement(t *testing.T) {
	p := smallParams()
	digest, response, pub := contribute(t, p, 11)

	before := NewInitial(p)
	after, err := Deserialize(response, parameters.Compressed, parameters.CheckInput, p)
	require.NoError(t, err)

	// One identity planted mid-vector must sink the whole state even though
	// every endpoint the delta checks look at is intact.
	var infinity bn254.G1Affine
	genuine := after.AlphaTauG1[1]
	after.AlphaTauG1[1] = infinity
	require.False(t, VerifyTransform(before, after, pub, digest))

	after.AlphaTauG1[1] = genuine
	after.BetaG2 = bn254.G2Affine{}
	require.False(t, VerifyTransform(before, after, pub, digest))
}

func TestVerifyTransformGeneratorPinning(t *testing.T) {
	p := smallParams()
	digest, response, pub := contribute(t, p, 9)

	before := NewInitial(p)
	after, err := Deserialize(response, parameters.Compressed, parameters.CheckInput, p)
	require.NoError(t, err)

	var doubled bn254.G1Affine
	doubled.Double(&after.TauG1[0])
	after.TauG1[0] = doubled
	require.False(t, VerifyTransform(before, after, pub, digest))
}
