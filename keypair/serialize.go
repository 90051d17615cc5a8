package keypair

import (
	"fmt"

	"github.com/zkceremony/powersoftau/group"
	"github.com/zkceremony/powersoftau/parameters"
)

// Serialize writes the public key record into buf, which must hold at least
// parameters.PublicKeySize(comp) bytes. Record order is fixed: for tau,
// alpha, beta in turn, SG1, XG2, SXG1, XR.
func (pk *PublicKey) Serialize(buf []byte, comp parameters.Compression) error {
	size := parameters.PublicKeySize(comp)
	if len(buf) < size {
		return fmt.Errorf("public key buffer is %d bytes, need %d", len(buf), size)
	}
	g1 := parameters.G1Size(comp)
	g2 := parameters.G2Size(comp)

	off := 0
	for _, p := range []*Proof{&pk.Tau, &pk.Alpha, &pk.Beta} {
		group.WriteG1(buf[off:off+g1], &p.SG1, comp)
		off += g1
		group.WriteG2(buf[off:off+g2], &p.XG2, comp)
		off += g2
		group.WriteG1(buf[off:off+g1], &p.SXG1, comp)
		off += g1
		group.WriteG2(buf[off:off+g2], &p.XR, comp)
		off += g2
	}
	return nil
}

// Deserialize reads a public key record from buf. The record is small, so
// subgroup checks always run.
func Deserialize(buf []byte, comp parameters.Compression) (*PublicKey, error) {
	size := parameters.PublicKeySize(comp)
	if len(buf) < size {
		return nil, fmt.Errorf("public key record is %d bytes, need %d", len(buf), size)
	}
	g1 := parameters.G1Size(comp)
	g2 := parameters.G2Size(comp)

	pk := new(PublicKey)
	off := 0
	for i, p := range []*Proof{&pk.Tau, &pk.Alpha, &pk.Beta} {
		if err := group.ReadG1(buf[off:off+g1], &p.SG1, parameters.CheckInput); err != nil {
			return nil, fmt.Errorf("public key record %d: %w", i, err)
		}
		off += g1
		if err := group.ReadG2(buf[off:off+g2], &p.XG2, parameters.CheckInput); err != nil {
			return nil, fmt.Errorf("public key record %d: %w", i, err)
		}
		off += g2
		if err := group.ReadG1(buf[off:off+g1], &p.SXG1, parameters.CheckInput); err != nil {
			return nil, fmt.Errorf("public key record %d: %w", i, err)
		}
		off += g1
		if err := group.ReadG2(buf[off:off+g2], &p.XR, parameters.CheckInput); err != nil {
			return nil, fmt.Errorf("public key record %d: %w", i, err)
		}
		off += g2
	}
	return pk, nil
}
