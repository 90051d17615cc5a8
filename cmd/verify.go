package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/edsrzf/mmap-go"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zkceremony/powersoftau/accumulator"
	"github.com/zkceremony/powersoftau/keypair"
	"github.com/zkceremony/powersoftau/parameters"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <challenge> <response> [new-challenge]",
	Short: "verify a contribution and optionally emit the next challenge file",
	Args:  cobra.RangeArgs(2, 3),
	Run:   runVerify,
}

func runVerify(cmd *cobra.Command, args []string) {
	p := ceremonyParams()

	challengeMap, closeChallenge, err := mapExisting(args[0], p.ExpectedSize(parameters.Uncompressed, false))
	if err != nil {
		log.Fatal().Err(err).Msg("opening challenge file")
	}
	defer closeChallenge()

	responseMap, closeResponse, err := mapExisting(args[1], p.ExpectedSize(parameters.Compressed, true))
	if err != nil {
		log.Fatal().Err(err).Msg("opening response file")
	}
	defer closeResponse()

	chainHash := accumulator.CalculateHash(challengeMap)
	if !bytes.Equal(responseMap[:parameters.HashSize], chainHash[:]) {
		log.Fatal().
			Str("challenge_hash", hexutil.Encode(chainHash[:])).
			Str("response_claims", hexutil.Encode(responseMap[:parameters.HashSize])).
			Msg("response was not computed on top of this challenge")
	}

	log.Info().Msg("decoding accumulators")
	start := time.Now()
	// The challenge came from this verifier's lineage; the response is
	// untrusted and gets full correctness checks.
	before, err := accumulator.Deserialize(challengeMap, parameters.Uncompressed, parameters.TrustInput, p)
	if err != nil {
		log.Fatal().Err(err).Msg("decoding challenge accumulator")
	}
	after, err := accumulator.Deserialize(responseMap, parameters.Compressed, parameters.CheckInput, p)
	if err != nil {
		log.Fatal().Err(err).Msg("decoding response accumulator")
	}
	pk, err := keypair.Deserialize(responseMap[p.ExpectedSize(parameters.Compressed, false):], parameters.Compressed)
	if err != nil {
		log.Fatal().Err(err).Msg("decoding public key")
	}
	log.Info().Msg("decoded, time: " + time.Since(start).String())

	if !accumulator.VerifyTransform(before, after, pk, chainHash[:]) {
		log.Fatal().Msg("contribution rejected")
	}
	log.Info().Msg("contribution verified")

	if len(args) == 3 {
		if err := writeNextChallenge(args[2], after, responseMap, p); err != nil {
			log.Fatal().Err(err).Msg("writing next challenge")
		}
	}
}

// writeNextChallenge decompresses a verified response into the uncompressed
// challenge file for the next participant, prefixed with the response hash.
func writeNextChallenge(path string, after *accumulator.Accumulator, response []byte, p *parameters.Ceremony) error {
	size := p.ExpectedSize(parameters.Uncompressed, false)

	out, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.Truncate(int64(size)); err != nil {
		return &accumulator.IoError{Op: "sizing new challenge file", Err: err}
	}

	m, err := mmap.Map(out, mmap.RDWR, 0)
	if err != nil {
		return &accumulator.IoError{Op: "mapping new challenge file", Err: err}
	}
	defer m.Unmap()

	responseDigest := accumulator.CalculateHash(response)
	copy(m[:parameters.HashSize], responseDigest[:])
	if err := after.Serialize(m, parameters.Uncompressed); err != nil {
		return err
	}
	if err := m.Flush(); err != nil {
		return &accumulator.IoError{Op: "flushing new challenge file", Err: err}
	}

	digest := accumulator.CalculateHash(m)
	log.Info().Str("hash", hexutil.Encode(digest[:])).Msg("next challenge written")
	return nil
}

// mapExisting maps an existing file read-only after the fatal exact-size
// check.
func mapExisting(path string, expected int) (mmap.MMap, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, &accumulator.IoError{Op: "stat " + path, Err: err}
	}
	if st.Size() != int64(expected) {
		f.Close()
		return nil, nil, fmt.Errorf("%s is %d bytes, expected %d", path, st.Size(), expected)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, &accumulator.IoError{Op: "mapping " + path, Err: err}
	}
	return m, func() {
		m.Unmap()
		f.Close()
	}, nil
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
