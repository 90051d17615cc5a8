package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/edsrzf/mmap-go"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog/log"

	"github.com/zkceremony/powersoftau/accumulator"
	"github.com/zkceremony/powersoftau/keypair"
	"github.com/zkceremony/powersoftau/parameters"
)

// runContribution is the shared pipeline of the contribute and beacon
// commands: map the challenge, hash it, build a keypair bound to that hash,
// transform into the mapped response, append the public key, report the
// response hash for the next participant.
func runContribution(challengePath, responsePath string, rng io.Reader, inComp, outComp parameters.Compression, check parameters.Correctness) error {
	p := ceremonyParams()

	in, err := os.Open(challengePath)
	if err != nil {
		return fmt.Errorf("opening challenge file: %w", err)
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return &accumulator.IoError{Op: "stat challenge file", Err: err}
	}
	expected := p.ExpectedSize(inComp, false)
	if st.Size() != int64(expected) {
		return fmt.Errorf("challenge file is %d bytes, expected %d for power %d", st.Size(), expected, p.Power)
	}

	inMap, err := mmap.Map(in, mmap.RDONLY, 0)
	if err != nil {
		return &accumulator.IoError{Op: "mapping challenge file", Err: err}
	}
	defer inMap.Unmap()

	out, err := os.OpenFile(responsePath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating response file: %w", err)
	}
	defer out.Close()

	outSize := p.ExpectedSize(outComp, true)
	if err := out.Truncate(int64(outSize)); err != nil {
		return &accumulator.IoError{Op: "sizing response file", Err: err}
	}
	outMap, err := mmap.Map(out, mmap.RDWR, 0)
	if err != nil {
		return &accumulator.IoError{Op: "mapping response file", Err: err}
	}
	defer outMap.Unmap()

	digest := accumulator.CalculateHash(inMap)
	log.Info().Str("hash", hexutil.Encode(digest[:])).Msg("contributing on top of challenge")
	copy(outMap[:parameters.HashSize], digest[:])

	pub, priv, err := keypair.Generate(rng, digest[:])
	if err != nil {
		return fmt.Errorf("generating contribution keypair: %w", err)
	}

	log.Info().Msg("computing contribution, this can take a while")
	start := time.Now()
	err = accumulator.Transform(inMap, outMap, inComp, outComp, check, priv, p)
	priv.Destroy()
	if err != nil {
		return fmt.Errorf("transforming accumulator: %w", err)
	}
	log.Info().Msg("transformation done, time: " + time.Since(start).String())

	keyOffset := p.ExpectedSize(outComp, false)
	if err := pub.Serialize(outMap[keyOffset:], outComp); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}
	if err := outMap.Flush(); err != nil {
		return &accumulator.IoError{Op: "flushing response file", Err: err}
	}

	responseDigest := accumulator.CalculateHash(outMap)
	log.Info().Str("hash", hexutil.Encode(responseDigest[:])).Msg("response written, pass this hash to the next participant")
	return nil
}
