package cmd

import (
	"crypto/rand"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zkceremony/powersoftau/beacon"
	"github.com/zkceremony/powersoftau/parameters"
	"github.com/zkceremony/powersoftau/transcript"
)

var fEntropy string

var contributeCmd = &cobra.Command{
	Use:   "contribute <challenge> <response>",
	Short: "compute a contribution on top of a challenge file",
	Args:  cobra.ExactArgs(2),
	Run:   contribute,
}

func contribute(cmd *cobra.Command, args []string) {
	rng, err := contributorRNG(fEntropy)
	if err != nil {
		log.Fatal().Err(err).Msg("building contributor rng")
	}
	// The challenge was produced by a verifier, so subgroup checks on the
	// input are skipped for speed.
	err = runContribution(args[0], args[1], rng, parameters.Uncompressed, parameters.Compressed, parameters.TrustInput)
	if err != nil {
		log.Fatal().Err(err).Msg("contribution failed")
	}
}

// contributorRNG mixes OS entropy with whatever the operator typed into a
// deterministic stream. The typed entropy is a hedge against a weak system
// generator, not a replacement for it.
func contributorRNG(extra string) (io.Reader, error) {
	var sys [32]byte
	if _, err := rand.Read(sys[:]); err != nil {
		return nil, err
	}
	h := transcript.New()
	h.Write(sys[:])
	h.Write([]byte(extra))

	var seed [beacon.SeedSize]byte
	copy(seed[:], h.Sum(nil))
	return beacon.NewRNG(seed)
}

func init() {
	contributeCmd.Flags().StringVar(&fEntropy, "entropy", "", "additional operator-provided entropy")
	rootCmd.AddCommand(contributeCmd)
}
