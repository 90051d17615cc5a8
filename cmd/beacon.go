package cmd

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zkceremony/powersoftau/beacon"
	"github.com/zkceremony/powersoftau/parameters"
)

var (
	fSeed   string
	fRounds uint
)

var beaconCmd = &cobra.Command{
	Use:   "beacon <challenge> <response>",
	Short: "compute the ceremony's closing contribution from a public randomness beacon",
	Long: "Derives the contribution randomness from a public seed (for example a fresh\n" +
		"block hash) by 2^rounds rounds of hashing, printing checkpoints so observers\n" +
		"can spot-check the chain.",
	Args: cobra.ExactArgs(2),
	Run:  runBeacon,
}

func runBeacon(cmd *cobra.Command, args []string) {
	seedBytes, err := hex.DecodeString(strings.TrimPrefix(fSeed, "0x"))
	if err != nil {
		log.Fatal().Err(err).Msg("decoding beacon seed")
	}
	if len(seedBytes) != beacon.SeedSize {
		log.Fatal().Int("bytes", len(seedBytes)).Msgf("beacon seed must be %d bytes", beacon.SeedSize)
	}
	var seed [beacon.SeedSize]byte
	copy(seed[:], seedBytes)

	final, checkpoints := beacon.Derive(seed, fRounds)
	for _, cp := range checkpoints {
		log.Info().Uint64("iteration", cp.Iteration).Str("state", hexutil.Encode(cp.State[:])).Msg("beacon checkpoint")
	}
	log.Info().Str("seed", hexutil.Encode(final[:])).Msg("beacon rng seed derived")

	rng, err := beacon.NewRNG(final)
	if err != nil {
		log.Fatal().Err(err).Msg("keying beacon rng")
	}
	// The beacon runs on distributor-verified input, so subgroup checks are
	// skipped for speed.
	err = runContribution(args[0], args[1], rng, parameters.Uncompressed, parameters.Compressed, parameters.TrustInput)
	if err != nil {
		log.Fatal().Err(err).Msg("beacon contribution failed")
	}
}

func init() {
	beaconCmd.Flags().StringVar(&fSeed, "seed", "", "public beacon seed, 32 bytes of hex")
	beaconCmd.Flags().UintVar(&fRounds, "rounds", 10, "log2 of the number of hash iterations")
	beaconCmd.MarkFlagRequired("seed")
	rootCmd.AddCommand(beaconCmd)
}
