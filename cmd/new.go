package cmd

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zkceremony/powersoftau/accumulator"
	"github.com/zkceremony/powersoftau/parameters"
	"github.com/zkceremony/powersoftau/transcript"
)

var newCmd = &cobra.Command{
	Use:   "new <challenge>",
	Short: "write the genesis challenge file for a fresh ceremony",
	Args:  cobra.ExactArgs(1),
	Run:   runNew,
}

func runNew(cmd *cobra.Command, args []string) {
	p := ceremonyParams()
	size := p.ExpectedSize(parameters.Uncompressed, false)

	out, err := os.OpenFile(args[0], os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		log.Fatal().Err(err).Msg("creating challenge file")
	}
	defer out.Close()
	if err := out.Truncate(int64(size)); err != nil {
		log.Fatal().Err(err).Msg("sizing challenge file")
	}

	m, err := mmap.Map(out, mmap.RDWR, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("mapping challenge file")
	}
	defer m.Unmap()

	blank := transcript.BlankHash()
	copy(m[:parameters.HashSize], blank[:])

	if err := accumulator.NewInitial(p).Serialize(m, parameters.Uncompressed); err != nil {
		log.Fatal().Err(err).Msg("writing genesis accumulator")
	}
	if err := m.Flush(); err != nil {
		log.Fatal().Err(err).Msg("flushing challenge file")
	}

	digest := accumulator.CalculateHash(m)
	log.Info().Uint("power", p.Power).Str("hash", hexutil.Encode(digest[:])).Msg("genesis challenge written")
}

func init() {
	rootCmd.AddCommand(newCmd)
}
