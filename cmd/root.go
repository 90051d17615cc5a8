package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zkceremony/powersoftau/parameters"
)

var (
	fPower     uint
	fChunkSize int
)

var rootCmd = &cobra.Command{
	Use:   "powersoftau",
	Short: "contribute to and verify a powers of tau trusted-setup ceremony",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	rootCmd.PersistentFlags().UintVar(&fPower, "power", parameters.DefaultPower, "log2 of the number of tau powers in the ceremony")
	rootCmd.PersistentFlags().IntVar(&fChunkSize, "chunk-size", parameters.DefaultChunkSize, "elements processed per batch")
}

func ceremonyParams() *parameters.Ceremony {
	return parameters.NewWithChunkSize(fPower, fChunkSize)
}
