package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	hex bool
}

// NewRootCmd builds the kmsgdump command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "kmsgdump",
		Short: "Inspect and build v0/v1 message sets",
		Long: `kmsgdump decodes v0/v1 log message sets, as found in produce requests,
fetch responses and log segments, and builds new ones from line-delimited input.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&opts.hex, "hex", false, "Read and write hex text instead of raw bytes")

	rootCmd.AddCommand(newDecodeCmd(opts), newEncodeCmd(opts))

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// readInput reads path, or standard input for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return data, nil
}

func decodeHex(data []byte) ([]byte, error) {
	raw, err := hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}

	return raw, nil
}
