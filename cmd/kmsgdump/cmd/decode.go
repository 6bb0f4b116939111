package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arloliu/kmsg/message"
)

type decodeOptions struct {
	partial  bool
	flatten  bool
	noVerify bool
	values   bool
}

func newDecodeCmd(root *rootOptions) *cobra.Command {
	opts := &decodeOptions{}

	decodeCmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a message set",
		Long: `Decode a message set and print one line per message.
Use - to read from standard input.

Example:
  kmsgdump decode --flatten fetch.bin
  kmsgdump --hex decode --partial - < fetch.hex`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			if root.hex {
				if data, err = decodeHex(data); err != nil {
					return err
				}
			}

			return runDecode(cmd.OutOrStdout(), data, opts)
		},
	}

	flags := decodeCmd.Flags()
	flags.BoolVar(&opts.partial, "partial", false, "Drop a truncated trailing message, as in fetch responses")
	flags.BoolVar(&opts.flatten, "flatten", false, "Expand compressed messages into their members")
	flags.BoolVar(&opts.noVerify, "no-verify-crc", false, "Accept messages with a checksum mismatch")
	flags.BoolVar(&opts.values, "values", false, "Print keys and values")

	return decodeCmd
}

func runDecode(out io.Writer, data []byte, opts *decodeOptions) error {
	var decodeOpts []message.DecodeOption
	if opts.partial {
		decodeOpts = append(decodeOpts, message.WithPartialTrailing())
	}
	if opts.noVerify {
		decodeOpts = append(decodeOpts, message.WithoutChecksumVerification())
	}

	set, err := message.ParseMessageSet(data, decodeOpts...)
	if err != nil {
		return fmt.Errorf("failed to decode message set: %w", err)
	}

	msgs := set.Messages
	if opts.flatten {
		if msgs, err = set.Flatten(decodeOpts...); err != nil {
			return fmt.Errorf("failed to expand compressed messages: %w", err)
		}
	}

	for _, m := range msgs {
		fmt.Fprintln(out, m)
		if opts.values {
			fmt.Fprintf(out, "  key=%q value=%q\n", m.Key(), m.Value())
		}
	}

	fmt.Fprintf(out, "%d messages, %d bytes", len(msgs), len(data))
	if set.PartialTrailingMessage {
		fmt.Fprint(out, ", truncated trailing message dropped")
	}
	fmt.Fprintln(out)

	return nil
}
