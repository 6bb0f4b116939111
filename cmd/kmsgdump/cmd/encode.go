package cmd

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/kmsg/format"
	"github.com/arloliu/kmsg/message"
)

type encodeOptions struct {
	key        string
	codec      string
	timestamp  int64
	now        bool
	baseOffset int64
	output     string
}

func newEncodeCmd(root *rootOptions) *cobra.Command {
	opts := &encodeOptions{}

	encodeCmd := &cobra.Command{
		Use:   "encode <file>",
		Short: "Build a message set from lines of text",
		Long: `Build a message set with one message per non-empty input line.
Use - to read from standard input. With a codec other than none the
messages are wrapped into a single compressed message.

Example:
  kmsgdump encode --codec gzip --key user-1 --now --out batch.bin events.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var msgOpts []message.Option
			if cmd.Flags().Changed("key") {
				msgOpts = append(msgOpts, message.WithKey([]byte(opts.key)))
			}
			switch {
			case opts.now:
				msgOpts = append(msgOpts, message.WithTime(time.Now()))
			case cmd.Flags().Changed("timestamp"):
				msgOpts = append(msgOpts, message.WithTimestamp(opts.timestamp))
			}

			data, err := buildMessageSet(input, opts, msgOpts)
			if err != nil {
				return err
			}
			if root.hex {
				data = []byte(hex.EncodeToString(data) + "\n")
			}

			if opts.output == "" || opts.output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			return nil
		},
	}

	flags := encodeCmd.Flags()
	flags.StringVar(&opts.key, "key", "", "Key of every message (absent when not set)")
	flags.StringVar(&opts.codec, "codec", "none", "Compression codec: none, gzip, snappy, lz4 (needs a timestamp) or zstd")
	flags.Int64Var(&opts.timestamp, "timestamp", 0, "Timestamp in milliseconds; selects format v1")
	flags.BoolVar(&opts.now, "now", false, "Use the current time as timestamp")
	flags.Int64Var(&opts.baseOffset, "base-offset", 0, "Offset of the first message")
	flags.StringVarP(&opts.output, "out", "o", "", "Output file (default standard output)")

	return encodeCmd
}

func buildMessageSet(input []byte, opts *encodeOptions, msgOpts []message.Option) ([]byte, error) {
	codec, err := format.ParseCodecID(opts.codec)
	if err != nil {
		return nil, err
	}

	var msgs []*message.Message
	scanner := bufio.NewScanner(bytes.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.Clone(scanner.Bytes())
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		offset := opts.baseOffset + int64(len(msgs))
		m, err := message.New(line, append(msgOpts, message.WithOffset(offset))...)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}

	set := &message.MessageSet{Messages: msgs}
	if codec != format.CodecNone && len(msgs) > 0 {
		// the wrapper carries the offset of its last member
		wrapper, err := message.Wrap(codec, msgs, message.WithWrapOffset(opts.baseOffset+int64(len(msgs)-1)))
		if err != nil {
			return nil, err
		}
		set = &message.MessageSet{Messages: []*message.Message{wrapper}}
	}

	return set.Bytes()
}
