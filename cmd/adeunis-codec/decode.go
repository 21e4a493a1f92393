package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bkkIoT/iotAdeunis/pkg/adeunis"
)

var (
	decodeCmd = &cobra.Command{
		Use:   "decode [hex]",
		Short: "Decode an uplink frame",
		Long: "decode interprets one uplink frame. Without an argument it reads frames " +
			"line by line from stdin, keeping device state between lines. Spaces, '|' " +
			"and '_' between digits are ignored.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				return runInteractive(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return runDecode(ctx, cmd.OutOrStdout(), args[0])
		},
	}

	decodeDeviceType    string
	decodeConfiguration string
)

func init() {
	decodeCmd.Flags().StringVar(&decodeDeviceType, "device-type", "",
		"decode statelessly as this device type (with --configuration)")
	decodeCmd.Flags().StringVar(&decodeConfiguration, "configuration", "",
		"decode statelessly against this configuration frame (hex)")
}

func runInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	logrus.Info("adeunis-codec decode mode. Paste a hex frame and press Enter (Ctrl+D to exit).")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := stripSeparators(scanner.Text())
		if line == "" {
			continue
		}
		if err := runDecode(ctx, out, line); err != nil {
			logrus.WithError(err).Error("failed to decode frame")
		}
	}
	return scanner.Err()
}

func runDecode(ctx context.Context, out io.Writer, raw string) error {
	raw = stripSeparators(raw)
	var (
		result adeunis.Content
		err    error
	)
	if decodeDeviceType != "" || decodeConfiguration != "" {
		cfgHex := stripSeparators(decodeConfiguration)
		result = codec.DecodeWithConfiguration(raw, cfgHex, decodeDeviceType, network)
	} else {
		result, err = codec.Decode(ctx, raw, adeunis.DecodeOptions{DeviceID: deviceID, Network: network})
		if err != nil {
			return err
		}
	}
	return printContent(out, result)
}

// stripSeparators drops the whitespace, '|' and '_' people put between bytes
// when copying frames from network consoles.
func stripSeparators(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '|' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
