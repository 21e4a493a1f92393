package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <device-type> <frame-code> [json-input]",
	Short: "Build a downlink frame",
	Long: "encode builds the downlink frame for a device type and frame code " +
		"(decimal or 0x prefixed). The optional input is a JSON object, e.g. " +
		`'{"readingFrequency": 2400}'.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := parseFrameCode(args[1])
		if err != nil {
			return err
		}
		input := map[string]any{}
		if len(args) == 3 {
			if input, err = parseInput(args[2]); err != nil {
				return err
			}
		}
		out, err := codec.Encode(args[0], code, network, input)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

func parseFrameCode(s string) (int, error) {
	code, err := strconv.ParseInt(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid frame code %q: %w", s, err)
	}
	return int(code), nil
}

func parseInput(s string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var input map[string]any
	if err := dec.Decode(&input); err != nil {
		return nil, fmt.Errorf("invalid input JSON: %w", err)
	}
	return input, nil
}
