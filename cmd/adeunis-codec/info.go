package main

import (
	"github.com/spf13/cobra"
)

var (
	inputsCmd = &cobra.Command{
		Use:   "inputs <device-type> <frame-code>",
		Short: "Describe the inputs of a downlink frame",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := parseFrameCode(args[1])
			if err != nil {
				return err
			}
			fields, err := codec.GetInputDataTypes(args[0], code)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fields)
		},
	}

	supportedCmd = &cobra.Command{
		Use:   "supported",
		Short: "List supported (device type, frame code) pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"decode": codec.GetSupportedDecode(),
				"encode": codec.GetSupportedEncode(),
			})
		},
	}

	findTypesCmd = &cobra.Command{
		Use:   "find-types <hex>",
		Short: "List the device types that can interpret a frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), codec.FindDeviceTypes(stripSeparators(args[0])))
		},
	}
)
