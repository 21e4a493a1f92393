package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	setTypeCmd = &cobra.Command{
		Use:   "set-type <device-type>",
		Short: "Record the device type of --device-id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := codec.SetDeviceType(cmd.Context(), args[0], deviceID); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"device_id": deviceID, "device_type": args[0]}).Info("device type stored")
			return nil
		},
	}

	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Forget the stored state of --device-id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := codec.ClearStoredData(cmd.Context(), deviceID); err != nil {
				return err
			}
			logrus.WithField("device_id", deviceID).Info("device state cleared")
			return nil
		},
	}
)
