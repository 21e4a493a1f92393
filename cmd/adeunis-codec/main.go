package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bkkIoT/iotAdeunis/internal/options"
	"github.com/bkkIoT/iotAdeunis/pkg/adeunis"
)

var (
	rootCmd = &cobra.Command{
		Use:   "adeunis-codec",
		Short: "Decode and encode sensor frames",
		Long: "adeunis-codec decodes uplink frames and encodes downlink frames of the " +
			"LoRaWAN and Sigfox sensor range, keeping per-device state between calls.",
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
	}

	configPath string
	flags      options.Config
	deviceID   string

	cfg          options.Config
	network      adeunis.Network
	codec        *adeunis.Codec
	closeStorage = func() error { return nil }
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML configuration file")
	pf.StringVar(&flags.Store.Backend, "store", "", "state backend: memory, file or sqlite")
	pf.StringVar(&flags.Store.Path, "store-path", "", "state file or database path")
	pf.StringVar(&flags.Output, "format", "", "output format: json or cbor")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.Network, "network", "", "network: lora868, sigfox or unknown")
	pf.StringVar(&deviceID, "device-id", "", "device identifier keying the stored state")

	rootCmd.AddCommand(decodeCmd, encodeCmd, inputsCmd, supportedCmd, findTypesCmd, setTypeCmd, clearCmd)
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}

// setup merges the configuration file with the command line flags and
// opens the codec.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := options.Load(configPath)
	if err != nil {
		return err
	}
	pf := cmd.Flags()
	if pf.Changed("store") {
		loaded.Store.Backend = flags.Store.Backend
	}
	if pf.Changed("store-path") {
		loaded.Store.Path = flags.Store.Path
	}
	if pf.Changed("format") {
		loaded.Output = flags.Output
	}
	if pf.Changed("log-level") {
		loaded.LogLevel = flags.LogLevel
	}
	if pf.Changed("network") {
		loaded.Network = flags.Network
	}
	loaded.ApplyDefaults()
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	level, _ := cfg.Level()
	logrus.SetLevel(level)
	network, _ = cfg.ParsedNetwork()

	storage, closeFn, err := options.OpenStorage(cfg.Store, logrus.StandardLogger())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	closeStorage = closeFn
	codec = adeunis.NewCodec(adeunis.Options{Storage: storage, Logger: logrus.StandardLogger()})
	logrus.WithFields(logrus.Fields{
		"store":   cfg.Store.Backend,
		"network": network,
		"format":  cfg.Output,
	}).Debug("codec ready")
	return nil
}

func teardown(*cobra.Command, []string) error {
	if err := closeStorage(); err != nil {
		logrus.WithError(err).Warn("failed to close store")
	}
	return nil
}

// printContent writes c as indented JSON or as hex encoded CBOR.
func printContent(w io.Writer, c adeunis.Content) error {
	if cfg.Output == options.OutputCBOR {
		data, err := c.MarshalCBOR()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, hex.EncodeToString(data))
		return err
	}
	return printJSON(w, c)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
