// btc-p2pkh CLI - legacy Bitcoin encodings and P2PKH transaction builder
//
// This CLI exposes the btc-p2pkh library: Base58Check, WIF and address
// codecs, and the PTX signing pipeline for P2PKH spends.
//
// Example usage:
//
//	# Derive the address of a WIF key
//	btc-p2pkh --network testnet3 address from-wif cNKkmrwHuShs2mvkVEKfXULxXhxRo3yy1cK6sq62uBp2Pc8Lsa76
//
//	# Propose a transaction paying a BIP 21 request, with change
//	btc-p2pkh -n testnet3 tx propose --input <txid>:0:87000000:<address> \
//	    --pay "bitcoin:mnNcaVkC35ezZSgvn8fhXEa9QTHSUtPfzQ?amount=0.251" \
//	    --output mqMi3XYqsPvBWtrJTk8euPWDVmFTZ5jHuK:61900000 --out spend.ptx
//
//	# Sign and extract
//	btc-p2pkh tx sign --ptx spend.ptx --wif <key> --out signed.ptx
//	btc-p2pkh tx extract --ptx signed.ptx
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/suffix-labs/btc-p2pkh/pkg/address"
)

// GlobalFlags are the flags shared by every command.
type GlobalFlags struct {
	Network string // mainnet | testnet3
	Verbose bool   // Debug logging on stderr
}

var (
	globalFlags GlobalFlags
	network     address.Network
	logger      *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "btc-p2pkh",
	Short:         "Legacy Bitcoin encodings and P2PKH transaction builder",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		network, err = address.NetworkByName(globalFlags.Network)
		if err != nil {
			return err
		}

		logger = newLogger(globalFlags.Verbose)
		logger.Debug("starting", zap.String("command", cmd.CommandPath()), zap.Stringer("network", network))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// newLogger returns a console logger on stderr. Results go to stdout.
func newLogger(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
	})
	return zap.New(zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
}

func init() {
	logger = zap.NewNop()

	rootCmd.PersistentFlags().StringVarP(&globalFlags.Network, "network", "n", "mainnet", "network: mainnet|testnet3")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(base58Cmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(wifCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(txCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
