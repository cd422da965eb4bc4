package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suffix-labs/btc-p2pkh/pkg/address"
	"github.com/suffix-labs/btc-p2pkh/pkg/api"
	"github.com/suffix-labs/btc-p2pkh/pkg/bip21"
	"github.com/suffix-labs/btc-p2pkh/pkg/ptx"
	"github.com/suffix-labs/btc-p2pkh/pkg/script"
	"github.com/suffix-labs/btc-p2pkh/pkg/tx"
)

var (
	// tx propose flags
	txInputs   []string
	txOutputs  []string
	txPays     []string
	txLockTime uint32

	// shared flags
	txPTXFile string
	txOutFile string
	txIndex   int

	// tx sign / append flags
	txWIFs    []string
	txWorkers int
	txSig     string
	txPubKey  string
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Build, sign and extract P2PKH transactions",
	Long: `Build, sign and extract P2PKH transactions.

A transaction moves between commands as a PTX file (partially-signed
transaction): propose writes one, sign / append / combine update it, and
extract turns a fully signed PTX into broadcastable bytes.`,
}

var txProposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Create an IO-finalized PTX",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		proposal := &api.TransactionProposal{Network: &network}
		if cmd.Flags().Changed("locktime") {
			proposal.LockTime = &txLockTime
		}

		for _, s := range txInputs {
			in, err := parseInputFlag(s)
			if err != nil {
				return err
			}
			proposal.Inputs = append(proposal.Inputs, in)
		}
		for _, s := range txOutputs {
			out, err := parseOutputFlag(s)
			if err != nil {
				return err
			}
			proposal.Outputs = append(proposal.Outputs, out)
		}
		for _, uri := range txPays {
			req, err := bip21.Parse(uri)
			if err != nil {
				return fmt.Errorf("--pay %q: %w", uri, err)
			}
			proposal.Payments = append(proposal.Payments, req)
		}

		b, err := api.ProposeTransaction(proposal)
		if err != nil {
			return err
		}

		logger.Info("proposed transaction",
			zap.Int("inputs", len(proposal.Inputs)),
			zap.Int("outputs", len(proposal.Outputs)+len(proposal.Payments)))
		return writePTX(cmd, b)
	},
}

var txSighashCmd = &cobra.Command{
	Use:   "sighash",
	Short: "Print the SIGHASH_ALL digest of an input",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := readPTX(txPTXFile)
		if err != nil {
			return err
		}

		pre, err := api.GetPreimage(b, txIndex)
		if err != nil {
			return err
		}
		h, err := api.GetSighash(b, txIndex)
		if err != nil {
			return err
		}
		logger.Debug("preimage", zap.Int("input", txIndex), zap.String("hex", hex.EncodeToString(pre)))

		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(h[:]))
		return nil
	},
}

var txSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign every input one of the WIF keys can spend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(txWIFs) == 0 {
			return errors.New("at least one --wif is required")
		}
		b, err := readPTX(txPTXFile)
		if err != nil {
			return err
		}

		signed, errs, err := api.SignAll(b, txWIFs, txWorkers)
		if err != nil {
			return err
		}

		failed := 0
		for i, err := range errs {
			if err != nil {
				failed++
				logger.Error("signing failed", zap.Int("input", i), zap.Error(err))
			}
		}
		logInputStates(signed)

		if err := writePTX(cmd, signed); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d inputs failed to sign", failed, len(errs))
		}
		return nil
	},
}

var txAppendCmd = &cobra.Command{
	Use:   "append",
	Short: "Add an externally produced signature to an input",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := readPTX(txPTXFile)
		if err != nil {
			return err
		}
		sig, err := hex.DecodeString(txSig)
		if err != nil {
			return fmt.Errorf("--sig: %w", err)
		}
		pub, err := hex.DecodeString(txPubKey)
		if err != nil {
			return fmt.Errorf("--pubkey: %w", err)
		}

		signed, err := api.AppendSignature(b, txIndex, sig, pub)
		if err != nil {
			return err
		}
		return writePTX(cmd, signed)
	},
}

var txCombineCmd = &cobra.Command{
	Use:   "combine <a.ptx> <b.ptx> [...]",
	Short: "Merge signatures from PTXs of the same transaction",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list := make([][]byte, len(args))
		for i, path := range args {
			b, err := readPTX(path)
			if err != nil {
				return err
			}
			list[i] = b
		}

		combined, err := api.Combine(list)
		if err != nil {
			return err
		}
		logInputStates(combined)
		return writePTX(cmd, combined)
	},
}

var txExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Finalize a signed PTX and print the raw transaction and txid",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := readPTX(txPTXFile)
		if err != nil {
			return err
		}

		raw, txid, err := api.FinalizeAndExtract(b)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "hex:  %x\n", raw)
		fmt.Fprintf(out, "txid: %s\n", txid)
		fmt.Fprintf(out, "size: %d\n", len(raw))
		return nil
	},
}

var txDecodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Print the fields of a serialized transaction",
	Long: `Print the fields of a serialized transaction.

Raw transactions carry no network marker, so P2PKH output addresses are
rendered for --network (mainnet unless -n testnet3 is given).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := hex.DecodeString(strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		t, err := tx.Parse(raw)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "txid:     %s\n", t.TxIDString())
		fmt.Fprintf(out, "version:  %d\n", t.Version)
		fmt.Fprintf(out, "locktime: %d\n", t.LockTime)
		for i, in := range t.Inputs {
			fmt.Fprintf(out, "input %d:  %s seq=%08x script=%x\n", i, in.Outpoint, in.Sequence, in.Script)
		}
		for i, o := range t.Outputs {
			line := fmt.Sprintf("output %d: %d script=%x", i, o.Value, o.Script)
			if hash, ok := script.ExtractP2PKHHash(o.Script); ok {
				line += " address=" + address.EncodeP2PKHHash(hash, network.P2PKHVersion)
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

// parseInputFlag parses txid:index:value:address.
func parseInputFlag(s string) (api.Input, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return api.Input{}, fmt.Errorf("--input %q: want txid:index:value:address", s)
	}

	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return api.Input{}, fmt.Errorf("--input %q: index: %w", s, err)
	}
	op, err := tx.NewOutpoint(parts[0], uint32(index))
	if err != nil {
		return api.Input{}, fmt.Errorf("--input %q: %w", s, err)
	}
	value, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return api.Input{}, fmt.Errorf("--input %q: value: %w", s, err)
	}
	hash, version, err := address.DecodeP2PKH(parts[3])
	if err != nil {
		return api.Input{}, fmt.Errorf("--input %q: %w", s, err)
	}
	if version != network.P2PKHVersion {
		return api.Input{}, fmt.Errorf("--input %q: address is not on %s", s, network)
	}

	return api.Input{Outpoint: op, Value: value, ScriptPubKey: script.P2PKHLock(hash)}, nil
}

// parseOutputFlag parses address:value.
func parseOutputFlag(s string) (api.Output, error) {
	addr, v, ok := strings.Cut(s, ":")
	if !ok {
		return api.Output{}, fmt.Errorf("--output %q: want address:value", s)
	}
	value, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return api.Output{}, fmt.Errorf("--output %q: value: %w", s, err)
	}
	return api.Output{Value: value, Address: addr}, nil
}

// readPTX reads a PTX file holding either raw bytes or hex text.
func readPTX(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("--ptx is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(b, []byte(ptx.MagicBytes)) {
		return b, nil
	}
	decoded, err := hex.DecodeString(string(bytes.TrimSpace(b)))
	if err != nil {
		return nil, fmt.Errorf("%s: neither PTX bytes nor hex", path)
	}
	return decoded, nil
}

// writePTX writes b to --out, or prints it as hex.
func writePTX(cmd *cobra.Command, b []byte) error {
	if txOutFile == "" {
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
		return nil
	}
	if err := os.WriteFile(txOutFile, b, 0o600); err != nil {
		return err
	}
	logger.Info("wrote PTX", zap.String("path", txOutFile), zap.Int("bytes", len(b)))
	return nil
}

func logInputStates(b []byte) {
	p, err := api.ParsePTX(b)
	if err != nil {
		return
	}
	for i := range p.Inputs {
		logger.Debug("input", zap.Int("index", i), zap.Stringer("state", p.Inputs[i].State()))
	}
}

func init() {
	txProposeCmd.Flags().StringArrayVar(&txInputs, "input", nil, "spent output as txid:index:value:address (repeatable)")
	txProposeCmd.Flags().StringArrayVar(&txOutputs, "output", nil, "payment as address:satoshis (repeatable)")
	txProposeCmd.Flags().StringArrayVar(&txPays, "pay", nil, "BIP 21 payment request with an amount (repeatable)")
	txProposeCmd.Flags().Uint32Var(&txLockTime, "locktime", 0, "nLockTime")

	for _, c := range []*cobra.Command{txSighashCmd, txSignCmd, txAppendCmd, txExtractCmd} {
		c.Flags().StringVar(&txPTXFile, "ptx", "", "PTX file (raw or hex)")
	}
	for _, c := range []*cobra.Command{txProposeCmd, txSignCmd, txAppendCmd, txCombineCmd} {
		c.Flags().StringVarP(&txOutFile, "out", "o", "", "write the PTX here instead of printing hex")
	}
	for _, c := range []*cobra.Command{txSighashCmd, txAppendCmd} {
		c.Flags().IntVar(&txIndex, "input", 0, "input index")
	}

	txSignCmd.Flags().StringArrayVar(&txWIFs, "wif", nil, "WIF private key (repeatable)")
	txSignCmd.Flags().IntVar(&txWorkers, "workers", 0, "inputs signed at once (default GOMAXPROCS)")
	txAppendCmd.Flags().StringVar(&txSig, "sig", "", "DER signature with hash type byte, hex")
	txAppendCmd.Flags().StringVar(&txPubKey, "pubkey", "", "public key, hex")

	txCmd.AddCommand(txProposeCmd, txSighashCmd, txSignCmd, txAppendCmd, txCombineCmd, txExtractCmd, txDecodeCmd)
}
