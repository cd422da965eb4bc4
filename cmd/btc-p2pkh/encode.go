package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suffix-labs/btc-p2pkh/pkg/address"
	"github.com/suffix-labs/btc-p2pkh/pkg/base58"
	"github.com/suffix-labs/btc-p2pkh/pkg/crypto"
	"github.com/suffix-labs/btc-p2pkh/pkg/digest"
	"github.com/suffix-labs/btc-p2pkh/pkg/script"
)

var (
	// base58 / hash flags
	b58Check  bool
	inputText bool

	// wif flags
	wifUncompressed bool
)

var base58Cmd = &cobra.Command{
	Use:   "base58",
	Short: "Base58 and Base58Check encoding",
}

var base58EncodeCmd = &cobra.Command{
	Use:   "encode <hex>",
	Short: "Encode bytes as Base58 (Base58Check with --check)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := inputBytes(args[0])
		if err != nil {
			return err
		}

		if b58Check {
			fmt.Fprintln(cmd.OutOrStdout(), base58.CheckEncode(data))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), base58.Encode(data))
		}
		return nil
	},
}

var base58DecodeCmd = &cobra.Command{
	Use:   "decode <base58>",
	Short: "Decode Base58 text to hex (verifying the checksum with --check)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if b58Check {
			data, err = base58.CheckDecode(args[0])
		} else {
			data, err = base58.Decode(args[0])
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
		return nil
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash <sha256|ripemd160|hash256|hash160> <hex>",
	Short: "Hash bytes with one of the supported digests",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := digest.ParseKind(args[0])
		if err != nil {
			return err
		}
		data, err := inputBytes(args[1])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(kind.Sum(data)))
		return nil
	},
}

var wifCmd = &cobra.Command{
	Use:   "wif",
	Short: "Wallet Import Format keys",
}

var wifEncodeCmd = &cobra.Command{
	Use:   "encode <private-key-hex>",
	Short: "Encode a 32-byte private key as WIF for --network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := hex.DecodeString(args[0])
		if err != nil {
			return fmt.Errorf("private key: %w", err)
		}
		if len(raw) != crypto.PrivateKeySize {
			return fmt.Errorf("private key must be %d bytes, got %d", crypto.PrivateKeySize, len(raw))
		}

		var priv [crypto.PrivateKeySize]byte
		copy(priv[:], raw)
		defer clear(priv[:])

		fmt.Fprintln(cmd.OutOrStdout(), address.EncodeWIF(priv, network.WIFVersion, !wifUncompressed))
		return nil
	},
}

var wifDecodeCmd = &cobra.Command{
	Use:   "decode <wif>",
	Short: "Show the fields of a WIF key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := address.DecodeWIF(args[0])
		if err != nil {
			return err
		}
		defer w.Zero()

		net, err := w.Network()
		if err != nil {
			return err
		}
		addr, err := w.Address(crypto.Secp256k1{})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "network:     %s\n", net)
		fmt.Fprintf(out, "version:     0x%02x\n", w.Version)
		fmt.Fprintf(out, "compressed:  %t\n", w.Compressed)
		fmt.Fprintf(out, "private key: %x\n", w.PrivateKey[:])
		fmt.Fprintf(out, "address:     %s\n", addr)
		return nil
	},
}

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "P2PKH addresses",
}

var addressFromPubKeyCmd = &cobra.Command{
	Use:   "from-pubkey <pubkey-hex>",
	Short: "Address of a 33- or 65-byte public key on --network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, err := hex.DecodeString(args[0])
		if err != nil {
			return fmt.Errorf("public key: %w", err)
		}
		if _, err := crypto.ParsePublicKey(pub); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), address.EncodeP2PKH(pub, network.P2PKHVersion))
		return nil
	},
}

var addressFromWIFCmd = &cobra.Command{
	Use:   "from-wif <wif>",
	Short: "Address of a WIF key on the key's own network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := address.AddressFromWIF(args[0], crypto.Secp256k1{})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), addr)
		return nil
	},
}

var addressDecodeCmd = &cobra.Command{
	Use:   "decode <address>",
	Short: "Show the network, hash160 and script of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, version, err := address.DecodeP2PKH(args[0])
		if err != nil {
			return err
		}
		net, err := address.NetworkForP2PKHVersion(version)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "network: %s\n", net)
		fmt.Fprintf(out, "hash160: %x\n", hash[:])
		fmt.Fprintf(out, "script:  %x\n", script.P2PKHLock(hash))
		return nil
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a key and print its WIF and address for --network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			return err
		}
		defer key.Zero()

		var priv [crypto.PrivateKeySize]byte
		copy(priv[:], key.Bytes())
		defer clear(priv[:])

		compressed := !wifUncompressed
		addr := address.EncodeP2PKH(key.PublicKey().Bytes(compressed), network.P2PKHVersion)
		logger.Debug("generated key", zap.String("address", addr), zap.Bool("compressed", compressed))

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "wif:     %s\n", address.EncodeWIF(priv, network.WIFVersion, compressed))
		fmt.Fprintf(out, "address: %s\n", addr)
		return nil
	},
}

// inputBytes reads a positional argument as hex, or as raw text with --text.
func inputBytes(arg string) ([]byte, error) {
	if inputText {
		return []byte(arg), nil
	}
	data, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
	if err != nil {
		return nil, fmt.Errorf("input is not hex (use --text for raw strings): %w", err)
	}
	return data, nil
}

func init() {
	for _, c := range []*cobra.Command{base58EncodeCmd, base58DecodeCmd} {
		c.Flags().BoolVar(&b58Check, "check", false, "use Base58Check (4-byte hash256 checksum)")
	}
	base58EncodeCmd.Flags().BoolVar(&inputText, "text", false, "treat the argument as raw text")
	hashCmd.Flags().BoolVar(&inputText, "text", false, "treat the argument as raw text")
	base58Cmd.AddCommand(base58EncodeCmd, base58DecodeCmd)

	wifEncodeCmd.Flags().BoolVar(&wifUncompressed, "uncompressed", false, "commit to the uncompressed public key")
	keygenCmd.Flags().BoolVar(&wifUncompressed, "uncompressed", false, "commit to the uncompressed public key")
	wifCmd.AddCommand(wifEncodeCmd, wifDecodeCmd)

	addressCmd.AddCommand(addressFromPubKeyCmd, addressFromWIFCmd, addressDecodeCmd)
}
