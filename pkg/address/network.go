package address

import (
	"strings"

	"github.com/suffix-labs/btc-p2pkh/pkg/codecerr"
)

// Version bytes. Private-key and address versions are separate spaces.
const (
	WIFMainNet   byte = 0x80
	WIFTestNet   byte = 0xEF
	P2PKHMainNet byte = 0x00
	P2PKHTestNet byte = 0x6F
)

// Network binds a private-key version to the P2PKH version of the same chain.
type Network struct {
	Name         string
	WIFVersion   byte
	P2PKHVersion byte
}

// Known networks.
var (
	MainNet  = Network{Name: "mainnet", WIFVersion: WIFMainNet, P2PKHVersion: P2PKHMainNet}
	TestNet3 = Network{Name: "testnet3", WIFVersion: WIFTestNet, P2PKHVersion: P2PKHTestNet}
)

var networks = []Network{MainNet, TestNet3}

// NetworkByName resolves "mainnet" or "testnet3" ("testnet" is accepted too).
func NetworkByName(name string) (Network, error) {
	switch strings.ToLower(name) {
	case "mainnet", "main":
		return MainNet, nil
	case "testnet3", "testnet", "test":
		return TestNet3, nil
	}
	return Network{}, codecerr.New(codecerr.CodeInvalidVersion, "unknown network %q", name)
}

// NetworkForWIFVersion returns the network whose private keys use version.
func NetworkForWIFVersion(version byte) (Network, error) {
	for _, n := range networks {
		if n.WIFVersion == version {
			return n, nil
		}
	}
	return Network{}, codecerr.New(codecerr.CodeInvalidVersion, "unknown WIF version 0x%02x", version)
}

// NetworkForP2PKHVersion returns the network whose addresses use version.
func NetworkForP2PKHVersion(version byte) (Network, error) {
	for _, n := range networks {
		if n.P2PKHVersion == version {
			return n, nil
		}
	}
	return Network{}, codecerr.New(codecerr.CodeInvalidVersion, "unknown P2PKH version 0x%02x", version)
}

func (n Network) String() string {
	return n.Name
}
