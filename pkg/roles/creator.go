// Package roles implements the PTX role pattern.
//
// PTX roles separate transaction construction into distinct responsibilities:
//   - Creator: Initializes empty PTX structure
//   - Constructor: Adds inputs and outputs
//   - IO Finalizer: Checks the value balance and locks the structure
//   - Signer: Computes SIGHASH_ALL preimages and adds signatures
//   - Combiner: Merges PTXs signed in parallel
//   - Spend Finalizer: Builds the P2PKH scriptSigs
//   - Transaction Extractor: Produces final transaction bytes
//
// Each role can be executed by different parties or at different times,
// with the PTX serialized between them.
package roles

import (
	"github.com/suffix-labs/btc-p2pkh/pkg/ptx"
)

// Creator initializes a base PTX with no inputs or outputs.
//
// The Creator role sets up the transaction-wide fields that all parties must
// agree on. It doesn't add any inputs or outputs - those are added by the
// Constructor role.
type Creator struct {
	txVersion uint32 // Transaction version
	lockTime  uint32 // nLockTime
}

// NewCreator creates a Creator for a version 1 transaction with no lock time.
func NewCreator() *Creator {
	return &Creator{txVersion: ptx.TxVersion1}
}

// WithLockTime sets the nLockTime value.
//
// It can be either a block height (< 500000000) or UNIX timestamp (>= 500000000).
func (c *Creator) WithLockTime(lockTime uint32) *Creator {
	c.lockTime = lockTime
	return c
}

// WithVersion overrides the transaction version.
func (c *Creator) WithVersion(version uint32) *Creator {
	c.txVersion = version
	return c
}

// Create creates the base PTX structure.
//
// Returns a PTX with global fields set, no inputs or outputs, and all
// modification flags set. It is ready to be passed to the Constructor role.
func (c *Creator) Create() *ptx.PTX {
	return &ptx.PTX{
		Global: ptx.Global{
			TxVersion:   c.txVersion,
			LockTime:    c.lockTime,
			Modifiable:  ptx.FlagInputsModifiable | ptx.FlagOutputsModifiable,
			Proprietary: make(map[string][]byte),
		},
		Inputs:  []ptx.Input{},
		Outputs: []ptx.Output{},
	}
}
