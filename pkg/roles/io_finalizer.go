package roles

import (
	"fmt"
	"math/bits"

	"github.com/suffix-labs/btc-p2pkh/pkg/ptx"
	"github.com/suffix-labs/btc-p2pkh/pkg/tx"
)

// IoFinalizer finalizes inputs and outputs, preparing for signing.
//
// The IO Finalizer role:
//   - Checks there is at least one input and one output
//   - Checks the outputs do not spend more than the inputs
//   - Clears all modification flags (no more I/O changes allowed)
//
// After this role executes, the PTX structure is locked and ready for the
// Signer.
type IoFinalizer struct {
	ptx *ptx.PTX
}

// NewIoFinalizer creates a new IO Finalizer.
func NewIoFinalizer(p *ptx.PTX) *IoFinalizer {
	return &IoFinalizer{ptx: p}
}

// Finalize performs IO finalization. The fee is the difference between the
// input and output totals.
func (f *IoFinalizer) Finalize() error {
	if len(f.ptx.Inputs) == 0 {
		return &ptx.ProposalError{Code: ptx.ErrInvalidInput, Message: "transaction has no inputs"}
	}
	if len(f.ptx.Outputs) == 0 {
		return &ptx.ProposalError{Code: ptx.ErrInvalidInput, Message: "transaction has no outputs"}
	}

	in, out, err := valueTotals(f.ptx)
	if err != nil {
		return &ptx.ProposalError{Code: ptx.ErrInvalidInput, Message: err.Error()}
	}
	if out > in {
		return &ptx.ProposalError{
			Code:    ptx.ErrInsufficientFunds,
			Message: fmt.Sprintf("outputs total %d, inputs total %d", out, in),
		}
	}

	// Signers commit to everything with SIGHASH_ALL
	f.ptx.Global.Modifiable = 0
	return nil
}

// Fee returns inputs minus outputs. Valid after Finalize succeeds.
func (f *IoFinalizer) Fee() uint64 {
	return f.ptx.TotalIn() - f.ptx.TotalOut()
}

// Finish returns the finalized PTX.
func (f *IoFinalizer) Finish() *ptx.PTX {
	return f.ptx
}

// valueTotals sums the input and output values of p. Every value must be at
// most tx.MaxMoney and neither sum may overflow.
func valueTotals(p *ptx.PTX) (in, out uint64, err error) {
	in, err = sumValues("input", len(p.Inputs), func(i int) uint64 { return p.Inputs[i].Value })
	if err != nil {
		return 0, 0, err
	}
	out, err = sumValues("output", len(p.Outputs), func(i int) uint64 { return p.Outputs[i].Value })
	if err != nil {
		return 0, 0, err
	}
	return in, out, nil
}

func sumValues(kind string, n int, value func(int) uint64) (uint64, error) {
	var sum uint64
	for i := 0; i < n; i++ {
		v := value(i)
		if v > tx.MaxMoney {
			return 0, fmt.Errorf("%s %d value %d exceeds %d", kind, i, v, tx.MaxMoney)
		}
		var carry uint64
		sum, carry = bits.Add64(sum, v, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%s values overflow", kind)
		}
	}
	return sum, nil
}
