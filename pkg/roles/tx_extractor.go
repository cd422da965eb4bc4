package roles

import (
	"github.com/suffix-labs/btc-p2pkh/pkg/ptx"
	"github.com/suffix-labs/btc-p2pkh/pkg/tx"
)

// TxExtractor extracts a final transaction from a finalized PTX.
//
// The Transaction Extractor role:
//   - Verifies the PTX is fully finalized and ready for extraction
//   - Serializes the transaction in the legacy broadcast format
//
// This is the final role in the PTX workflow. After extraction, you have
// a complete, signed transaction ready for broadcast.
type TxExtractor struct {
	ptx *ptx.PTX
}

// NewTxExtractor creates a new Transaction Extractor.
func NewTxExtractor(p *ptx.PTX) *TxExtractor {
	return &TxExtractor{ptx: p}
}

// ExtractTx returns the final transaction.
//
// Returns an error if:
//   - Inputs or outputs are still modifiable (IO Finalizer has not run)
//   - Any input is not finalized
func (e *TxExtractor) ExtractTx() (*tx.Transaction, error) {
	if e.ptx.Global.Modifiable != 0 {
		return nil, &ptx.FinalizationError{
			Code:       ptx.ErrIncompletePTX,
			InputIndex: -1,
			Message:    "inputs or outputs still modifiable",
		}
	}
	if len(e.ptx.Inputs) == 0 {
		return nil, &ptx.FinalizationError{Code: ptx.ErrIncompletePTX, InputIndex: -1, Message: "no inputs"}
	}

	for i := range e.ptx.Inputs {
		if e.ptx.Inputs[i].State() != ptx.StateFinalized {
			return nil, &ptx.FinalizationError{
				Code:       ptx.ErrIncompletePTX,
				InputIndex: i,
				Message:    "input not finalized (" + e.ptx.Inputs[i].State().String() + ")",
			}
		}
	}

	return e.ptx.FinalTx(), nil
}

// Extract returns the serialized final transaction and its txid in display
// order.
func (e *TxExtractor) Extract() ([]byte, string, error) {
	t, err := e.ExtractTx()
	if err != nil {
		return nil, "", err
	}
	return t.Serialize(tx.SighashNon), t.TxIDString(), nil
}
