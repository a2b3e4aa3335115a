package solana

import (
	"errors"
	"fmt"
)

var (
	ErrTransactionFailed = errors.New("transaction failed on chain")
	ErrRecipientMismatch = errors.New("no transfer to the expected recipient")
	ErrPayerMismatch     = errors.New("transfer not sent by the expected payer")
	ErrAmountTooLow      = errors.New("transferred amount below the expected amount")
	ErrMemoMismatch      = errors.New("memo not found in transaction")
)

// PaymentExpectation describes what a transaction must contain to count as
// a payment. Payer and Memo are optional.
type PaymentExpectation struct {
	Recipient   string
	MinLamports int64
	Payer       string
	Memo        string
}

// VerifyPayment checks tx against exp and returns the lamports paid to the
// recipient. Transfers to the recipient are summed, so a payment split into
// several instructions is accepted.
func (tx *ParsedTransaction) VerifyPayment(exp PaymentExpectation) (int64, error) {
	if tx.Failed {
		return 0, fmt.Errorf("%w: %s", ErrTransactionFailed, tx.Err)
	}

	var toRecipient, fromPayer int64
	found := false
	for _, t := range tx.Transfers {
		if t.Destination != exp.Recipient {
			continue
		}
		found = true
		toRecipient += t.Lamports
		if exp.Payer == "" || t.Source == exp.Payer {
			fromPayer += t.Lamports
		}
	}
	if !found {
		return 0, ErrRecipientMismatch
	}
	if exp.Payer != "" && fromPayer == 0 {
		return 0, ErrPayerMismatch
	}

	paid := toRecipient
	if exp.Payer != "" {
		paid = fromPayer
	}
	if paid < exp.MinLamports {
		return paid, fmt.Errorf("%w: got %d, want %d", ErrAmountTooLow, paid, exp.MinLamports)
	}

	if exp.Memo != "" && !tx.hasMemo(exp.Memo) {
		return paid, ErrMemoMismatch
	}
	return paid, nil
}

func (tx *ParsedTransaction) hasMemo(memo string) bool {
	for _, m := range tx.Memos {
		if m == memo {
			return true
		}
	}
	return false
}
