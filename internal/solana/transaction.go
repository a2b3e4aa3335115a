package solana

import (
	"time"

	"github.com/tidwall/gjson"
)

// Transfer is a system-program SOL transfer found in a transaction.
type Transfer struct {
	Source      string
	Destination string
	Lamports    int64
}

// ParsedTransaction is the subset of a jsonParsed getTransaction result
// needed to verify payments.
type ParsedTransaction struct {
	Signature string
	Slot      uint64
	BlockTime *time.Time
	Failed    bool
	Err       string
	Fee       int64
	Signers   []string
	Transfers []Transfer
	Memos     []string
}

// ParseTransaction extracts transfers and memos from the top-level and inner
// instructions of a jsonParsed transaction.
func ParseTransaction(res gjson.Result) *ParsedTransaction {
	tx := &ParsedTransaction{
		Slot: res.Get("slot").Uint(),
		Fee:  res.Get("meta.fee").Int(),
	}
	if bt := res.Get("blockTime"); bt.Exists() && bt.Type != gjson.Null {
		t := time.Unix(bt.Int(), 0).UTC()
		tx.BlockTime = &t
	}
	if e := res.Get("meta.err"); e.Exists() && e.Type != gjson.Null {
		tx.Failed = true
		tx.Err = e.Raw
	}

	res.Get("transaction.message.accountKeys").ForEach(func(_, key gjson.Result) bool {
		if key.Get("signer").Bool() {
			tx.Signers = append(tx.Signers, key.Get("pubkey").String())
		}
		return true
	})

	visit := func(_, ix gjson.Result) bool {
		tx.addInstruction(ix)
		return true
	}
	res.Get("transaction.message.instructions").ForEach(visit)
	res.Get("meta.innerInstructions").ForEach(func(_, inner gjson.Result) bool {
		inner.Get("instructions").ForEach(visit)
		return true
	})
	return tx
}

func (tx *ParsedTransaction) addInstruction(ix gjson.Result) {
	program := ix.Get("program").String()
	programID := ix.Get("programId").String()

	switch {
	case program == "system" || programID == SystemProgramID:
		kind := ix.Get("parsed.type").String()
		if kind != "transfer" && kind != "transferWithSeed" {
			return
		}
		info := ix.Get("parsed.info")
		tx.Transfers = append(tx.Transfers, Transfer{
			Source:      info.Get("source").String(),
			Destination: info.Get("destination").String(),
			Lamports:    info.Get("lamports").Int(),
		})
	case program == "spl-memo" || programID == MemoProgramID:
		if p := ix.Get("parsed"); p.Type == gjson.String {
			tx.Memos = append(tx.Memos, p.String())
		}
	}
}

// SignedBy reports whether address signed the transaction.
func (tx *ParsedTransaction) SignedBy(address string) bool {
	for _, s := range tx.Signers {
		if s == address {
			return true
		}
	}
	return false
}
