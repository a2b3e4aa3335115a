package solana

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// LamportsPerSOL is the smallest SOL unit (1 SOL = 10^9 lamports).
	LamportsPerSOL = 1_000_000_000

	SystemProgramID = "11111111111111111111111111111111"
	MemoProgramID   = "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"

	// NativeMint is wrapped SOL, the default pool quote asset.
	NativeMint = "So11111111111111111111111111111111111111112"
	// USDCMint is mainnet USDC.
	USDCMint = "EPjFWvd5wHWhSQ6jvSrPcfbvjBnzeZaDEbNjnMy5Eu6v"

	// PaymentWaitTimeout bounds how long a just-submitted payment is polled for.
	PaymentWaitTimeout = 20 * time.Second
	// PaymentPollInterval is the getTransaction polling step.
	PaymentPollInterval = 2 * time.Second
)

type Network string

const (
	NetworkMainnet Network = "mainnet-beta"
	NetworkDevnet  Network = "devnet"
	NetworkTestnet Network = "testnet"
)

const (
	RPCMainnet = "https://api.mainnet-beta.solana.com"
	RPCDevnet  = "https://api.devnet.solana.com"
	RPCTestnet = "https://api.testnet.solana.com"
)

// DefaultRPC returns the public endpoint of a cluster.
func DefaultRPC(n Network) string {
	switch n {
	case NetworkDevnet:
		return RPCDevnet
	case NetworkTestnet:
		return RPCTestnet
	default:
		return RPCMainnet
	}
}

var lamportsPerSOL = decimal.NewFromInt(LamportsPerSOL)

// SOLToLamports converts a SOL amount, truncating sub-lamport precision.
func SOLToLamports(sol decimal.Decimal) int64 {
	return sol.Mul(lamportsPerSOL).Truncate(0).IntPart()
}

// LamportsToSOL converts lamports to SOL.
func LamportsToSOL(lamports int64) decimal.Decimal {
	return decimal.NewFromInt(lamports).Div(lamportsPerSOL)
}

// ParseSOL parses a decimal SOL string such as "0.25" into lamports.
func ParseSOL(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid SOL amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid SOL amount %q: negative", s)
	}
	return SOLToLamports(d), nil
}
