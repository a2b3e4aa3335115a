package solana

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

var (
	ErrInvalidAddress   = errors.New("invalid solana address")
	ErrInvalidSignature = errors.New("invalid solana signature")
	ErrBadMessageProof  = errors.New("message signature does not match address")
)

// ValidateAddress checks that s is a base58 ed25519 public key.
func ValidateAddress(s string) error {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return ErrInvalidAddress
	}
	return nil
}

// ValidateSignature checks that s is a base58 64-byte transaction signature.
func ValidateSignature(s string) error {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}
	return nil
}

// SignInMessage is the text a wallet signs to prove address ownership.
func SignInMessage(domain, address, nonce string, issuedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wants you to sign in with your Solana account:\n", domain)
	b.WriteString(address)
	b.WriteString("\n\nSign in to CreateMeme.io\n\n")
	fmt.Fprintf(&b, "Nonce: %s\n", nonce)
	fmt.Fprintf(&b, "Issued At: %s", issuedAt.UTC().Format(time.RFC3339))
	return b.String()
}

// VerifyMessage checks a base58 ed25519 signature of message by address.
func VerifyMessage(address, message, signature string) error {
	pub, err := base58.Decode(address)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return ErrInvalidAddress
	}
	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig) {
		return ErrBadMessageProof
	}
	return nil
}
