//go:build devbypass

package service

// paymentBypass records payments as simulated without asking the chain.
// Staging and local builds only.
const paymentBypass = true
