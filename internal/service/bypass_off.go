//go:build !devbypass

package service

// paymentBypass is only enabled by building with -tags devbypass.
const paymentBypass = false
