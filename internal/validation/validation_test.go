package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type createReq struct {
	Name     string `validate:"required"`
	Symbol   string `validate:"max=3"`
	Decimals int    `validate:"gte=0"`
	Status   string `validate:"oneof=draft published"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()
	err := v.Struct(createReq{Symbol: "TOOLONG", Status: "live"})

	msgs := FormatValidationError(err)
	assert.Contains(t, msgs, "name is required")
	assert.Contains(t, msgs, "symbol must be at most 3")
	assert.Contains(t, msgs, "status must be one of [draft published]")
}

func TestFormatNonValidatorError(t *testing.T) {
	assert.Equal(t, []string{"invalid request body"}, FormatValidationError(errors.New("unexpected EOF")))
	assert.Equal(t, "invalid request body", Message(errors.New("x")))
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "id_token", toSnake("IdToken"))
	assert.Equal(t, "wallet_address", toSnake("WalletAddress"))
}
