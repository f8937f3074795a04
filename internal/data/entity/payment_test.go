package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusTerminal(t *testing.T) {
	assert.False(t, PaymentStatusPending.Terminal())
	assert.False(t, PaymentStatusVerificationRequired.Terminal())
	assert.True(t, PaymentStatusCompleted.Terminal())
	assert.True(t, PaymentStatusFailed.Terminal())
}

func TestPaymentMethodClassification(t *testing.T) {
	for _, m := range []PaymentMethod{MethodCard, MethodUPI, MethodQR, MethodGateway} {
		assert.True(t, m.Deferred(), string(m))
		assert.False(t, m.Instant(), string(m))
	}

	assert.True(t, MethodWallet.Instant())
	assert.False(t, MethodWallet.Deferred())
}

func TestPaymentDetailsMatches(t *testing.T) {
	card := PaymentDetails{Card: &CardDetails{Last4: "4242"}}
	assert.True(t, card.Matches(MethodCard))
	assert.False(t, card.Matches(MethodUPI))

	wallet := PaymentDetails{Wallet: &WalletDetails{OrderID: "wallet_1"}}
	assert.True(t, wallet.Matches(MethodWallet))

	// No branch set at all.
	assert.False(t, PaymentDetails{}.Matches(MethodCard))

	// More than one branch set is never valid.
	both := PaymentDetails{
		Card: &CardDetails{Last4: "4242"},
		Upi:  &UpiDetails{UpiID: "payer@bank"},
	}
	assert.False(t, both.Matches(MethodCard))
	assert.False(t, both.Matches(MethodUPI))
}
