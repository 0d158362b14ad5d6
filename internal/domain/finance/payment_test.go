package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMethod_Classify(t *testing.T) {
	tests := []struct {
		method       PaymentMethod
		installments int
		want         PostingMode
	}{
		{PaymentMethodCash, 1, PostingImmediate},
		{PaymentMethodPix, 0, PostingImmediate},
		{PaymentMethodDebitCard, 3, PostingImmediate},
		{PaymentMethodCreditCard, 1, PostingImmediate},
		{PaymentMethodCreditCard, 0, PostingImmediate},
		{PaymentMethodCreditCard, 2, PostingCardInstallments},
		{PaymentMethodCrediario, 1, PostingDeferred},
		{PaymentMethodBoleto, 4, PostingDeferred},
		{PaymentMethodCheque, 0, PostingDeferred},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.method.Classify(tt.installments))
		})
	}
}

func TestPaymentMethod_ReceivableKind(t *testing.T) {
	assert.Equal(t, ReceivableKindCardInstallment, PaymentMethodCreditCard.ReceivableKind())
	assert.Equal(t, ReceivableKindCrediario, PaymentMethodCrediario.ReceivableKind())
	assert.Equal(t, ReceivableKindBoleto, PaymentMethodBoleto.ReceivableKind())
	assert.Equal(t, ReceivableKindCheque, PaymentMethodCheque.ReceivableKind())
}

func TestNewPayment(t *testing.T) {
	p, err := NewPayment(uuid.New(), NewPaymentParams{
		Method:    PaymentMethodCash,
		Amount:    decimal.RequireFromString("10.005"),
		AccountID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, "10.01", p.Amount.StringFixed(2))
	assert.Equal(t, 1, p.Installments)
	assert.False(t, p.Date.IsZero())

	_, err = NewPayment(uuid.New(), NewPaymentParams{Method: "BITCOIN", Amount: decimal.NewFromInt(1), AccountID: uuid.New()})
	assert.Error(t, err)
	_, err = NewPayment(uuid.New(), NewPaymentParams{Method: PaymentMethodCash, Amount: decimal.Zero, AccountID: uuid.New()})
	assert.Error(t, err)
	_, err = NewPayment(uuid.New(), NewPaymentParams{Method: PaymentMethodCash, Amount: decimal.NewFromInt(1)})
	assert.Error(t, err)
}
