package sync_test

import (
	"encoding/json"
	"errors"
	"testing"

	appsync "github.com/retail/backoffice/internal/application/sync"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_Decode(t *testing.T) {
	tests := []struct {
		name     string
		envelope appsync.Envelope
		kind     appsync.ChangeKind
	}{
		{"movement", appsync.Envelope{Kind: appsync.KindMovement, ID: "1", Payload: json.RawMessage(`{"product_id":"8f2a3c56-6c1e-4f0e-9b1a-0d5f0a9e7a11","direction":"OUT","quantity_base":3}`)}, appsync.KindMovement},
		{"sale", appsync.Envelope{Kind: appsync.KindSale, ID: "2", Payload: json.RawMessage(`{"items":[],"payments":[]}`)}, appsync.KindSale},
		{"settlement", appsync.Envelope{Kind: appsync.KindSettlement, ID: "3", Payload: json.RawMessage(`{"receivable_id":"8f2a3c56-6c1e-4f0e-9b1a-0d5f0a9e7a11","amount":"10.50","method":"CASH"}`)}, appsync.KindSettlement},
		{"purchase", appsync.Envelope{Kind: appsync.KindPurchase, ID: "4", Payload: json.RawMessage(`{"items":[]}`)}, appsync.KindPurchase},
		{"closure", appsync.Envelope{Kind: appsync.KindClosure, ID: "5", Payload: json.RawMessage(`{"month":"2024-01"}`)}, appsync.KindClosure},
		{"entry", appsync.Envelope{Kind: appsync.KindEntry, ID: "6", Payload: json.RawMessage(`{"type":"EXPENSE","amount":"5"}`)}, appsync.KindEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.envelope.Decode()
			require.NoError(t, err)
			assert.Equal(t, tt.kind, c.Kind())
			assert.Equal(t, tt.envelope.ID, c.ID())
		})
	}
}

func TestEnvelope_DecodeSettlementFields(t *testing.T) {
	c, err := appsync.Envelope{
		Kind:    appsync.KindSettlement,
		ID:      "s-1",
		Payload: json.RawMessage(`{"receivable_id":"8f2a3c56-6c1e-4f0e-9b1a-0d5f0a9e7a11","amount":"10.50","method":"PIX"}`),
	}.Decode()
	require.NoError(t, err)

	s, ok := c.(appsync.SettlementChange)
	require.True(t, ok)
	assert.Equal(t, "8f2a3c56-6c1e-4f0e-9b1a-0d5f0a9e7a11", s.ReceivableID.String())
	assert.Equal(t, "10.5", s.Input.Amount.String())
	assert.Equal(t, "PIX", s.Input.Method)
}

func TestEnvelope_DecodeErrors(t *testing.T) {
	cases := map[string]appsync.Envelope{
		"unknown kind":     {Kind: "coupon", ID: "1", Payload: json.RawMessage(`{}`)},
		"missing id":       {Kind: appsync.KindMovement, Payload: json.RawMessage(`{}`)},
		"missing payload":  {Kind: appsync.KindMovement, ID: "1"},
		"malformed":        {Kind: appsync.KindEntry, ID: "1", Payload: json.RawMessage(`{"amount":`)},
		"no receivable id": {Kind: appsync.KindSettlement, ID: "1", Payload: json.RawMessage(`{"amount":"1"}`)},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.Decode()
			assert.True(t, errors.Is(err, shared.ErrInvalidInput), err)
		})
	}

	_, err := appsync.DecodeAll([]appsync.Envelope{
		{Kind: appsync.KindEntry, ID: "ok", Payload: json.RawMessage(`{}`)},
		{Kind: "nope", ID: "bad", Payload: json.RawMessage(`{}`)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "change 1")
}
