package sync

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	appinventory "github.com/retail/backoffice/internal/application/inventory"
	apptrade "github.com/retail/backoffice/internal/application/trade"
	"github.com/retail/backoffice/internal/domain/shared"
)

// Envelope is a change as sent by a device
type Envelope struct {
	Kind    ChangeKind      `json:"kind" binding:"required"`
	ID      string          `json:"id" binding:"required,max=100"`
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// settlementPayload carries the receivable id next to the settle input
type settlementPayload struct {
	ReceivableID uuid.UUID `json:"receivable_id"`
	appfinance.SettleInput
}

// Decode turns the envelope into its change variant
func (e Envelope) Decode() (Change, error) {
	if e.ID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "change id is required")
	}
	switch e.Kind {
	case KindMovement:
		var in appinventory.RecordMovementInput
		if err := decodePayload(e, &in); err != nil {
			return nil, err
		}
		return MovementChange{ChangeID: e.ID, Input: in}, nil
	case KindSale:
		var in apptrade.CreateSaleInput
		if err := decodePayload(e, &in); err != nil {
			return nil, err
		}
		return SaleChange{ChangeID: e.ID, Input: in}, nil
	case KindSettlement:
		var in settlementPayload
		if err := decodePayload(e, &in); err != nil {
			return nil, err
		}
		if in.ReceivableID == uuid.Nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "settlement change "+e.ID+" has no receivable_id")
		}
		return SettlementChange{ChangeID: e.ID, ReceivableID: in.ReceivableID, Input: in.SettleInput}, nil
	case KindPurchase:
		var in apptrade.CreatePurchaseInput
		if err := decodePayload(e, &in); err != nil {
			return nil, err
		}
		return PurchaseChange{ChangeID: e.ID, Input: in}, nil
	case KindClosure:
		var in appfinance.CreateClosureInput
		if err := decodePayload(e, &in); err != nil {
			return nil, err
		}
		return ClosureChange{ChangeID: e.ID, Input: in}, nil
	case KindEntry:
		var in appfinance.CreateEntryInput
		if err := decodePayload(e, &in); err != nil {
			return nil, err
		}
		return EntryChange{ChangeID: e.ID, Input: in}, nil
	default:
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("unknown change kind %q", e.Kind))
	}
}

// DecodeAll decodes a batch, failing on the first bad envelope
func DecodeAll(envelopes []Envelope) ([]Change, error) {
	changes := make([]Change, 0, len(envelopes))
	for i, e := range envelopes {
		c, err := e.Decode()
		if err != nil {
			return nil, fmt.Errorf("change %d: %w", i, err)
		}
		changes = append(changes, c)
	}
	return changes, nil
}

func decodePayload(e Envelope, dst any) error {
	if len(e.Payload) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "change "+e.ID+" has no payload")
	}
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return &shared.DomainError{
			Code:    shared.CodeInvalidInput,
			Message: fmt.Sprintf("change %s: malformed %s payload", e.ID, e.Kind),
			Err:     err,
		}
	}
	return nil
}
