package sync

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	appinventory "github.com/retail/backoffice/internal/application/inventory"
	apptrade "github.com/retail/backoffice/internal/application/trade"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"github.com/retail/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MovementRecorder records stock movements
type MovementRecorder interface {
	RecordMovement(ctx context.Context, tenantID uuid.UUID, input appinventory.RecordMovementInput) (*appinventory.MovementResponse, error)
}

// SaleConfirmer creates confirmed sales
type SaleConfirmer interface {
	CreateConfirmedSale(ctx context.Context, tenantID uuid.UUID, input apptrade.CreateSaleInput) (*apptrade.ConfirmationResult, error)
}

// ReceivableSettler settles receivables
type ReceivableSettler interface {
	SettleReceivable(ctx context.Context, tenantID, receivableID uuid.UUID, input appfinance.SettleInput) (*appfinance.SettleResult, error)
}

// PurchaseRecorder records purchases
type PurchaseRecorder interface {
	CreatePurchase(ctx context.Context, tenantID uuid.UUID, input apptrade.CreatePurchaseInput) (*apptrade.PurchaseCreationResult, error)
}

// ClosureCreator closes months
type ClosureCreator interface {
	CreateClosure(ctx context.Context, tenantID uuid.UUID, input appfinance.CreateClosureInput) (*appfinance.ClosureResponse, error)
}

// EntryCreator creates finance entries
type EntryCreator interface {
	CreateEntry(ctx context.Context, tenantID uuid.UUID, input appfinance.CreateEntryInput) (*appfinance.EntryResponse, error)
}

// Handlers are the services changes are routed to. A nil handler makes its
// kind fail.
type Handlers struct {
	Movements   MovementRecorder
	Sales       SaleConfirmer
	Settlements ReceivableSettler
	Purchases   PurchaseRecorder
	Closures    ClosureCreator
	Entries     EntryCreator
}

// ResultStatus is the outcome of one change
type ResultStatus string

const (
	StatusApplied   ResultStatus = "applied"
	StatusDuplicate ResultStatus = "duplicate"
	StatusFailed    ResultStatus = "failed"
)

// ResultError describes why a change failed
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of one change in a batch
type Result struct {
	ID     string       `json:"id"`
	Kind   ChangeKind   `json:"kind"`
	Status ResultStatus `json:"status"`
	Data   any          `json:"data,omitempty"`
	Error  *ResultError `json:"error,omitempty"`
}

// BatchResult summarizes a batch
type BatchResult struct {
	Results    []Result `json:"results"`
	Applied    int      `json:"applied"`
	Duplicates int      `json:"duplicates"`
	Failed     int      `json:"failed"`
}

// Dispatcher applies device changes in order
type Dispatcher struct {
	handlers Handlers
	store    shared.IdempotencyStore
	config   shared.IdempotencyConfig
}

// DispatcherOption is a functional option for Dispatcher
type DispatcherOption func(*Dispatcher)

// WithIdempotencyConfig sets the idempotency configuration
func WithIdempotencyConfig(config shared.IdempotencyConfig) DispatcherOption {
	return func(d *Dispatcher) {
		d.config = config
	}
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(handlers Handlers, store shared.IdempotencyStore, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		handlers: handlers,
		store:    store,
		config:   shared.DefaultIdempotencyConfig(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Apply applies changes one by one. A failed change does not stop the batch;
// its id is released so the device can send it again.
func (d *Dispatcher) Apply(ctx context.Context, tenantID uuid.UUID, changes []Change) BatchResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "sync", "apply",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute("sync.changes", len(changes)),
	)
	defer span.End()

	batch := BatchResult{Results: make([]Result, 0, len(changes))}
	for _, c := range changes {
		res := d.applyOne(ctx, tenantID, c)
		switch res.Status {
		case StatusApplied:
			batch.Applied++
		case StatusDuplicate:
			batch.Duplicates++
		case StatusFailed:
			batch.Failed++
		}
		batch.Results = append(batch.Results, res)
	}

	telemetry.SetAttributes(span,
		"sync.applied", batch.Applied,
		"sync.duplicates", batch.Duplicates,
		"sync.failed", batch.Failed,
	)
	logger.L(ctx).Info("Sync batch applied",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("applied", batch.Applied),
		zap.Int("duplicates", batch.Duplicates),
		zap.Int("failed", batch.Failed),
	)
	return batch
}

func (d *Dispatcher) applyOne(ctx context.Context, tenantID uuid.UUID, c Change) Result {
	res := Result{ID: c.ID(), Kind: c.Kind()}
	log := logger.L(ctx).With(
		zap.String("change_id", c.ID()),
		zap.String("change_kind", c.Kind().String()),
	)

	if err := ctx.Err(); err != nil {
		return failed(res, err)
	}
	if c.ID() == "" {
		return failed(res, shared.NewDomainError(shared.CodeInvalidInput, "change id is required"))
	}

	key := idempotencyKey(tenantID, c.ID())
	claimed := false
	if d.config.Enabled && d.store != nil {
		isNew, err := d.store.MarkProcessed(ctx, key, d.config.TTL)
		if err != nil {
			// Applying twice is recoverable, dropping a sale is not
			log.Warn("failed to check idempotency, applying anyway", zap.Error(err))
		} else if !isNew {
			log.Debug("duplicate change skipped")
			res.Status = StatusDuplicate
			return res
		} else {
			claimed = true
		}
	}

	data, err := c.apply(ctx, d, tenantID)
	if err != nil {
		if claimed {
			if ferr := d.store.Forget(ctx, key); ferr != nil {
				log.Warn("failed to release change id", zap.Error(ferr))
			}
		}
		log.Warn("change failed", zap.Error(err))
		return failed(res, err)
	}
	res.Status = StatusApplied
	res.Data = data
	return res
}

func failed(res Result, err error) Result {
	res.Status = StatusFailed
	res.Error = &ResultError{Code: "INTERNAL_ERROR", Message: err.Error()}
	var de *shared.DomainError
	if errors.As(err, &de) {
		res.Error.Code = de.Code
		res.Error.Message = de.Message
	}
	return res
}

func idempotencyKey(tenantID uuid.UUID, changeID string) string {
	return "sync:" + tenantID.String() + ":" + changeID
}

func errNoHandler(kind ChangeKind) error {
	return shared.NewDomainError(shared.CodeInvalidInput, "changes of kind "+kind.String()+" are not accepted")
}
