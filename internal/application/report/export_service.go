// Package report renders ledger data into spreadsheets for the back office.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	"github.com/retail/backoffice/internal/infrastructure/logger"
	"github.com/retail/backoffice/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// XLSXContentType is the MIME type of generated workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const closureSheet = "Closures"

// ObjectStorage keeps generated files and hands out temporary links to them
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// ClosureLister lists the monthly closures of an account
type ClosureLister interface {
	ListClosures(ctx context.Context, tenantID, accountID uuid.UUID) ([]appfinance.ClosureResponse, error)
}

// ExportResult is a generated workbook. Key and URL are set only when the
// workbook was stored.
type ExportResult struct {
	FileName  string     `json:"file_name"`
	Rows      int        `json:"rows"`
	Key       string     `json:"key,omitempty"`
	URL       string     `json:"url,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Content   []byte     `json:"-"`
}

// Stored reports whether the workbook went to object storage
func (r *ExportResult) Stored() bool {
	return r.Key != ""
}

// ExportService builds spreadsheet exports
type ExportService struct {
	closures ClosureLister
	storage  ObjectStorage
	urlTTL   time.Duration
	now      func() time.Time
}

// ExportOption is a functional option for ExportService
type ExportOption func(*ExportService)

// WithStorage stores workbooks instead of returning them inline
func WithStorage(storage ObjectStorage) ExportOption {
	return func(s *ExportService) {
		s.storage = storage
	}
}

// WithURLExpiry sets how long download links stay valid
func WithURLExpiry(d time.Duration) ExportOption {
	return func(s *ExportService) {
		if d > 0 {
			s.urlTTL = d
		}
	}
}

// NewExportService creates a new ExportService
func NewExportService(closures ClosureLister, opts ...ExportOption) *ExportService {
	s := &ExportService{
		closures: closures,
		urlTTL:   15 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportClosures renders every closure of the account, oldest month first
func (s *ExportService) ExportClosures(ctx context.Context, tenantID, accountID uuid.UUID) (*ExportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "export_closures",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAccountID, accountID.String()),
	)
	defer span.End()

	closures, err := s.closures.ListClosures(ctx, tenantID, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	content, err := closureWorkbook(closures)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render closures workbook: %w", err)
	}

	now := s.now().UTC()
	result := &ExportResult{
		FileName: fmt.Sprintf("closures-%s-%s.xlsx", accountID, now.Format("20060102T150405Z")),
		Rows:     len(closures),
		Content:  content,
	}
	if s.storage == nil {
		return result, nil
	}

	key := fmt.Sprintf("exports/%s/%s", tenantID, result.FileName)
	if err := s.storage.Upload(ctx, key, content, XLSXContentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to store closures workbook: %w", err)
	}
	url, expiresAt, err := s.storage.DownloadURL(ctx, key, s.urlTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sign closures workbook url: %w", err)
	}
	result.Key = key
	result.URL = url
	result.ExpiresAt = &expiresAt
	result.Content = nil

	logger.L(ctx).Info("Closures exported",
		zap.String("account_id", accountID.String()),
		zap.String("key", key),
		zap.Int("rows", result.Rows),
	)
	return result, nil
}

var closureHeaders = []string{
	"Month", "Opening balance", "Income", "Expense",
	"Expected closing", "Counted closing", "Difference", "Notes",
}

func closureWorkbook(closures []appfinance.ClosureResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", closureSheet); err != nil {
		return nil, err
	}
	for i, h := range closureHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(closureSheet, cell, h); err != nil {
			return nil, err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(closureHeaders), 1)
	if err := f.SetCellStyle(closureSheet, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, c := range closures {
		row := i + 2
		values := []any{
			c.Month,
			money(c.OpeningBalance),
			money(c.TotalIncome),
			money(c.TotalExpense),
			money(c.ExpectedClosing),
			optionalMoney(c.CountedClosing),
			optionalMoney(c.Difference),
			c.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(closureSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func optionalMoney(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	return money(*d)
}
