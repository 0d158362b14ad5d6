package report_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	appfinance "github.com/retail/backoffice/internal/application/finance"
	"github.com/retail/backoffice/internal/application/report"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubClosures struct {
	rows []appfinance.ClosureResponse
	err  error
}

func (s stubClosures) ListClosures(_ context.Context, _, _ uuid.UUID) ([]appfinance.ClosureResponse, error) {
	return s.rows, s.err
}

type memoryStorage struct {
	objects map[string][]byte
	types   map[string]string
	failing bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if m.failing {
		return errors.New("bucket unavailable")
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryStorage) DownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://files.example.test/" + key, time.Now().Add(expiresIn), nil
}

func sampleClosures() []appfinance.ClosureResponse {
	counted := decimal.RequireFromString("325")
	diff := decimal.RequireFromString("-5")
	return []appfinance.ClosureResponse{
		{
			Month:           "2024-01",
			OpeningBalance:  decimal.Zero,
			TotalIncome:     decimal.RequireFromString("400"),
			TotalExpense:    decimal.RequireFromString("70"),
			ExpectedClosing: decimal.RequireFromString("330"),
			CountedClosing:  &counted,
			Difference:      &diff,
			Notes:           "drawer short",
		},
		{
			Month:           "2024-02",
			OpeningBalance:  counted,
			TotalIncome:     decimal.RequireFromString("40.5"),
			TotalExpense:    decimal.Zero,
			ExpectedClosing: decimal.RequireFromString("365.5"),
		},
	}
}

func readRows(t *testing.T, content []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Closures")
	require.NoError(t, err)
	return rows
}

func TestExportClosures_Inline(t *testing.T) {
	svc := report.NewExportService(stubClosures{rows: sampleClosures()})

	result, err := svc.ExportClosures(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.False(t, result.Stored())
	assert.Equal(t, 2, result.Rows)
	assert.True(t, strings.HasSuffix(result.FileName, ".xlsx"))

	rows := readRows(t, result.Content)
	require.Len(t, rows, 3)
	assert.Equal(t, "Month", rows[0][0])
	assert.Equal(t, []string{"2024-01", "0", "400", "70", "330", "325", "-5", "drawer short"}, rows[1])
	assert.Equal(t, "2024-02", rows[2][0])
	assert.Equal(t, "365.5", rows[2][4])
}

func TestExportClosures_Stored(t *testing.T) {
	storage := newMemoryStorage()
	tenantID := uuid.New()
	svc := report.NewExportService(stubClosures{rows: sampleClosures()},
		report.WithStorage(storage), report.WithURLExpiry(time.Hour))

	result, err := svc.ExportClosures(context.Background(), tenantID, uuid.New())
	require.NoError(t, err)
	require.True(t, result.Stored())
	assert.Nil(t, result.Content)
	assert.True(t, strings.HasPrefix(result.Key, "exports/"+tenantID.String()+"/"))
	assert.Contains(t, result.URL, result.Key)
	require.NotNil(t, result.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *result.ExpiresAt, time.Minute)

	require.Contains(t, storage.objects, result.Key)
	assert.Equal(t, report.XLSXContentType, storage.types[result.Key])
	assert.Len(t, readRows(t, storage.objects[result.Key]), 3)
}

func TestExportClosures_Errors(t *testing.T) {
	_, err := report.NewExportService(stubClosures{err: shared.NotFound("account", uuid.New())}).
		ExportClosures(context.Background(), uuid.New(), uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	storage := newMemoryStorage()
	storage.failing = true
	_, err = report.NewExportService(stubClosures{rows: sampleClosures()}, report.WithStorage(storage)).
		ExportClosures(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store closures workbook")
}

func TestExportClosures_Empty(t *testing.T) {
	result, err := report.NewExportService(stubClosures{}).ExportClosures(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Rows)
	assert.Len(t, readRows(t, result.Content), 1)
}
