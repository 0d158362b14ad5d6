// Package integration runs the ledger against a real PostgreSQL started with
// testcontainers, migrated with the embedded schema.
package integration

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/retail/backoffice/internal/infrastructure/migration"
	"github.com/retail/backoffice/internal/infrastructure/persistence"
	"github.com/retail/backoffice/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// Shared container for all tests in the package
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB is a connection to the migrated test database
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
}

func startPostgres(t *testing.T, name string) (testcontainers.Container, string) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(name),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")
	return container, dsn
}

// NewTestDB starts a private container, for tests that change the schema
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	container, dsn := startPostgres(t, "ledger_test")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})
	return connect(t, dsn)
}

// NewSharedTestDB returns a connection to the package-wide migrated
// container. Tests isolate themselves by using a fresh tenant.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer == nil {
		container, dsn := startPostgres(t, "ledger_shared_test")
		sharedContainer = container
		sharedContainerDSN = dsn

		tdb := connect(t, dsn)
		m, err := migration.New(tdb.SqlDB, migrations.FS, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, m.Up(), "Failed to run migrations")
	}
	return connect(t, sharedContainerDSN)
}

func connect(t *testing.T, dsn string) *TestDB {
	t.Helper()

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	var zapLogger *zap.Logger
	if level == gormlogger.Info {
		zapLogger = zap.NewExample()
	}
	db, err := persistence.Open(gormpostgres.Open(dsn), zapLogger, level, 0)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	t.Cleanup(func() { _ = sqlDB.Close() })
	return &TestDB{DB: db.DB, SqlDB: sqlDB, DSN: dsn}
}

// CleanupSharedContainer terminates the shared container. Call it from TestMain.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}
