package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"realtycore/internal/infra/persistence/hosted"
	"realtycore/internal/infra/persistence/memory"
	"realtycore/internal/infra/persistence/postgres"
	"realtycore/internal/infra/persistence/sqlite"
	"realtycore/pkg/domain"
)

// Environment variables controlling storage driver selection.
const (
	EnvStorageDriver = "REALTYCORE_STORAGE_DRIVER"
	EnvSQLitePath    = "REALTYCORE_SQLITE_PATH"
	EnvPostgresDSN   = "REALTYCORE_POSTGRES_DSN"
	EnvHostedBaseURL = "REALTYCORE_HOSTED_BASE_URL"
	EnvHostedProject = "REALTYCORE_HOSTED_PROJECT_ID"
	EnvHostedAPIKey  = "REALTYCORE_HOSTED_API_KEY"
)

// Storage driver names accepted by OpenPersistentStore.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverHosted   = "hosted"
)

// OpenPersistentStore selects a storage backend from the environment. An
// unset or empty driver yields the in-memory store.
func OpenPersistentStore(ctx context.Context, engine *RulesEngine) (domain.PersistentStore, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv(EnvStorageDriver)))
	switch driver {
	case "", DriverMemory:
		return memory.NewStore(engine), nil
	case DriverSQLite:
		return sqlite.NewStore(os.Getenv(EnvSQLitePath), engine)
	case DriverPostgres:
		return postgres.NewStore(os.Getenv(EnvPostgresDSN), engine)
	case DriverHosted:
		return hosted.NewStore(ctx, hosted.Config{
			BaseURL:   os.Getenv(EnvHostedBaseURL),
			ProjectID: os.Getenv(EnvHostedProject),
			APIKey:    os.Getenv(EnvHostedAPIKey),
		}, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
