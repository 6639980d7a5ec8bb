package infra

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

const migrateRetryLimit = 2 * time.Minute

// MigrateUp applies every pending migration from source to the trade
// database. A dirty version from an interrupted earlier run is forced
// back one step and retried, matching how the trades schema is rolled
// forward in deployment.
func MigrateUp(source, connStr string) error {
	mg, err := migrate.New(source, connStr)
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		zap.S().Warnf("schema version %d is dirty, forcing back", version)
		if err := mg.Force(int(version) - 1); err != nil {
			return fmt.Errorf("force version %d: %w", int(version)-1, err)
		}
	}

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	zap.S().Info("migrations applied")
	return nil
}

// MigrateUpWithBackoff retries MigrateUp until the database is
// reachable or the retry window runs out, for deployments where the
// migrator starts alongside postgres.
func MigrateUpWithBackoff(source, connStr string) error {
	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = migrateRetryLimit

	return backoff.Retry(func() error {
		err := MigrateUp(source, connStr)
		if err != nil {
			zap.S().Warnf("migrate fail, retrying: %v", err)
		}
		return err
	}, boff)
}
