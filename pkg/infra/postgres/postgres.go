package postgres_wrapper

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	_ "github.com/lib/pq" // nolint
	"go.uber.org/zap"
	pg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// PostgresConfig configures the trade store. Credentials ride in the
// DSN; trade timestamps are always stored in UTC, so there is no
// per-deployment location knob.
type PostgresConfig struct {
	DataSource                 string          `yaml:"data_source"`
	SlaveSources               []string        `yaml:"slave_sources"`
	MaxOpenConns               int             `yaml:"max_open_conns"`
	MaxIdleConns               int             `yaml:"max_idle_conns"`
	ConnMaxLifeTimeMiliseconds int64           `yaml:"conn_max_life_time_ms"`
	MigrationConnURL           string          `yaml:"migration_conn_url"`
	LogLevel                   logger.LogLevel `yaml:"log_level"`
}

const connectRetryLimit = 2 * time.Minute

// InitPostgres opens the trade store. Reads (trade history queries) go
// to the replicas when configured; the persisting sink's bulk inserts
// always hit the primary.
func InitPostgres(cfg *PostgresConfig) (*gorm.DB, error) {
	logLevel := cfg.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(pg.Open(cfg.DataSource), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// The sink replays the same bulk-insert statement all day.
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if len(cfg.SlaveSources) > 0 {
		var replicas []gorm.Dialector
		for _, s := range cfg.SlaveSources {
			replicas = append(replicas, pg.Open(s))
		}
		zap.S().Debugf("register %d postgres replicas", len(replicas))
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("register postgres replicas: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifeTimeMiliseconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifeTimeMiliseconds) * time.Millisecond)
	}

	return db, nil
}

// InitPostgresWithBackoff retries InitPostgres until the database comes
// up or the retry window runs out. Used by the exchange daemon so it
// can start before postgres in a cold deployment.
func InitPostgresWithBackoff(cfg *PostgresConfig) (*gorm.DB, error) {
	var db *gorm.DB

	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = connectRetryLimit

	err := backoff.Retry(func() error {
		var err error
		db, err = InitPostgres(cfg)
		if err != nil {
			zap.S().Warnf("connect postgres fail, retrying: %v", err)
		}
		return err
	}, boff)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return db, nil
}
