// Package db opens the database and keeps its schema current.
package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/invoice-manager/internal/config"
	"github.com/diewo77/invoice-manager/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrUnknownDriver is returned for a DB_DRIVER other than postgres or sqlite.
var ErrUnknownDriver = errors.New("db: unknown driver")

const connectAttempts = 5

// Open connects with the configured driver. Postgres connections are retried
// to give the server time to start.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	level := gormlogger.Silent
	if cfg.Debug {
		level = gormlogger.Info
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(level)}
	log := logger.WithComponent("db")

	switch cfg.Driver {
	case "sqlite":
		conn, err := gorm.Open(sqlite.Open(cfg.ConnString()), gcfg)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite: %w", err)
		}
		return conn, nil
	case "postgres", "":
		dsn := NormalizeDSN(cfg.ConnString())
		log.Info().Str("dsn", MaskDSN(dsn)).Msg("connecting")
		var conn *gorm.DB
		var err error
		for i := 1; i <= connectAttempts; i++ {
			conn, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				break
			}
			log.Warn().Err(err).Int("attempt", i).Msg("connection failed, retrying")
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("db: connect after %d attempts: %w", connectAttempts, err)
		}
		if err := conn.Exec("SELECT 1").Error; err != nil {
			return nil, fmt.Errorf("db: ping: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
