package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

const (
	connectAttempts = 3
	connectDelay    = time.Second
	connectBackoff  = 2
)

type Options struct {
	Driver string
	DSN    string
}

// Open connects with a bounded retry (1s, 2s) and configures the pool.
func Open(ctx context.Context, opts Options, logg *logger.Logger) (*gorm.DB, error) {
	log := logg.With("component", "store")

	var dialector gorm.Dialector
	switch opts.Driver {
	case "", "postgres", "postgresql":
		dialector = postgres.Open(opts.DSN)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	gormLog := gormLogger.New(
		newStdLogger(),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var (
		db  *gorm.DB
		err error
	)
	wait := connectDelay
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = gorm.Open(dialector, &gorm.Config{Logger: gormLog})
		if err == nil {
			err = ping(ctx, db)
		}
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			log.Error("database connection failed", "attempts", attempt, "error", err)
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
		}
		log.Warn("database connection failed, retrying", "attempt", attempt, "wait", wait.String(), "error", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		wait *= connectBackoff
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql pool: %w", err)
	}
	if opts.Driver == "sqlite" || opts.Driver == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// IsSQLite reports whether db runs on the sqlite dialect.
func IsSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == "sqlite"
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func newStdLogger() gormLogger.Writer {
	return log.New(os.Stdout, "\r\n", log.LstdFlags)
}
