package gormstore

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"recipebook/domain/config"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options configures the database connection
type Options struct {
	Driver        string
	DSN           string
	MaxOpenConns  int
	LogQueries    bool
	SlowThreshold time.Duration
}

// lenientConfig lifts length limits when rebuilding stored rows so that
// tightened limits never make existing recipes unreadable
var lenientConfig = func() *config.DomainConfig {
	c := config.DefaultDomainConfig()
	c.MaxTagsPerRecipe = math.MaxInt32
	c.MaxTagLength = math.MaxInt32
	c.MaxSourceTitleLength = math.MaxInt32
	c.MaxSourceURLLength = math.MaxInt32
	return c
}()

// Open connects to the database and migrates the schema
func Open(opts Options, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(opts.DSN)
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	level := gormlogger.Warn
	if opts.LogQueries {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(logger, opts.SlowThreshold).LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	switch {
	case isMemoryDSN(opts.DSN):
		// every connection to an in-memory database sees its own empty database
		sqlDB.SetMaxOpenConns(1)
	case opts.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("Database ready",
		zap.String("driver", opts.Driver),
		zap.Bool("logQueries", opts.LogQueries),
	)

	return db, nil
}

// Migrate creates or updates the recipe tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&recipeModel{}, &tagModel{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
