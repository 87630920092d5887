package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/biffcrash1/image-viewer/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormProvider is the GORM-backed database provider.
type GormProvider struct {
	db   *gorm.DB
	path string
}

// NewGormProvider opens the SQLite catalog in WAL mode.
func NewGormProvider(cfg *config.Config) (*GormProvider, error) {
	path := cfg.CatalogPath()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	if config.IsDevelopment() {
		gormLogger = logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  true,
			},
		)
	}

	// WAL keeps readers unblocked during scans.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	log.Printf("Using catalog database file: %s", path)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB instance: %w", err)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return &GormProvider{
		db:   db,
		path: path,
	}, nil
}

// DB returns the underlying *gorm.DB instance.
func (p *GormProvider) DB() *gorm.DB {
	return p.db
}

// WithContext returns a *gorm.DB bound to ctx.
func (p *GormProvider) WithContext(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

// Transaction executes fn inside a transaction.
func (p *GormProvider) Transaction(fn TxFunc) error {
	return p.db.Transaction(fn)
}

// TransactionWithContext executes fn inside a transaction bound to ctx.
func (p *GormProvider) TransactionWithContext(ctx context.Context, fn TxFunc) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

// AutoMigrate migrates the schema for the given models.
func (p *GormProvider) AutoMigrate(models ...interface{}) error {
	return p.db.AutoMigrate(models...)
}

// SQLDB returns the underlying sql.DB.
func (p *GormProvider) SQLDB() (*sql.DB, error) {
	return p.db.DB()
}

// Ping checks the database connection.
func (p *GormProvider) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the database connection.
func (p *GormProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	log.Println("Closing catalog database connection...")
	return sqlDB.Close()
}

// Name returns the database driver name.
func (p *GormProvider) Name() string {
	return "sqlite"
}
