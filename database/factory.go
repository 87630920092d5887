package database

import (
	"context"
	"fmt"
	"log"

	"github.com/biffcrash1/image-viewer/config"
	"github.com/biffcrash1/image-viewer/database/models"
)

// Factory creates and owns the database provider.
type Factory struct {
	provider Provider
}

// NewFactory initializes the database provider.
func NewFactory(cfg *config.Config) (*Factory, error) {
	log.Println("Initializing database provider...")

	provider, err := NewGormProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}

	log.Printf("Database provider '%s' initialized successfully", provider.Name())

	return &Factory{
		provider: provider,
	}, nil
}

// GetProvider returns the database provider.
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close closes the database connection.
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}

// AutoMigrate migrates the catalog schema.
func (f *Factory) AutoMigrate() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}

	db := f.provider.DB()
	if err := db.SetupJoinTable(&models.Image{}, "Tags", &models.ImageTag{}); err != nil {
		return fmt.Errorf("failed to set up image_tags join table: %w", err)
	}
	if err := db.SetupJoinTable(&models.Tag{}, "Images", &models.ImageTag{}); err != nil {
		return fmt.Errorf("failed to set up image_tags join table: %w", err)
	}

	modelsToMigrate := []interface{}{
		&models.Image{},
		&models.Tag{},
	}

	log.Println("Running database auto migration...")
	if err := f.provider.AutoMigrate(modelsToMigrate...); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	log.Println("Database auto migration completed.")
	return nil
}

// Transaction executes fn inside a transaction.
func (f *Factory) Transaction(fn TxFunc) error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	return f.provider.Transaction(fn)
}

// TransactionWithContext executes fn inside a transaction bound to ctx.
func (f *Factory) TransactionWithContext(ctx context.Context, fn TxFunc) error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	return f.provider.TransactionWithContext(ctx, fn)
}

// Ping checks the database connection.
func (f *Factory) Ping() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	return f.provider.Ping()
}
