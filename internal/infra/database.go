package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the relational store behind dsn, runs AutoMigrate for
// models and then the idempotent SQL patches AutoMigrate cannot express.
//
// postgres:// and postgresql:// URLs use the pgx-backed postgres driver;
// anything else is treated as a SQLite file path (foreign keys switched on).
func NewDatabase(dsn string, models ...interface{}) (*gorm.DB, error) {
	dialector, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if db.Dialector.Name() == "sqlite" {
		// A single writer avoids SQLITE_BUSY under concurrent requests.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db, models...); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates the schema. Integration tests call it
// directly against a container database.
func RunMigrations(db *gorm.DB, models ...interface{}) error {
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return fmt.Errorf("AutoMigrate: %w", err)
		}
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

func dialectorFor(dsn string) (gorm.Dialector, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn), nil
	}
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == "" {
		return nil, fmt.Errorf("database: DATABASE_URL vazio")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return sqlite.Open(path + sep + "_foreign_keys=on"), nil
}

// applySchemaPatches runs statements that are valid on both SQLite and
// PostgreSQL and safe to re-run.
func applySchemaPatches(db *gorm.DB) error {
	if !db.Migrator().HasTable("atas") {
		return nil
	}
	patches := []string{
		// supplier search and grouped reports
		`CREATE INDEX IF NOT EXISTS idx_atas_fornecedor ON atas (fornecedor)`,
		`CREATE INDEX IF NOT EXISTS idx_ata_itens_ata_posicao ON ata_itens (ata_id, posicao)`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
