package repository

import (
	"fmt"

	"atasrp/internal/config"
	"atasrp/internal/infra"
)

// Open builds the store selected by STORE_BACKEND. The returned func
// releases it.
func Open(cfg *config.Config) (AtaRepository, func() error, error) {
	switch cfg.StoreBackend {
	case "json":
		repo, err := NewAtaFileRepository(cfg.JSONDataFile)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return nil }, nil
	case "gorm", "":
		db, err := infra.NewDatabase(cfg.DatabaseURL, Models()...)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return NewAtaRepository(db), sqlDB.Close, nil
	}
	return nil, nil, fmt.Errorf("repository: backend %q desconhecido", cfg.StoreBackend)
}
