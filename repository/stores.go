package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/glebarez/sqlite"
	"github.com/parcelgate/shipping-rates/config"
	"github.com/parcelgate/shipping-rates/models"
	"github.com/parcelgate/shipping-rates/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrUnknownProvince is returned when a request names a province that
// has no configured store.
var ErrUnknownProvince = errors.New("unknown province")

// StoreHandle is a request-scoped handle onto one province's store.
// Callers must Release it on every exit path.
type StoreHandle struct {
	Province string
	DB       *gorm.DB
}

// Release closes the underlying database connection. Safe to call via
// defer; errors on close are ignored because the request has already
// produced its response by then.
func (h *StoreHandle) Release() {
	if h == nil || h.DB == nil {
		return
	}
	if sqlDB, err := h.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// ProvinceStores maps a province identifier to a store handle. Handles
// are scoped to a single request: acquire on entry, Release on exit.
type ProvinceStores interface {
	Acquire(ctx context.Context, province string) (*StoreHandle, error)
}

// GormProvinceStores opens one gorm connection per Acquire, backed by
// either a per-province sqlite file or a per-province postgres
// database, depending on configuration.
type GormProvinceStores struct {
	cfg config.DatabaseConfig

	mu       sync.Mutex
	migrated map[string]bool
}

func NewProvinceStores(cfg config.DatabaseConfig) *GormProvinceStores {
	return &GormProvinceStores{
		cfg:      cfg,
		migrated: make(map[string]bool),
	}
}

func (s *GormProvinceStores) Acquire(ctx context.Context, province string) (*StoreHandle, error) {
	if !utils.IsSupportedProvince(province) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvince, province)
	}

	db, err := gorm.Open(s.dialector(province), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", province, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB for %s store: %w", province, err)
	}
	sqlDB.SetMaxOpenConns(s.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(s.cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	handle := &StoreHandle{Province: province, DB: db}

	if err := s.ensureMigrated(province, db); err != nil {
		handle.Release()
		return nil, err
	}

	return handle, nil
}

func (s *GormProvinceStores) dialector(province string) gorm.Dialector {
	if s.cfg.Driver == "postgres" {
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s_%s sslmode=%s",
			s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password, s.cfg.Name, province, s.cfg.SSLMode)
		return postgres.Open(dsn)
	}
	path := filepath.Join(s.cfg.Dir, fmt.Sprintf("shippingrates_%s.db", province))
	return sqlite.Open(path)
}

// ensureMigrated runs AutoMigrate once per province per process.
func (s *GormProvinceStores) ensureMigrated(province string, db *gorm.DB) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.migrated[province] {
		return nil
	}
	if err := db.AutoMigrate(&models.Rate{}, &models.ImportAudit{}); err != nil {
		return fmt.Errorf("failed to migrate %s store: %w", province, err)
	}
	s.migrated[province] = true
	return nil
}
