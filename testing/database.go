// Package testing provides test utilities and database setup for testing the shipping rates service
package testing

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/parcelgate/shipping-rates/config"
	"github.com/parcelgate/shipping-rates/models"
	"github.com/parcelgate/shipping-rates/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB represents a single migrated sqlite database for repository tests
type TestDB struct {
	DB   *gorm.DB
	Path string
}

// SetupTestDB creates a migrated sqlite database under a unique temp path
func SetupTestDB() (*TestDB, error) {
	path := filepath.Join(os.TempDir(),
		fmt.Sprintf("shippingrates_test_%d_%d.db", time.Now().UnixNano(), rand.Intn(10000)))

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	if err := db.AutoMigrate(&models.Rate{}, &models.ImportAudit{}); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return &TestDB{DB: db, Path: path}, nil
}

// TeardownTestDB closes the connection and removes the database file
func (td *TestDB) TeardownTestDB() error {
	if sqlDB, err := td.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return os.Remove(td.Path)
}

// TestWithDB is a helper function that sets up a test database, runs the test function, and cleans up
func TestWithDB(testFunc func(*TestDB) error) error {
	testDB, err := SetupTestDB()
	if err != nil {
		return fmt.Errorf("failed to setup test database: %w", err)
	}
	defer func() {
		if cleanupErr := testDB.TeardownTestDB(); cleanupErr != nil {
			log.Printf("Warning: failed to cleanup test database: %v", cleanupErr)
		}
	}()

	return testFunc(testDB)
}

// TestStores wraps province stores backed by sqlite files in a temp dir,
// for flow-level tests that exercise the full import and query paths.
type TestStores struct {
	Stores *repository.GormProvinceStores
	Dir    string
}

// SetupTestStores creates a fresh store directory; province databases
// are created lazily on first Acquire, same as production.
func SetupTestStores() (*TestStores, error) {
	dir, err := os.MkdirTemp("", "shipping-rates-stores-")
	if err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}

	cfg := config.DatabaseConfig{
		Driver:          "sqlite",
		Dir:             dir,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}
	return &TestStores{Stores: repository.NewProvinceStores(cfg), Dir: dir}, nil
}

// TeardownTestStores removes every province database file
func (ts *TestStores) TeardownTestStores() error {
	return os.RemoveAll(ts.Dir)
}

// TestWithStores sets up province stores, runs the test function, and cleans up
func TestWithStores(testFunc func(*TestStores) error) error {
	ts, err := SetupTestStores()
	if err != nil {
		return fmt.Errorf("failed to setup test stores: %w", err)
	}
	defer func() {
		if cleanupErr := ts.TeardownTestStores(); cleanupErr != nil {
			log.Printf("Warning: failed to cleanup test stores: %v", cleanupErr)
		}
	}()

	return testFunc(ts)
}

// CreateTestContext creates a context for testing
func CreateTestContext() context.Context {
	return context.Background()
}
