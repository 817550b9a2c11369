// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/parcelgate/shipping-rates/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// RateRepository defines the matcher and query operations against one
// province's rate store. Country arguments are expected in normalized
// (lowercase-trimmed) form; matching on country is case-insensitive
// against stored values, everything else is exact.
type RateRepository interface {
	Repository[models.Rate, models.RateFilter]

	// ByKey finds at most one row matching the full
	// (country, weight, type, student) key.
	ByKey(ctx context.Context, country string, weight float64, rateType string, student bool) (*models.Rate, error)
	// ByKeyAnyStudent matches (country, weight, type) ignoring the
	// student flag; used only for zone propagation.
	ByKeyAnyStudent(ctx context.Context, country string, weight float64, rateType string) (*models.Rate, error)
	// ByKeyWithZone matches (country, weight, type, zone) with
	// student=false, for wide zone-rate sheets.
	ByKeyWithZone(ctx context.Context, country string, weight float64, rateType, zone string) (*models.Rate, error)
	// ByCountryAndType matches (country, type); zone narrows the match
	// when non-nil.
	ByCountryAndType(ctx context.Context, country, rateType string, zone *string) (*models.Rate, error)
	// SurchargePlaceholder finds the untouched placeholder row for a
	// country: weight=0, type=sur-charges, original_rate=0, addkg=0.
	SurchargePlaceholder(ctx context.Context, country string) (*models.Rate, error)

	// ListByCountry returns every row for a country regardless of
	// weight, type, or student flag.
	ListByCountry(ctx context.Context, country string) ([]*models.Rate, error)
	// ListCountriesByZone returns the distinct countries currently
	// assigned to a zone.
	ListCountriesByZone(ctx context.Context, zone string) ([]string, error)
	// InheritedZone returns the zone stored on any zone-bearing row for
	// the country, or nil when none exists.
	InheritedZone(ctx context.Context, country string) (*string, error)
	// InheritedZoneForKey returns the zone stored on a row matching
	// (country, weight, type) regardless of student flag.
	InheritedZoneForKey(ctx context.Context, country string, weight float64, rateType string) (*string, error)

	// ListAll returns every row in store-native (insertion) order.
	ListAll(ctx context.Context) ([]*models.Rate, error)
	// Update persists the given row in place (single-row commit).
	Update(ctx context.Context, rate *models.Rate) error
	// DeleteAll removes every row and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}

// ImportAuditRepository defines operations for the upload audit trail
type ImportAuditRepository interface {
	Repository[models.ImportAudit, models.ImportAuditFilter]
	ListRecent(ctx context.Context, province string, limit int) ([]*models.ImportAudit, error)
}
