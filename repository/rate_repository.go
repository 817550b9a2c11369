package repository

import (
	"context"
	"fmt"

	"github.com/parcelgate/shipping-rates/models"
	"gorm.io/gorm"
)

// RateRepositoryImpl implements RateRepository against one province store
type RateRepositoryImpl struct {
	*BaseRepository[models.Rate, models.RateFilter]
}

// NewRateRepository creates a rate repository bound to an acquired
// store handle's connection.
func NewRateRepository(db *gorm.DB) RateRepository {
	return &RateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Rate, models.RateFilter](db),
	}
}

// applyFilter applies filter criteria to a GORM query
func (r *RateRepositoryImpl) applyFilter(query *gorm.DB, filter models.RateFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Country != nil {
		query = query.Where("LOWER(country) = ?", *filter.Country)
	}
	if filter.Weight != nil {
		query = query.Where("weight = ?", *filter.Weight)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Student != nil {
		query = query.Where("student = ?", *filter.Student)
	}
	if filter.Zone != nil {
		query = query.Where("zone = ?", *filter.Zone)
	}
	if filter.OriginalRate != nil {
		query = query.Where("original_rate = ?", *filter.OriginalRate)
	}
	if filter.AddKG != nil {
		query = query.Where("addkg = ?", *filter.AddKG)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	return query
}

// ByFilter retrieves rates based on filter criteria
func (r *RateRepositoryImpl) ByFilter(ctx context.Context, filter models.RateFilter, orderBy string, limit, offset int) ([]*models.Rate, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Rate{}), filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rates []*models.Rate
	if err := query.Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to find rates by filter: %w", err)
	}
	return rates, nil
}

// Count returns the number of rates matching the filter
func (r *RateRepositoryImpl) Count(ctx context.Context, filter models.RateFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Rate{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count rates: %w", err)
	}
	return count, nil
}

// first runs the filter and consumes at most one match, oldest row
// first. Loose keys can match several rows; callers that need the full
// set go through ByFilter instead.
func (r *RateRepositoryImpl) first(ctx context.Context, filter models.RateFilter) (*models.Rate, error) {
	rates, err := r.ByFilter(ctx, filter, "id ASC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, nil
	}
	return rates[0], nil
}

func (r *RateRepositoryImpl) ByKey(ctx context.Context, country string, weight float64, rateType string, student bool) (*models.Rate, error) {
	return r.first(ctx, models.RateFilter{
		Country: &country,
		Weight:  &weight,
		Type:    &rateType,
		Student: &student,
	})
}

func (r *RateRepositoryImpl) ByKeyAnyStudent(ctx context.Context, country string, weight float64, rateType string) (*models.Rate, error) {
	return r.first(ctx, models.RateFilter{
		Country: &country,
		Weight:  &weight,
		Type:    &rateType,
	})
}

func (r *RateRepositoryImpl) ByKeyWithZone(ctx context.Context, country string, weight float64, rateType, zone string) (*models.Rate, error) {
	student := false
	return r.first(ctx, models.RateFilter{
		Country: &country,
		Weight:  &weight,
		Type:    &rateType,
		Zone:    &zone,
		Student: &student,
	})
}

func (r *RateRepositoryImpl) ByCountryAndType(ctx context.Context, country, rateType string, zone *string) (*models.Rate, error) {
	return r.first(ctx, models.RateFilter{
		Country: &country,
		Type:    &rateType,
		Zone:    zone,
	})
}

// SurchargePlaceholder finds the country's unpriced surcharge carrier
// row. Placeholder rows store addkg as NULL or 0 depending on how old
// the import that created them is, so both forms must match.
func (r *RateRepositoryImpl) SurchargePlaceholder(ctx context.Context, country string) (*models.Rate, error) {
	db := r.getDB(ctx)

	var rate models.Rate
	err := db.Model(&models.Rate{}).
		Where("LOWER(country) = ?", country).
		Where("weight = 0 AND type = ? AND original_rate = 0", models.RateTypeSurcharges).
		Where("addkg = 0 OR addkg IS NULL").
		Order("id ASC").
		First(&rate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up surcharge placeholder for %s: %w", country, err)
	}
	return &rate, nil
}

func (r *RateRepositoryImpl) ListByCountry(ctx context.Context, country string) ([]*models.Rate, error) {
	return r.ByFilter(ctx, models.RateFilter{Country: &country}, "id ASC", 0, 0)
}

func (r *RateRepositoryImpl) ListCountriesByZone(ctx context.Context, zone string) ([]string, error) {
	db := r.getDB(ctx)

	var countries []string
	err := db.Model(&models.Rate{}).
		Distinct("country").
		Where("zone = ?", zone).
		Order("country ASC").
		Pluck("country", &countries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list countries for zone %s: %w", zone, err)
	}
	return countries, nil
}

func (r *RateRepositoryImpl) InheritedZone(ctx context.Context, country string) (*string, error) {
	db := r.getDB(ctx)

	var rate models.Rate
	err := db.Model(&models.Rate{}).
		Where("LOWER(country) = ?", country).
		Where("zone IS NOT NULL AND zone <> ''").
		Order("id ASC").
		First(&rate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up inherited zone for %s: %w", country, err)
	}
	return rate.Zone, nil
}

func (r *RateRepositoryImpl) InheritedZoneForKey(ctx context.Context, country string, weight float64, rateType string) (*string, error) {
	existing, err := r.ByKeyAnyStudent(ctx, country, weight, rateType)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	return existing.Zone, nil
}

func (r *RateRepositoryImpl) ListAll(ctx context.Context) ([]*models.Rate, error) {
	return r.ByFilter(ctx, models.RateFilter{}, "id ASC", 0, 0)
}

// Update persists the row in place. Like Save, each call commits on its
// own unless the context carries a transaction: one commit per changed
// row by design.
func (r *RateRepositoryImpl) Update(ctx context.Context, rate *models.Rate) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(rate).Error
	if err != nil {
		return fmt.Errorf("failed to update rate %d: %w", rate.ID, err)
	}
	return nil
}

// DeleteAll wipes the store unconditionally and reports the count removed.
func (r *RateRepositoryImpl) DeleteAll(ctx context.Context) (int64, error) {
	db := r.getDB(ctx)

	res := db.Where("1 = 1").Delete(&models.Rate{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear rate store: %w", res.Error)
	}
	return res.RowsAffected, nil
}
