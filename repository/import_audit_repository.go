package repository

import (
	"context"
	"fmt"

	"github.com/parcelgate/shipping-rates/models"
	"gorm.io/gorm"
)

// ImportAuditRepositoryImpl implements ImportAuditRepository
type ImportAuditRepositoryImpl struct {
	*BaseRepository[models.ImportAudit, models.ImportAuditFilter]
}

// NewImportAuditRepository creates an import audit repository bound to
// an acquired store handle's connection.
func NewImportAuditRepository(db *gorm.DB) ImportAuditRepository {
	return &ImportAuditRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ImportAudit, models.ImportAuditFilter](db),
	}
}

func (r *ImportAuditRepositoryImpl) applyFilter(query *gorm.DB, filter models.ImportAuditFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Province != nil {
		query = query.Where("province = ?", *filter.Province)
	}
	if filter.FileType != nil {
		query = query.Where("file_type = ?", *filter.FileType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// ByFilter retrieves import audits based on filter criteria
func (r *ImportAuditRepositoryImpl) ByFilter(ctx context.Context, filter models.ImportAuditFilter, orderBy string, limit, offset int) ([]*models.ImportAudit, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ImportAudit{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var audits []*models.ImportAudit
	if err := query.Find(&audits).Error; err != nil {
		return nil, fmt.Errorf("failed to find import audits by filter: %w", err)
	}
	return audits, nil
}

// Count returns the number of import audits matching the filter
func (r *ImportAuditRepositoryImpl) Count(ctx context.Context, filter models.ImportAuditFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ImportAudit{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count import audits: %w", err)
	}
	return count, nil
}

// ListRecent returns the most recent audits for a province, newest first.
func (r *ImportAuditRepositoryImpl) ListRecent(ctx context.Context, province string, limit int) ([]*models.ImportAudit, error) {
	return r.ByFilter(ctx, models.ImportAuditFilter{Province: &province}, "id DESC", limit, 0)
}
