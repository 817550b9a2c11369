package businessflow

import (
	"context"

	"github.com/parcelgate/shipping-rates/app/dto"
	"github.com/parcelgate/shipping-rates/config"
	"github.com/parcelgate/shipping-rates/models"
	"github.com/parcelgate/shipping-rates/repository"
	"github.com/parcelgate/shipping-rates/utils"
	"github.com/redis/go-redis/v9"
)

// RateQueryFlow handles the read side: province listings, the combined
// listing, store wipes, and the import audit trail.
type RateQueryFlow interface {
	ListProvinceRates(ctx context.Context, province string) (*dto.ProvinceRatesResponse, error)
	ListAllRates(ctx context.Context) (*dto.AllRatesResponse, error)
	ClearProvince(ctx context.Context, province string) (*dto.ClearDatabaseResponse, error)
	ImportHistory(ctx context.Context, province string, limit int) (*dto.ImportHistoryResponse, error)
}

type RateQueryFlowImpl struct {
	stores repository.ProvinceStores
	cache  *rateCache
}

// NewRateQueryFlow creates a new query flow instance. rc may be nil
// when caching is disabled.
func NewRateQueryFlow(stores repository.ProvinceStores, rc *redis.Client, cacheCfg *config.CacheConfig) RateQueryFlow {
	return &RateQueryFlowImpl{
		stores: stores,
		cache:  newRateCache(rc, cacheCfg),
	}
}

func (f *RateQueryFlowImpl) ListProvinceRates(ctx context.Context, province string) (*dto.ProvinceRatesResponse, error) {
	if items, ok := f.cache.get(ctx, province); ok {
		return &dto.ProvinceRatesResponse{Province: province, Count: len(items), Rates: items}, nil
	}

	items, err := f.loadProvince(ctx, province)
	if err != nil {
		return nil, err
	}
	f.cache.set(ctx, province, items)

	return &dto.ProvinceRatesResponse{Province: province, Count: len(items), Rates: items}, nil
}

// ListAllRates concatenates every province's listing. A province whose
// store cannot be read contributes an empty group with an error note
// instead of failing the whole aggregate.
func (f *RateQueryFlowImpl) ListAllRates(ctx context.Context) (*dto.AllRatesResponse, error) {
	resp := &dto.AllRatesResponse{}
	for _, province := range utils.Provinces {
		items, err := f.loadProvince(ctx, province)
		if err != nil {
			msg := err.Error()
			resp.Provinces = append(resp.Provinces, dto.ProvinceGroup{
				Province: province,
				Rates:    []dto.RateItem{},
				Error:    &msg,
			})
			continue
		}
		resp.Provinces = append(resp.Provinces, dto.ProvinceGroup{
			Province: province,
			Count:    len(items),
			Rates:    items,
		})
		resp.Total += len(items)
	}
	return resp, nil
}

// ClearProvince wipes one province store and reports the count removed.
func (f *RateQueryFlowImpl) ClearProvince(ctx context.Context, province string) (*dto.ClearDatabaseResponse, error) {
	handle, err := f.stores.Acquire(ctx, province)
	if err != nil {
		return nil, NewBusinessErrorf(CodeUnknownProvince,
			"no rate store for province %q", err, province)
	}
	defer handle.Release()

	deleted, err := repository.NewRateRepository(handle.DB).DeleteAll(ctx)
	if err != nil {
		return nil, NewBusinessErrorf(CodeClearFailed,
			"failed to clear %s rate store", err, province)
	}
	f.cache.invalidate(ctx, province)

	return &dto.ClearDatabaseResponse{Province: province, Deleted: deleted}, nil
}

func (f *RateQueryFlowImpl) ImportHistory(ctx context.Context, province string, limit int) (*dto.ImportHistoryResponse, error) {
	handle, err := f.stores.Acquire(ctx, province)
	if err != nil {
		return nil, NewBusinessErrorf(CodeUnknownProvince,
			"no rate store for province %q", err, province)
	}
	defer handle.Release()

	if limit <= 0 {
		limit = 50
	}
	audits, err := repository.NewImportAuditRepository(handle.DB).ListRecent(ctx, province, limit)
	if err != nil {
		return nil, NewBusinessErrorf(CodeQueryFailed,
			"failed to list imports for %s", err, province)
	}

	resp := &dto.ImportHistoryResponse{Province: province, Imports: []dto.ImportRecord{}}
	for _, a := range audits {
		resp.Imports = append(resp.Imports, dto.ImportRecord{
			ImportID:   a.UUID.String(),
			FileType:   a.FileType,
			FileName:   a.FileName,
			SheetIndex: a.SheetIndex,
			Inserted:   a.Inserted,
			Updated:    a.Updated,
			Skipped:    a.Skipped,
			Status:     a.Status,
			Error:      a.Error,
			CreatedAt:  a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return resp, nil
}

func (f *RateQueryFlowImpl) loadProvince(ctx context.Context, province string) ([]dto.RateItem, error) {
	handle, err := f.stores.Acquire(ctx, province)
	if err != nil {
		return nil, NewBusinessErrorf(CodeUnknownProvince,
			"no rate store for province %q", err, province)
	}
	defer handle.Release()

	rates, err := repository.NewRateRepository(handle.DB).ListAll(ctx)
	if err != nil {
		return nil, NewBusinessErrorf(CodeQueryFailed,
			"failed to list rates for %s", err, province)
	}

	items := make([]dto.RateItem, 0, len(rates))
	for _, r := range rates {
		items = append(items, toRateItem(r))
	}
	return items, nil
}

// toRateItem maps a stored row to its wire shape. A missing discount
// renders as the historical sentinel text, never as null.
func toRateItem(r *models.Rate) dto.RateItem {
	discount := models.NoDiscountSentinel
	if r.DiscountRate != nil && *r.DiscountRate != "" {
		discount = *r.DiscountRate
	}
	return dto.RateItem{
		Country:      r.Country,
		Weight:       r.Weight,
		Type:         r.Type,
		RetailRate:   r.OriginalRate,
		DiscountRate: discount,
		Student:      r.Student,
		Zone:         r.Zone,
		AddKG:        r.AddKG,
		Surcharges:   r.Surcharges,
	}
}
