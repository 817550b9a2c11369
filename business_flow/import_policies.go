package businessflow

import (
	"context"
	"fmt"
	"math"

	"github.com/parcelgate/shipping-rates/models"
	"github.com/parcelgate/shipping-rates/repository"
	"github.com/parcelgate/shipping-rates/utils"
)

// surchargeTolerance is the absolute difference below which a stored
// surcharge is considered equal to the incoming one.
const surchargeTolerance = 0.001

// importOutcome accumulates per-row reconciliation results for one
// sheet. Every insert and update commits on its own; a failed row
// aborts the import and leaves the earlier rows in place.
type importOutcome struct {
	Inserted int
	Updated  int
	Skipped  int
	SkipLog  []string
}

func (o *importOutcome) skip(format string, args ...any) {
	o.Skipped++
	o.SkipLog = append(o.SkipLog, fmt.Sprintf(format, args...))
}

// applyFunc reconciles one candidate row under a file type's policy.
type applyFunc func(context.Context, repository.RateRepository, Candidate, *NormalizedSheet, string, *importOutcome) error

// importPolicies maps each structured file type to its reconciliation
// policy. File types without an entry reconcile as a default grid.
var importPolicies = map[string]applyFunc{
	FileTypeZones:       applyZoneAssignment,
	FileTypeZonesDocs:   applyZoneRate,
	FileTypeZonesPkg:    applyZoneRate,
	FileTypePkgDiscount: applyDiscount,
	FileTypeAddKG:       applyAddKG,
	FileTypeZoneAddKG:   applyZoneAddKG,
	FileTypeSurcharges:  applySurcharge,
}

func policyFor(fileType string) applyFunc {
	if apply, ok := importPolicies[fileType]; ok {
		return apply
	}
	return applyGridRate
}

// reconcile applies the file type's reconciliation policy to every
// normalized candidate row.
func reconcile(ctx context.Context, repo repository.RateRepository, sheet *NormalizedSheet, source string) (*importOutcome, error) {
	out := &importOutcome{SkipLog: append([]string(nil), sheet.SkippedRows...)}
	out.Skipped += len(sheet.SkippedRows)

	apply := policyFor(sheet.FileType)
	for _, c := range sheet.Rows {
		if err := apply(ctx, repo, c, sheet, source, out); err != nil {
			return out, NewBusinessErrorf(CodeImportFailed,
				"import stopped at country=%q weight=%s zone=%q", err,
				c.Country, formatRate(c.Weight), c.Zone)
		}
	}
	return out, nil
}

// applyZoneAssignment stamps a country's zone onto every row the
// country already has, or creates a zone placeholder row when the
// country is unknown. Re-zoned rows drop the student flag.
func applyZoneAssignment(ctx context.Context, repo repository.RateRepository, c Candidate, sheet *NormalizedSheet, source string, out *importOutcome) error {
	rows, err := repo.ListByCountry(ctx, c.Country)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		placeholder := &models.Rate{
			Country: c.Country,
			Weight:  0,
			Type:    models.RateTypeZone,
			Source:  source,
			Zone:    utils.ToPtr(c.Zone),
		}
		if err := repo.Save(ctx, placeholder); err != nil {
			return err
		}
		out.Inserted++
		return nil
	}
	for _, row := range rows {
		if row.Zone != nil && *row.Zone == c.Zone {
			out.skip("%s: zone %s already assigned (row %d)", c.Country, c.Zone, row.ID)
			continue
		}
		row.Zone = utils.ToPtr(c.Zone)
		row.Student = false
		if err := repo.Update(ctx, row); err != nil {
			return err
		}
		out.Updated++
	}
	return nil
}

// applyZoneRate fans a (weight, zone, rate) row out over every country
// currently assigned to the zone.
func applyZoneRate(ctx context.Context, repo repository.RateRepository, c Candidate, sheet *NormalizedSheet, source string, out *importOutcome) error {
	countries, err := repo.ListCountriesByZone(ctx, c.Zone)
	if err != nil {
		return err
	}
	if len(countries) == 0 {
		out.skip("zone %s: no countries assigned, %s kg rate dropped", c.Zone, formatRate(c.Weight))
		return nil
	}
	for _, country := range countries {
		existing, err := repo.ByKeyWithZone(ctx, country, c.Weight, sheet.RateType, c.Zone)
		if err != nil {
			return err
		}
		if existing == nil {
			rate := &models.Rate{
				Country:      country,
				Weight:       c.Weight,
				Type:         sheet.RateType,
				OriginalRate: c.Rate,
				DiscountRate: utils.ToPtr("0"),
				Source:       source,
				Zone:         utils.ToPtr(c.Zone),
			}
			if err := repo.Save(ctx, rate); err != nil {
				return err
			}
			out.Inserted++
			continue
		}
		if existing.OriginalRate == c.Rate &&
			existing.DiscountRate != nil && *existing.DiscountRate == "0" {
			out.skip("%s: %s kg zone %s rate unchanged", country, formatRate(c.Weight), c.Zone)
			continue
		}
		existing.OriginalRate = c.Rate
		existing.DiscountRate = utils.ToPtr("0")
		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		out.Updated++
	}
	return nil
}

// applyDiscount writes a discount onto an existing non-docs base row.
// Discounts never create rows: a missing base row is a skip.
func applyDiscount(ctx context.Context, repo repository.RateRepository, c Candidate, sheet *NormalizedSheet, source string, out *importOutcome) error {
	existing, err := repo.ByKey(ctx, c.Country, c.Weight, models.RateTypeNonDocs, false)
	if err != nil {
		return err
	}
	if existing == nil {
		out.skip("%s: no base rate at %s kg to discount", c.Country, formatRate(c.Weight))
		return nil
	}
	if existing.DiscountRate != nil && *existing.DiscountRate == c.Discount {
		out.skip("%s: %s kg discount unchanged", c.Country, formatRate(c.Weight))
		return nil
	}
	existing.DiscountRate = utils.ToPtr(c.Discount)
	if err := repo.Update(ctx, existing); err != nil {
		return err
	}
	out.Updated++
	return nil
}

func applyAddKG(ctx context.Context, repo repository.RateRepository, c Candidate, sheet *NormalizedSheet, source string, out *importOutcome) error {
	existing, err := repo.ByCountryAndType(ctx, c.Country, models.RateTypeAddKG, nil)
	if err != nil {
		return err
	}
	if existing == nil {
		rate := &models.Rate{
			Country: c.Country,
			Weight:  0,
			Type:    models.RateTypeAddKG,
			Source:  source,
			AddKG:   utils.ToPtr(c.AddKG),
		}
		if err := repo.Save(ctx, rate); err != nil {
			return err
		}
		out.Inserted++
		return nil
	}
	if existing.AddKG != nil && *existing.AddKG == c.AddKG {
		out.skip("%s: add kg value unchanged", c.Country)
		return nil
	}
	existing.AddKG = utils.ToPtr(c.AddKG)
	if err := repo.Update(ctx, existing); err != nil {
		return err
	}
	out.Updated++
	return nil
}

// applyZoneAddKG fans a zone-keyed per-kilogram increment out over the
// zone's countries.
func applyZoneAddKG(ctx context.Context, repo repository.RateRepository, c Candidate, sheet *NormalizedSheet, source string, out *importOutcome) error {
	countries, err := repo.ListCountriesByZone(ctx, c.Zone)
	if err != nil {
		return err
	}
	if len(countries) == 0 {
		out.skip("zone %s: no countries assigned, add kg value dropped", c.Zone)
		return nil
	}
	for _, country := range countries {
		existing, err := repo.ByCountryAndType(ctx, country, models.RateTypeAddKG, utils.ToPtr(c.Zone))
		if err != nil {
			return err
		}
		if existing == nil {
			rate := &models.Rate{
				Country: country,
				Weight:  0,
				Type:    models.RateTypeAddKG,
				Source:  source,
				Zone:    utils.ToPtr(c.Zone),
				AddKG:   utils.ToPtr(c.AddKG),
			}
			if err := repo.Save(ctx, rate); err != nil {
				return err
			}
			out.Inserted++
			continue
		}
		if existing.AddKG != nil && *existing.AddKG == c.AddKG {
			out.skip("%s: zone %s add kg value unchanged", country, c.Zone)
			continue
		}
		existing.AddKG = utils.ToPtr(c.AddKG)
		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		out.Updated++
	}
	return nil
}

// applySurcharge stores a flat surcharge on the country's surcharge
// placeholder row, inheriting the country's zone when the row has none.
func applySurcharge(ctx context.Context, repo repository.RateRepository, c Candidate, sheet *NormalizedSheet, source string, out *importOutcome) error {
	existing, err := repo.SurchargePlaceholder(ctx, c.Country)
	if err != nil {
		return err
	}
	if existing == nil {
		zone, err := repo.InheritedZone(ctx, c.Country)
		if err != nil {
			return err
		}
		rate := &models.Rate{
			Country:    c.Country,
			Weight:     0,
			Type:       models.RateTypeSurcharges,
			Source:     source,
			Zone:       zone,
			Surcharges: utils.ToPtr(c.Surcharge),
		}
		if err := repo.Save(ctx, rate); err != nil {
			return err
		}
		out.Inserted++
		return nil
	}
	if existing.Surcharges != nil && math.Abs(*existing.Surcharges-c.Surcharge) < surchargeTolerance {
		out.skip("%s: surcharge unchanged", c.Country)
		return nil
	}
	existing.Surcharges = utils.ToPtr(c.Surcharge)
	if existing.Zone == nil {
		zone, err := repo.InheritedZone(ctx, c.Country)
		if err != nil {
			return err
		}
		existing.Zone = zone
	}
	if err := repo.Update(ctx, existing); err != nil {
		return err
	}
	out.Updated++
	return nil
}

// applyGridRate reconciles one cell of the default country/weight grid
// against the (country, weight, type, student) key.
func applyGridRate(ctx context.Context, repo repository.RateRepository, c Candidate, sheet *NormalizedSheet, source string, out *importOutcome) error {
	existing, err := repo.ByKey(ctx, c.Country, c.Weight, sheet.RateType, sheet.Student)
	if err != nil {
		return err
	}
	if existing == nil {
		zone, err := repo.InheritedZoneForKey(ctx, c.Country, c.Weight, sheet.RateType)
		if err != nil {
			return err
		}
		rate := &models.Rate{
			Country:      c.Country,
			Weight:       c.Weight,
			Type:         sheet.RateType,
			OriginalRate: c.Rate,
			DiscountRate: utils.ToPtr(formatRate(c.Rate)),
			Source:       source,
			Student:      sheet.Student,
			Zone:         zone,
		}
		if err := repo.Save(ctx, rate); err != nil {
			return err
		}
		out.Inserted++
		return nil
	}

	unchanged := existing.OriginalRate == c.Rate &&
		(existing.DiscountRate == nil || *existing.DiscountRate == formatRate(c.Rate))
	if unchanged {
		out.skip("%s: %s kg %s rate unchanged", c.Country, formatRate(c.Weight), sheet.RateType)
		return nil
	}

	existing.OriginalRate = c.Rate
	if existing.DiscountRate == nil {
		existing.DiscountRate = utils.ToPtr(formatRate(c.Rate))
	}
	if existing.Zone == nil {
		zone, err := repo.InheritedZoneForKey(ctx, c.Country, c.Weight, sheet.RateType)
		if err != nil {
			return err
		}
		existing.Zone = zone
	}
	if err := repo.Update(ctx, existing); err != nil {
		return err
	}
	out.Updated++
	return nil
}
