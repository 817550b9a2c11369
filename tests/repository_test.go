// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/google/uuid"
	"github.com/parcelgate/shipping-rates/models"
	"github.com/parcelgate/shipping-rates/repository"
	testingutil "github.com/parcelgate/shipping-rates/testing"
	"github.com/parcelgate/shipping-rates/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewRateRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SaveAndByID", func(t *testing.T) {
			row, err := fixtures.CreateRate("france", 0.5, models.RateTypeNonDocs, 10)
			require.NoError(t, err)
			assert.NotZero(t, row.ID)

			got, err := repo.ByID(ctx, row.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "france", got.Country)
		})

		t.Run("ByKey", func(t *testing.T) {
			_, err := fixtures.CreateRate("germany", 1, models.RateTypeNonDocs, 15)
			require.NoError(t, err)

			got, err := repo.ByKey(ctx, "germany", 1, models.RateTypeNonDocs, false)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, 15.0, got.OriginalRate)

			// Weight is part of the key
			got, err = repo.ByKey(ctx, "germany", 2, models.RateTypeNonDocs, false)
			require.NoError(t, err)
			assert.Nil(t, got)

			// So is the student flag
			got, err = repo.ByKey(ctx, "germany", 1, models.RateTypeNonDocs, true)
			require.NoError(t, err)
			assert.Nil(t, got)
		})

		t.Run("ByKeyMatchesCountryCaseInsensitively", func(t *testing.T) {
			_, err := fixtures.CreateRate("spain", 0.5, models.RateTypeDocs, 9)
			require.NoError(t, err)

			got, err := repo.ByKey(ctx, "spain", 0.5, models.RateTypeDocs, false)
			require.NoError(t, err)
			assert.NotNil(t, got)
		})

		t.Run("ByKeyAnyStudent", func(t *testing.T) {
			_, err := fixtures.CreateStudentRate("japan", 1, 20)
			require.NoError(t, err)

			got, err := repo.ByKeyAnyStudent(ctx, "japan", 1, models.RateTypeNonDocs)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, got.Student)
		})

		t.Run("ByKeyWithZone", func(t *testing.T) {
			_, err := fixtures.CreateZonedRate("china", 0.5, models.RateTypeDocs, 11, "2")
			require.NoError(t, err)

			got, err := repo.ByKeyWithZone(ctx, "china", 0.5, models.RateTypeDocs, "2")
			require.NoError(t, err)
			assert.NotNil(t, got)

			got, err = repo.ByKeyWithZone(ctx, "china", 0.5, models.RateTypeDocs, "3")
			require.NoError(t, err)
			assert.Nil(t, got)
		})

		t.Run("SurchargePlaceholder", func(t *testing.T) {
			// A priced surcharge row is not a placeholder
			err := testDB.DB.Create(&models.Rate{
				Country:      "india",
				Weight:       0,
				Type:         models.RateTypeSurcharges,
				OriginalRate: 5,
				Source:       "fixture",
			}).Error
			require.NoError(t, err)

			got, err := repo.SurchargePlaceholder(ctx, "india")
			require.NoError(t, err)
			assert.Nil(t, got)

			err = testDB.DB.Create(&models.Rate{
				Country: "india2",
				Weight:  0,
				Type:    models.RateTypeSurcharges,
				Source:  "fixture",
			}).Error
			require.NoError(t, err)

			got, err = repo.SurchargePlaceholder(ctx, "india2")
			require.NoError(t, err)
			assert.NotNil(t, got)

			// A zero addkg value marks a placeholder just like NULL
			err = testDB.DB.Create(&models.Rate{
				Country: "india3",
				Weight:  0,
				Type:    models.RateTypeSurcharges,
				Source:  "fixture",
				AddKG:   utils.ToPtr(0.0),
			}).Error
			require.NoError(t, err)

			got, err = repo.SurchargePlaceholder(ctx, "india3")
			require.NoError(t, err)
			assert.NotNil(t, got)
		})

		t.Run("ListCountriesByZone", func(t *testing.T) {
			_, err := fixtures.CreateZonedRate("austria", 0, models.RateTypeZone, 0, "9")
			require.NoError(t, err)
			_, err = fixtures.CreateZonedRate("belgium", 0, models.RateTypeZone, 0, "9")
			require.NoError(t, err)
			_, err = fixtures.CreateZonedRate("belgium", 0.5, models.RateTypeDocs, 12, "9")
			require.NoError(t, err)

			countries, err := repo.ListCountriesByZone(ctx, "9")
			require.NoError(t, err)
			assert.Equal(t, []string{"austria", "belgium"}, countries)
		})

		t.Run("InheritedZone", func(t *testing.T) {
			_, err := fixtures.CreateRate("norway", 0.5, models.RateTypeNonDocs, 30)
			require.NoError(t, err)
			_, err = fixtures.CreateZonedRate("norway", 1, models.RateTypeNonDocs, 35, "5")
			require.NoError(t, err)

			zone, err := repo.InheritedZone(ctx, "norway")
			require.NoError(t, err)
			require.NotNil(t, zone)
			assert.Equal(t, "5", *zone)

			zone, err = repo.InheritedZone(ctx, "nowhere")
			require.NoError(t, err)
			assert.Nil(t, zone)
		})

		t.Run("FilterByAddKG", func(t *testing.T) {
			err := testDB.DB.Create(&models.Rate{
				Country: "qatar",
				Weight:  0,
				Type:    models.RateTypeAddKG,
				Source:  "fixture",
				AddKG:   utils.ToPtr(2.5),
			}).Error
			require.NoError(t, err)

			rows, err := repo.ByFilter(ctx, models.RateFilter{AddKG: utils.ToPtr(2.5)}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "qatar", rows[0].Country)
		})

		t.Run("Update", func(t *testing.T) {
			row, err := fixtures.CreateRate("brazil", 0.5, models.RateTypeNonDocs, 40)
			require.NoError(t, err)

			row.OriginalRate = 45
			row.DiscountRate = utils.ToPtr("42")
			require.NoError(t, repo.Update(ctx, row))

			got, err := repo.ByID(ctx, row.ID)
			require.NoError(t, err)
			assert.Equal(t, 45.0, got.OriginalRate)
			require.NotNil(t, got.DiscountRate)
			assert.Equal(t, "42", *got.DiscountRate)
		})

		t.Run("DeleteAll", func(t *testing.T) {
			count, err := repo.Count(ctx, models.RateFilter{})
			require.NoError(t, err)
			assert.Positive(t, count)

			deleted, err := repo.DeleteAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, count, deleted)

			count, err = repo.Count(ctx, models.RateFilter{})
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestImportAuditRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewImportAuditRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		first := &models.ImportAudit{
			UUID:       uuid.New(),
			Province:   utils.ProvinceSindh,
			FileType:   "retail",
			FileName:   "retail.xlsx",
			SheetIndex: 1,
			Inserted:   10,
			Status:     models.ImportStatusCompleted,
		}
		require.NoError(t, repo.Save(ctx, first))

		second := &models.ImportAudit{
			UUID:       uuid.New(),
			Province:   utils.ProvinceSindh,
			FileType:   "zones",
			FileName:   "zones.xlsx",
			SheetIndex: 1,
			Status:     models.ImportStatusFailed,
			Error:      utils.ToPtr("boom"),
		}
		require.NoError(t, repo.Save(ctx, second))

		other := &models.ImportAudit{
			UUID:       uuid.New(),
			Province:   utils.ProvincePunjab,
			FileType:   "retail",
			FileName:   "retail.xlsx",
			SheetIndex: 1,
			Status:     models.ImportStatusCompleted,
		}
		require.NoError(t, repo.Save(ctx, other))

		t.Run("ListRecentNewestFirst", func(t *testing.T) {
			audits, err := repo.ListRecent(ctx, utils.ProvinceSindh, 10)
			require.NoError(t, err)
			require.Len(t, audits, 2)
			assert.Equal(t, second.UUID, audits[0].UUID)
			assert.Equal(t, first.UUID, audits[1].UUID)
		})

		t.Run("ListRecentHonorsLimit", func(t *testing.T) {
			audits, err := repo.ListRecent(ctx, utils.ProvinceSindh, 1)
			require.NoError(t, err)
			require.Len(t, audits, 1)
			assert.Equal(t, second.UUID, audits[0].UUID)
		})

		t.Run("CountByStatus", func(t *testing.T) {
			failed := models.ImportStatusFailed
			count, err := repo.Count(ctx, models.ImportAuditFilter{Status: &failed})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		return nil
	})
	require.NoError(t, err)
}
