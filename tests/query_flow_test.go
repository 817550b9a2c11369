package tests

import (
	"context"
	"testing"

	businessflow "github.com/parcelgate/shipping-rates/business_flow"
	"github.com/parcelgate/shipping-rates/models"
	testingutil "github.com/parcelgate/shipping-rates/testing"
	"github.com/parcelgate/shipping-rates/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProvinceRatesRendersSentinel(t *testing.T) {
	err := testingutil.TestWithStores(func(ts *testingutil.TestStores) error {
		importFlow := newImportFlow(ts)
		queryFlow := newQueryFlow(ts)
		ctx := context.Background()

		// zones placeholder rows carry no discount
		_, err := uploadSheet(t, importFlow, ts, utils.ProvinceSindh, businessflow.FileTypeZones, false, [][]any{
			{"COUNTRIES", "ZONE"},
			{"France", "2"},
		})
		require.NoError(t, err)

		resp, err := queryFlow.ListProvinceRates(ctx, utils.ProvinceSindh)
		require.NoError(t, err)
		assert.Equal(t, utils.ProvinceSindh, resp.Province)
		require.Len(t, resp.Rates, 1)

		item := resp.Rates[0]
		assert.Equal(t, "france", item.Country)
		assert.Equal(t, models.RateTypeZone, item.Type)
		assert.Equal(t, models.NoDiscountSentinel, item.DiscountRate)
		require.NotNil(t, item.Zone)
		assert.Equal(t, "2", *item.Zone)

		return nil
	})
	require.NoError(t, err)
}

func TestListAllRatesGroupsByProvince(t *testing.T) {
	err := testingutil.TestWithStores(func(ts *testingutil.TestStores) error {
		importFlow := newImportFlow(ts)
		queryFlow := newQueryFlow(ts)
		ctx := context.Background()

		_, err := uploadSheet(t, importFlow, ts, utils.ProvinceSindh, businessflow.FileTypeRetail, false, [][]any{
			{"WEIGHT", "France"},
			{0.5, 10},
		})
		require.NoError(t, err)
		_, err = uploadSheet(t, importFlow, ts, utils.ProvincePunjab, businessflow.FileTypeRetail, false, [][]any{
			{"WEIGHT", "Germany", "Italy"},
			{1, 15, 16},
		})
		require.NoError(t, err)

		resp, err := queryFlow.ListAllRates(ctx)
		require.NoError(t, err)
		require.Len(t, resp.Provinces, len(utils.Provinces))
		assert.Equal(t, 3, resp.Total)

		byProvince := map[string]int{}
		for _, group := range resp.Provinces {
			byProvince[group.Province] = group.Count
		}
		assert.Equal(t, 1, byProvince[utils.ProvinceSindh])
		assert.Equal(t, 2, byProvince[utils.ProvincePunjab])
		assert.Equal(t, 0, byProvince[utils.ProvinceBalochistan])

		return nil
	})
	require.NoError(t, err)
}

func TestClearProvinceLeavesStoreEmpty(t *testing.T) {
	err := testingutil.TestWithStores(func(ts *testingutil.TestStores) error {
		importFlow := newImportFlow(ts)
		queryFlow := newQueryFlow(ts)
		ctx := context.Background()

		_, err := uploadSheet(t, importFlow, ts, utils.ProvinceSindh, businessflow.FileTypeRetail, false, [][]any{
			{"WEIGHT", "France", "Germany"},
			{0.5, 10, 12},
		})
		require.NoError(t, err)

		cleared, err := queryFlow.ClearProvince(ctx, utils.ProvinceSindh)
		require.NoError(t, err)
		assert.Equal(t, int64(2), cleared.Deleted)

		resp, err := queryFlow.ListProvinceRates(ctx, utils.ProvinceSindh)
		require.NoError(t, err)
		assert.Empty(t, resp.Rates)
		assert.Zero(t, resp.Count)

		// Clearing again removes nothing
		cleared, err = queryFlow.ClearProvince(ctx, utils.ProvinceSindh)
		require.NoError(t, err)
		assert.Zero(t, cleared.Deleted)

		return nil
	})
	require.NoError(t, err)
}

func TestQueryFlowRejectsUnknownProvince(t *testing.T) {
	err := testingutil.TestWithStores(func(ts *testingutil.TestStores) error {
		queryFlow := newQueryFlow(ts)
		ctx := context.Background()

		_, err := queryFlow.ListProvinceRates(ctx, "atlantis")
		require.Error(t, err)
		assert.True(t, businessflow.IsClientError(err))

		_, err = queryFlow.ClearProvince(ctx, "atlantis")
		require.Error(t, err)
		assert.True(t, businessflow.IsClientError(err))

		_, err = queryFlow.ImportHistory(ctx, "atlantis", 10)
		require.Error(t, err)
		assert.True(t, businessflow.IsClientError(err))

		return nil
	})
	require.NoError(t, err)
}
