package tests

import (
	"encoding/json"
	"testing"

	"github.com/parcelgate/shipping-rates/app/dto"
	"github.com/parcelgate/shipping-rates/models"
	"github.com/parcelgate/shipping-rates/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "shipping_rates", models.Rate{}.TableName())
	assert.Equal(t, "import_audits", models.ImportAudit{}.TableName())
}

func TestSupportedProvinces(t *testing.T) {
	assert.Equal(t, []string{"sindh", "punjab", "balochistan"}, utils.Provinces)

	for _, p := range utils.Provinces {
		assert.True(t, utils.IsSupportedProvince(p), p)
	}
	assert.False(t, utils.IsSupportedProvince("Sindh"))
	assert.False(t, utils.IsSupportedProvince(""))
}

// The wire shape keys are consumed verbatim by existing clients; a
// rename would silently break them.
func TestRateItemWireKeys(t *testing.T) {
	zone := "2"
	item := dto.RateItem{
		Country:      "france",
		Weight:       0.5,
		Type:         models.RateTypeNonDocs,
		RetailRate:   10,
		DiscountRate: models.NoDiscountSentinel,
		Zone:         &zone,
	}

	bs, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(bs, &raw))

	for _, key := range []string{
		"Country", "Weight", "Type", "Retail Rate", "Discount Rate",
		"Student", "Zone", "Addkg", "Surcharges",
	} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "No discount available", raw["Discount Rate"])
}
