package businessflow

import (
	"testing"

	"github.com/parcelgate/shipping-rates/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCountry(t *testing.T) {
	assert.Equal(t, "france", normalizeCountry(" France "))
	assert.Equal(t, "sri lanka", normalizeCountry("  Sri   Lanka "))
	assert.Equal(t, "united arab emirates", normalizeCountry("UNITED ARAB EMIRATES"))
	assert.Equal(t, "", normalizeCountry("   "))

	// Idempotent: normalizing twice changes nothing
	once := normalizeCountry(" New  Zealand ")
	assert.Equal(t, once, normalizeCountry(once))
}

func TestNormalizeZone(t *testing.T) {
	cases := map[string]string{
		"Zone 2.0": "2",
		"zone3":    "3",
		"ZONE 4.5": "4.5",
		"7":        "7",
		" 1.0 ":    "1",
	}
	for in, want := range cases {
		got, err := normalizeZone(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "Zone", "abc", "-1", "Zone -2", "1.2.3"} {
		_, err := normalizeZone(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseCurrencyCell(t *testing.T) {
	v, err := parseCurrencyCell("Rs 1,200")
	require.NoError(t, err)
	assert.Equal(t, 1200.0, v)

	v, err = parseCurrencyCell("$12.5")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	_, err = parseCurrencyCell("free")
	assert.Error(t, err)
}

func TestNormalizeZonesSheet(t *testing.T) {
	rows := [][]string{
		{"COUNTRIES", "ZONE"},
		{" France ", "Zone 2.0"},
		{"germany", "3"},
		{"", "4"},
		{"italy", "not-a-zone"},
	}

	sheet, err := normalizeSheet(rows, FileTypeZones, false)
	require.NoError(t, err)
	assert.Equal(t, models.RateTypeZone, sheet.RateType)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, Candidate{Country: "france", Zone: "2"}, sheet.Rows[0])
	assert.Equal(t, Candidate{Country: "germany", Zone: "3"}, sheet.Rows[1])
	assert.Len(t, sheet.SkippedRows, 2)
}

func TestNormalizeZonesSheetMissingColumn(t *testing.T) {
	rows := [][]string{
		{"COUNTRIES", "REGION"},
		{"france", "2"},
	}
	_, err := normalizeSheet(rows, FileTypeZones, false)
	require.Error(t, err)
	assert.True(t, IsMissingColumn(err))
	assert.True(t, IsClientError(err))
}

func TestNormalizeZoneRatesSheet(t *testing.T) {
	rows := [][]string{
		{"WEIGHT", "Zone1", "Zone 2"},
		{"0.5", "10", "12"},
		{"1", "15", ""},
		{"bad", "20", "21"},
	}

	sheet, err := normalizeSheet(rows, FileTypeZonesDocs, false)
	require.NoError(t, err)
	assert.Equal(t, models.RateTypeDocs, sheet.RateType)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, Candidate{Weight: 0.5, Zone: "1", Rate: 10}, sheet.Rows[0])
	assert.Equal(t, Candidate{Weight: 0.5, Zone: "2", Rate: 12}, sheet.Rows[1])
	assert.Equal(t, Candidate{Weight: 1, Zone: "1", Rate: 15}, sheet.Rows[2])
	assert.Len(t, sheet.SkippedRows, 1)

	// zones_pkg carries the non-docs rate type over the same layout
	sheet, err = normalizeSheet(rows, FileTypeZonesPkg, false)
	require.NoError(t, err)
	assert.Equal(t, models.RateTypeNonDocs, sheet.RateType)
}

func TestNormalizeZoneRatesSheetBadHeader(t *testing.T) {
	rows := [][]string{
		{"WEIGHT", "Region1"},
		{"0.5", "10"},
	}
	_, err := normalizeSheet(rows, FileTypeZonesDocs, false)
	require.Error(t, err)
	assert.True(t, IsMissingColumn(err))
}

func TestNormalizePkgDiscountSheet(t *testing.T) {
	rows := [][]string{
		{"COUNTRIES", "1 KG", "2.5 KG"},
		{"France", "8", "14"},
		{"Germany", "", "12"},
	}

	sheet, err := normalizeSheet(rows, FileTypePkgDiscount, false)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, Candidate{Country: "france", Weight: 1, Discount: "8"}, sheet.Rows[0])
	assert.Equal(t, Candidate{Country: "france", Weight: 2.5, Discount: "14"}, sheet.Rows[1])
	assert.Equal(t, Candidate{Country: "germany", Weight: 2.5, Discount: "12"}, sheet.Rows[2])
}

func TestNormalizeAddKGSheet(t *testing.T) {
	rows := [][]string{
		{"COUNTRIES", "fr", "de"},
		{"ADD KG", "1.5", "2.0"},
	}

	sheet, err := normalizeSheet(rows, FileTypeAddKG, false)
	require.NoError(t, err)
	assert.Equal(t, models.RateTypeAddKG, sheet.RateType)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, Candidate{Country: "fr", AddKG: 1.5}, sheet.Rows[0])
	assert.Equal(t, Candidate{Country: "de", AddKG: 2.0}, sheet.Rows[1])
}

func TestNormalizeAddKGSheetBadLabels(t *testing.T) {
	_, err := normalizeSheet([][]string{{"COUNTRIES", "fr"}}, FileTypeAddKG, false)
	require.Error(t, err)
	assert.True(t, IsMissingColumn(err))

	_, err = normalizeSheet([][]string{
		{"COUNTRIES", "fr"},
		{"SOMETHING", "1.5"},
	}, FileTypeAddKG, false)
	require.Error(t, err)
	assert.True(t, IsMissingColumn(err))
}

func TestNormalizeZoneAddKGSheet(t *testing.T) {
	rows := [][]string{
		{"ZONES", "Zone 1", "Zone 2", "no digits"},
		{"ADD KG", "1.5", "2", "3"},
	}

	sheet, err := normalizeSheet(rows, FileTypeZoneAddKG, false)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, Candidate{Zone: "1", AddKG: 1.5}, sheet.Rows[0])
	assert.Equal(t, Candidate{Zone: "2", AddKG: 2}, sheet.Rows[1])
	assert.Len(t, sheet.SkippedRows, 1)
}

func TestNormalizeSurchargesSheet(t *testing.T) {
	rows := [][]string{
		{"COUNTRIES", "SURCHARGES"},
		{"France", "Rs 1,200"},
		{"Germany", "$15.5"},
		{"Italy", "n/a"},
	}

	sheet, err := normalizeSheet(rows, FileTypeSurcharges, false)
	require.NoError(t, err)
	assert.Equal(t, models.RateTypeSurcharges, sheet.RateType)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, Candidate{Country: "france", Surcharge: 1200}, sheet.Rows[0])
	assert.Equal(t, Candidate{Country: "germany", Surcharge: 15.5}, sheet.Rows[1])
	assert.Len(t, sheet.SkippedRows, 1)
}

func TestNormalizeGridSheet(t *testing.T) {
	rows := [][]string{
		{"WEIGHT", " France ", "GERMANY"},
		{"0.5", "10", "12"},
		{"1", "", "18"},
	}

	sheet, err := normalizeSheet(rows, FileTypeRetail, false)
	require.NoError(t, err)
	assert.Equal(t, models.RateTypeNonDocs, sheet.RateType)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, Candidate{Country: "france", Weight: 0.5, Rate: 10}, sheet.Rows[0])
	assert.Equal(t, Candidate{Country: "germany", Weight: 0.5, Rate: 12}, sheet.Rows[1])
	assert.Equal(t, Candidate{Country: "germany", Weight: 1, Rate: 18}, sheet.Rows[2])

	// docs grid resolves the docs rate type
	sheet, err = normalizeSheet(rows, FileTypeDocs, false)
	require.NoError(t, err)
	assert.Equal(t, models.RateTypeDocs, sheet.RateType)

	// student grid keeps the flag
	sheet, err = normalizeSheet(rows, FileTypeStudent, true)
	require.NoError(t, err)
	assert.Equal(t, models.RateTypeNonDocs, sheet.RateType)
	assert.True(t, sheet.Student)
}

func TestNormalizeEmptySheet(t *testing.T) {
	_, err := normalizeSheet(nil, FileTypeRetail, false)
	require.Error(t, err)
	assert.True(t, IsClientError(err))
}

func TestValidateStudentFlag(t *testing.T) {
	assert.NoError(t, validateStudentFlag(FileTypeStudent, true))
	assert.NoError(t, validateStudentFlag(FileTypeRetail, false))

	err := validateStudentFlag(FileTypeStudent, false)
	assert.True(t, IsStudentFlagMismatch(err))

	err = validateStudentFlag(FileTypeRetail, true)
	assert.True(t, IsStudentFlagMismatch(err))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "2", formatRate(2.0))
	assert.Equal(t, "2.5", formatRate(2.5))
	assert.Equal(t, "1200", formatRate(1200))
}
