package businessflow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/parcelgate/shipping-rates/models"
)

// Candidate is one normalized row produced from an uploaded sheet.
// Which fields are populated depends on the file type's layout.
type Candidate struct {
	Country   string
	Weight    float64
	Zone      string
	Rate      float64
	Discount  string
	AddKG     float64
	Surcharge float64
}

// NormalizedSheet is the output of sheet normalization: the resolved
// semantic rate type, the candidate rows, and the skip log accumulated
// for rows that failed row-level parsing. Row-level failures are never
// fatal; structural failures abort normalization entirely.
type NormalizedSheet struct {
	FileType    string
	RateType    string
	Student     bool
	Rows        []Candidate
	SkippedRows []string
}

var (
	zoneHeaderRe  = regexp.MustCompile(`(?i)^zone\s*([0-9]+(?:\.[0-9]+)?)$`)
	kgHeaderRe    = regexp.MustCompile(`(?i)^([0-9]+(?:\.[0-9]+)?)\s*kg$`)
	zoneDigitsRe  = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
	numericZoneRe = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)?$`)
)

// normalizeSheet converts a raw cell grid into normalized candidates
// according to the declared file type's layout.
func normalizeSheet(rows [][]string, fileType string, student bool) (*NormalizedSheet, error) {
	if len(rows) == 0 {
		return nil, NewBusinessError(CodeSheetStructure, "sheet contains no rows", ErrEmptySheet)
	}

	switch fileType {
	case FileTypeZones:
		return normalizeZonesSheet(rows)
	case FileTypeZonesDocs:
		return normalizeZoneRatesSheet(rows, fileType, models.RateTypeDocs)
	case FileTypeZonesPkg:
		return normalizeZoneRatesSheet(rows, fileType, models.RateTypeNonDocs)
	case FileTypePkgDiscount:
		return normalizePkgDiscountSheet(rows)
	case FileTypeAddKG:
		return normalizeAddKGSheet(rows)
	case FileTypeZoneAddKG:
		return normalizeZoneAddKGSheet(rows)
	case FileTypeSurcharges:
		return normalizeSurchargesSheet(rows)
	default:
		return normalizeGridSheet(rows, fileType, student)
	}
}

// normalizeCountry trims, collapses internal whitespace, and lowercases
// a country name. Idempotent.
func normalizeCountry(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// normalizeZone strips an optional "Zone" prefix (case-insensitive),
// requires the remainder to be a non-negative number, and renders
// integral values without a decimal point ("Zone 2.0" -> "2").
func normalizeZone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty zone")
	}
	if len(s) >= 4 && strings.EqualFold(s[:4], "zone") {
		s = strings.TrimSpace(s[4:])
	}
	if !numericZoneRe.MatchString(s) {
		return "", fmt.Errorf("malformed zone label %q", raw)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("malformed zone label %q", raw)
	}
	return formatRate(f), nil
}

// parseNumericCell parses a numeric cell value; thousands separators
// are tolerated.
func parseNumericCell(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty cell")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

// parseCurrencyCell parses a numeric cell that may carry a currency
// symbol or code ("$12", "Rs 1,200").
func parseCurrencyCell(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	for _, sym := range []string{"$", "€", "£", "Rs", "rs", "RS", "PKR", "pkr"} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	return parseNumericCell(cleaned)
}

// cell returns the trimmed cell at index i, tolerating ragged rows.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// findColumn returns the index of the header cell equal to name,
// case-insensitively and whitespace-collapsed, or -1.
func findColumn(header []string, name string) int {
	want := normalizeCountry(name)
	for i := range header {
		if normalizeCountry(header[i]) == want {
			return i
		}
	}
	return -1
}

func rowContent(row []string) string {
	return strings.Join(row, " | ")
}

func normalizeZonesSheet(rows [][]string) (*NormalizedSheet, error) {
	header := rows[0]
	ci := findColumn(header, "COUNTRIES")
	zi := findColumn(header, "ZONE")
	if ci < 0 || zi < 0 {
		return nil, NewBusinessError(CodeSheetStructure,
			"zones sheet must contain COUNTRIES and ZONE columns", ErrMissingColumn)
	}

	out := &NormalizedSheet{FileType: FileTypeZones, RateType: models.RateTypeZone}
	for i, row := range rows[1:] {
		rowNum := i + 2
		country := normalizeCountry(cell(row, ci))
		if country == "" {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("row %d [%s]: empty country", rowNum, rowContent(row)))
			continue
		}
		zone, err := normalizeZone(cell(row, zi))
		if err != nil {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("row %d [%s]: %v", rowNum, rowContent(row), err))
			continue
		}
		out.Rows = append(out.Rows, Candidate{Country: country, Zone: zone})
	}
	return out, nil
}

// normalizeZoneRatesSheet handles the wide zones_docs/zones_pkg layout:
// first column WEIGHT, remaining columns Zone<number>, reshaped long.
func normalizeZoneRatesSheet(rows [][]string, fileType, rateType string) (*NormalizedSheet, error) {
	header := rows[0]
	if normalizeCountry(cell(header, 0)) != "weight" {
		return nil, NewBusinessError(CodeSheetStructure,
			"zone rate sheet must have WEIGHT as its first column", ErrMissingColumn)
	}

	zones := make(map[int]string)
	for j := 1; j < len(header); j++ {
		label := cell(header, j)
		if label == "" {
			continue
		}
		m := zoneHeaderRe.FindStringSubmatch(label)
		if m == nil {
			return nil, NewBusinessErrorf(CodeSheetStructure,
				"column %q does not match the Zone<number> pattern", ErrMissingColumn, label)
		}
		zone, err := normalizeZone(m[1])
		if err != nil {
			return nil, NewBusinessErrorf(CodeSheetStructure,
				"column %q does not carry a valid zone number", ErrMissingColumn, label)
		}
		zones[j] = zone
	}
	if len(zones) == 0 {
		return nil, NewBusinessError(CodeSheetStructure,
			"zone rate sheet has no zone columns", ErrMissingColumn)
	}

	out := &NormalizedSheet{FileType: fileType, RateType: rateType}
	for i, row := range rows[1:] {
		rowNum := i + 2
		weightCell := cell(row, 0)
		weight, err := parseNumericCell(weightCell)
		if err != nil {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("row %d [%s]: invalid weight %q", rowNum, rowContent(row), weightCell))
			continue
		}
		for j := 1; j < len(header); j++ {
			zone, ok := zones[j]
			if !ok {
				continue
			}
			rateCell := cell(row, j)
			if rateCell == "" {
				continue
			}
			rate, err := parseNumericCell(rateCell)
			if err != nil {
				out.SkippedRows = append(out.SkippedRows,
					fmt.Sprintf("row %d [%s]: invalid rate %q for zone %s", rowNum, rowContent(row), rateCell, zone))
				continue
			}
			out.Rows = append(out.Rows, Candidate{Weight: weight, Zone: zone, Rate: rate})
		}
	}
	return out, nil
}

// normalizePkgDiscountSheet handles the pkg_discount layout: first
// column COUNTRIES, remaining columns "<number> KG", reshaped long.
func normalizePkgDiscountSheet(rows [][]string) (*NormalizedSheet, error) {
	header := rows[0]
	if normalizeCountry(cell(header, 0)) != "countries" {
		return nil, NewBusinessError(CodeSheetStructure,
			"discount sheet must have COUNTRIES as its first column", ErrMissingColumn)
	}

	weights := make(map[int]float64)
	for j := 1; j < len(header); j++ {
		label := cell(header, j)
		if label == "" {
			continue
		}
		m := kgHeaderRe.FindStringSubmatch(label)
		if m == nil {
			return nil, NewBusinessErrorf(CodeSheetStructure,
				"column %q does not match the \"<number> KG\" pattern", ErrMissingColumn, label)
		}
		w, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, NewBusinessErrorf(CodeSheetStructure,
				"column %q does not carry a valid weight", ErrMissingColumn, label)
		}
		weights[j] = w
	}
	if len(weights) == 0 {
		return nil, NewBusinessError(CodeSheetStructure,
			"discount sheet has no weight columns", ErrMissingColumn)
	}

	out := &NormalizedSheet{FileType: FileTypePkgDiscount, RateType: models.RateTypeNonDocs}
	for i, row := range rows[1:] {
		rowNum := i + 2
		country := normalizeCountry(cell(row, 0))
		if country == "" {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("row %d [%s]: empty country", rowNum, rowContent(row)))
			continue
		}
		for j := 1; j < len(header); j++ {
			weight, ok := weights[j]
			if !ok {
				continue
			}
			discountCell := cell(row, j)
			if discountCell == "" {
				continue
			}
			discount, err := parseNumericCell(discountCell)
			if err != nil {
				out.SkippedRows = append(out.SkippedRows,
					fmt.Sprintf("row %d [%s]: invalid discount %q at %s kg", rowNum, rowContent(row), discountCell, formatRate(weight)))
				continue
			}
			out.Rows = append(out.Rows, Candidate{Country: country, Weight: weight, Discount: formatRate(discount)})
		}
	}
	return out, nil
}

// normalizeAddKGSheet handles the two-row header-less addkg layout:
// row 0 is the COUNTRIES label followed by country names, row 1 is the
// "ADD KG" label followed by numeric values, aligned by position.
func normalizeAddKGSheet(rows [][]string) (*NormalizedSheet, error) {
	if len(rows) < 2 {
		return nil, NewBusinessError(CodeSheetStructure,
			"addkg sheet must contain two rows (COUNTRIES and ADD KG)", ErrMissingColumn)
	}
	labels, values := rows[0], rows[1]
	if normalizeCountry(cell(labels, 0)) != "countries" {
		return nil, NewBusinessError(CodeSheetStructure,
			"addkg sheet must start with the COUNTRIES label", ErrMissingColumn)
	}
	if normalizeCountry(cell(values, 0)) != "add kg" {
		return nil, NewBusinessError(CodeSheetStructure,
			"addkg sheet must carry the ADD KG label on its second row", ErrMissingColumn)
	}

	out := &NormalizedSheet{FileType: FileTypeAddKG, RateType: models.RateTypeAddKG}
	width := len(labels)
	if len(values) > width {
		width = len(values)
	}
	for i := 1; i < width; i++ {
		country := normalizeCountry(cell(labels, i))
		valueCell := cell(values, i)
		if country == "" && valueCell == "" {
			continue
		}
		if country == "" {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("column %d [%s]: missing country label", i+1, valueCell))
			continue
		}
		v, err := parseNumericCell(valueCell)
		if err != nil {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("column %d [%s]: invalid add kg value %q", i+1, country, valueCell))
			continue
		}
		out.Rows = append(out.Rows, Candidate{Country: country, AddKG: v})
	}
	return out, nil
}

// normalizeZoneAddKGSheet handles the zone-keyed variant of the addkg
// layout: the header row holds zone labels, digits extracted.
func normalizeZoneAddKGSheet(rows [][]string) (*NormalizedSheet, error) {
	if len(rows) < 2 {
		return nil, NewBusinessError(CodeSheetStructure,
			"zoneaddkg sheet must contain two rows (zone labels and ADD KG)", ErrMissingColumn)
	}
	labels, values := rows[0], rows[1]
	if normalizeCountry(cell(values, 0)) != "add kg" {
		return nil, NewBusinessError(CodeSheetStructure,
			"zoneaddkg sheet must carry the ADD KG label on its second row", ErrMissingColumn)
	}

	out := &NormalizedSheet{FileType: FileTypeZoneAddKG, RateType: models.RateTypeAddKG}
	width := len(labels)
	if len(values) > width {
		width = len(values)
	}
	for i := 1; i < width; i++ {
		label := cell(labels, i)
		valueCell := cell(values, i)
		if label == "" && valueCell == "" {
			continue
		}
		digits := zoneDigitsRe.FindString(label)
		if digits == "" {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("column %d [%s]: no zone number in label", i+1, label))
			continue
		}
		zone, err := normalizeZone(digits)
		if err != nil {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("column %d [%s]: %v", i+1, label, err))
			continue
		}
		v, err := parseNumericCell(valueCell)
		if err != nil {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("column %d [zone %s]: invalid add kg value %q", i+1, zone, valueCell))
			continue
		}
		out.Rows = append(out.Rows, Candidate{Zone: zone, AddKG: v})
	}
	return out, nil
}

func normalizeSurchargesSheet(rows [][]string) (*NormalizedSheet, error) {
	header := rows[0]
	ci := findColumn(header, "COUNTRIES")
	si := findColumn(header, "SURCHARGES")
	if ci < 0 || si < 0 {
		return nil, NewBusinessError(CodeSheetStructure,
			"surcharges sheet must contain COUNTRIES and SURCHARGES columns", ErrMissingColumn)
	}

	out := &NormalizedSheet{FileType: FileTypeSurcharges, RateType: models.RateTypeSurcharges}
	for i, row := range rows[1:] {
		rowNum := i + 2
		country := normalizeCountry(cell(row, ci))
		if country == "" {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("row %d [%s]: empty country", rowNum, rowContent(row)))
			continue
		}
		surchargeCell := cell(row, si)
		v, err := parseCurrencyCell(surchargeCell)
		if err != nil {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("row %d [%s]: invalid surcharge %q", rowNum, rowContent(row), surchargeCell))
			continue
		}
		out.Rows = append(out.Rows, Candidate{Country: country, Surcharge: v})
	}
	return out, nil
}

// normalizeGridSheet handles the default wide layout shared by retail,
// docs, student, and discount grids: first column WEIGHT, remaining
// columns country names, reshaped long.
func normalizeGridSheet(rows [][]string, fileType string, student bool) (*NormalizedSheet, error) {
	header := rows[0]
	if normalizeCountry(cell(header, 0)) != "weight" {
		return nil, NewBusinessError(CodeSheetStructure,
			"rate sheet must have WEIGHT as its first column", ErrMissingColumn)
	}

	countries := make(map[int]string)
	for j := 1; j < len(header); j++ {
		if c := normalizeCountry(cell(header, j)); c != "" {
			countries[j] = c
		}
	}
	if len(countries) == 0 {
		return nil, NewBusinessError(CodeSheetStructure,
			"rate sheet has no country columns", ErrMissingColumn)
	}

	out := &NormalizedSheet{
		FileType: fileType,
		RateType: resolveRateType(fileType),
		Student:  student,
	}
	for i, row := range rows[1:] {
		rowNum := i + 2
		weightCell := cell(row, 0)
		weight, err := parseNumericCell(weightCell)
		if err != nil {
			out.SkippedRows = append(out.SkippedRows,
				fmt.Sprintf("row %d [%s]: invalid weight %q", rowNum, rowContent(row), weightCell))
			continue
		}
		for j := 1; j < len(header); j++ {
			country, ok := countries[j]
			if !ok {
				continue
			}
			rateCell := cell(row, j)
			if rateCell == "" {
				continue
			}
			rate, err := parseNumericCell(rateCell)
			if err != nil {
				out.SkippedRows = append(out.SkippedRows,
					fmt.Sprintf("row %d [%s]: invalid rate %q for %s", rowNum, rowContent(row), rateCell, country))
				continue
			}
			out.Rows = append(out.Rows, Candidate{Country: country, Weight: weight, Rate: rate})
		}
	}
	return out, nil
}
