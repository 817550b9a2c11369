// Package testing provides test utilities and database setup for testing the shipping rates service
package testing

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/parcelgate/shipping-rates/models"
	"github.com/parcelgate/shipping-rates/utils"
	"github.com/xuri/excelize/v2"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateRate inserts a plain grid rate row
func (tf *TestFixtures) CreateRate(country string, weight float64, rateType string, rate float64) (*models.Rate, error) {
	row := &models.Rate{
		Country:      country,
		Weight:       weight,
		Type:         rateType,
		OriginalRate: rate,
		DiscountRate: utils.ToPtr(fmt.Sprintf("%v", rate)),
		Source:       "fixture",
	}
	if err := tf.DB.DB.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create rate fixture: %w", err)
	}
	return row, nil
}

// CreateZonedRate inserts a rate row carrying a zone assignment
func (tf *TestFixtures) CreateZonedRate(country string, weight float64, rateType string, rate float64, zone string) (*models.Rate, error) {
	row := &models.Rate{
		Country:      country,
		Weight:       weight,
		Type:         rateType,
		OriginalRate: rate,
		Source:       "fixture",
		Zone:         utils.ToPtr(zone),
	}
	if err := tf.DB.DB.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create zoned rate fixture: %w", err)
	}
	return row, nil
}

// CreateStudentRate inserts a student-flagged non-docs row
func (tf *TestFixtures) CreateStudentRate(country string, weight float64, rate float64) (*models.Rate, error) {
	row := &models.Rate{
		Country:      country,
		Weight:       weight,
		Type:         models.RateTypeNonDocs,
		OriginalRate: rate,
		Source:       "fixture",
		Student:      true,
	}
	if err := tf.DB.DB.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create student rate fixture: %w", err)
	}
	return row, nil
}

// WriteWorkbook materializes a cell grid as a single-sheet xlsx file
// under dir and returns its path. Cell values keep their Go types so
// numeric cells round-trip as numbers.
func WriteWorkbook(dir string, rows [][]any) (string, error) {
	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return "", err
			}
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				return "", err
			}
		}
	}

	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("fixture-%d.xlsx", rand.Intn(1000000)))
	if err := wb.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook fixture: %w", err)
	}
	return path, nil
}
