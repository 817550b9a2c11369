// Package models contains domain entities and business models for the shipping rates service
package models

import (
	"time"
)

// Rate type tags. A rate row is one priced line item for a
// country/weight combination; the type selects which tariff family the
// row belongs to.
const (
	RateTypeDocs       = "docs"
	RateTypeNonDocs    = "non-docs"
	RateTypeZone       = "zone"
	RateTypeAddKG      = "add-kg"
	RateTypeSurcharges = "sur-charges"
)

// NoDiscountSentinel is the textual value some upstream sheets use for
// "no discount"; it must round-trip unchanged through imports.
const NoDiscountSentinel = "No discount available"

// Rate represents one priced shipping line item.
// Country is stored lowercase-trimmed; uniqueness of
// (country, weight, type, student) is enforced by import logic, not by
// a database constraint. Zone is a numeric label stored as text with no
// trailing ".0". Table: shipping_rates (one table per province store).
type Rate struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Country      string   `gorm:"size:255;not null;index:idx_shipping_rates_country" json:"country"`
	Weight       float64  `gorm:"not null;index:idx_shipping_rates_weight" json:"weight"`
	Type         string   `gorm:"size:20;not null;index:idx_shipping_rates_type" json:"type"`
	OriginalRate float64  `gorm:"not null" json:"original_rate"`
	DiscountRate *string  `gorm:"size:64" json:"discount_rate,omitempty"`
	Source       string   `gorm:"size:64;not null" json:"source"`
	Student      bool     `gorm:"not null;default:false" json:"student"`
	Zone         *string  `gorm:"size:16" json:"zone,omitempty"`
	AddKG        *float64 `gorm:"column:addkg" json:"addkg,omitempty"`
	Surcharges   *float64 `json:"surcharges,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rate) TableName() string {
	return "shipping_rates"
}

// RateFilter represents filter criteria for rate queries. Country is
// compared case-insensitively; all other fields are exact.
type RateFilter struct {
	ID           *uint
	Country      *string
	Weight       *float64
	Type         *string
	Student      *bool
	Zone         *string
	OriginalRate *float64
	AddKG        *float64
	Source       *string
}
