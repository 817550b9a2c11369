// Package businessflow contains the business logic for the shipping
// rates service: sheet normalization, import reconciliation, and rate
// queries.
package businessflow

import (
	"strconv"

	"github.com/parcelgate/shipping-rates/models"
)

// File type tags supplied by upload callers. The tag selects both the
// expected spreadsheet layout and the reconciliation policy. Tags not
// listed here fall through to the default country/weight/rate grid.
const (
	FileTypeZones        = "zones"
	FileTypeZonesDocs    = "zones_docs"
	FileTypeZonesPkg     = "zones_pkg"
	FileTypePkgDiscount  = "pkg_discount"
	FileTypeAddKG        = "addkg"
	FileTypeZoneAddKG    = "zoneaddkg"
	FileTypeSurcharges   = "surcharges"
	FileTypeRetail       = "retail"
	FileTypeDocs         = "docs"
	FileTypeStudent      = "student"
	FileTypeDocsDiscount = "docs_discount"
)

// ClientMetadata holds client-related information for logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// resolveRateType maps a file type tag to the semantic rate type its
// rows carry. Only meaningful for grid-shaped (default fallback) files.
func resolveRateType(fileType string) string {
	switch fileType {
	case FileTypeRetail, FileTypeStudent, FileTypePkgDiscount:
		return models.RateTypeNonDocs
	case FileTypeDocs, FileTypeDocsDiscount:
		return models.RateTypeDocs
	default:
		return models.RateTypeZone
	}
}

// formatRate renders a numeric rate the way it is stored in the
// text-encoded discount column: no exponent, no trailing zeros.
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
