package utils

// Supported provinces. Each province owns an isolated rate store; the
// aggregated all-rates view is a concatenation of the three.
const (
	ProvinceSindh       = "sindh"
	ProvincePunjab      = "punjab"
	ProvinceBalochistan = "balochistan"
)

// Provinces lists the supported province identifiers in response order.
var Provinces = []string{ProvinceSindh, ProvincePunjab, ProvinceBalochistan}

// IsSupportedProvince reports whether p names one of the configured
// province stores.
func IsSupportedProvince(p string) bool {
	for _, known := range Provinces {
		if p == known {
			return true
		}
	}
	return false
}

// ContextKey is the type for request-scoped context values
type ContextKey string

// Request context keys used by handlers when building flow contexts
const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
