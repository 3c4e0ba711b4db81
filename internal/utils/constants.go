package utils

const (
	StatusSuccess = "success"
	StatusError   = "error"

	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized"
	ErrForbidden        = "Forbidden"

	DefaultTimeZone = "UTC"

	EarthRadiusKM = 6371.0
	KMToMiles     = 0.621371

	// Geohash precisions used by the demand pipeline. Demand points are keyed
	// at ~1km cells, lanes at ~20km cells.
	DemandGeohashPrecision = 6
	LaneGeohashPrecision   = 4
)
