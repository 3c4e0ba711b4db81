package utils

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Base32 alphabet used by the geohash encoding.
const geohashBase32 = "0123456789bcdefghjkmnpqrstuvwxyz"

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

func IsValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func NormalizeCoordinates(lat, lng float64) (float64, float64) {
	if lat > 90 {
		lat = 90
	} else if lat < -90 {
		lat = -90
	}

	if lng > 180 {
		lng = 180
	} else if lng < -180 {
		lng = -180
	}

	return lat, lng
}

// EncodeGeohash encodes latitude and longitude into a geohash string of the
// given precision, alternating longitude/latitude bisection starting with
// longitude. NaN input degrades to the sentinel "0" instead of raising;
// out-of-range coordinates are clamped before encoding.
func EncodeGeohash(lat, lng float64, precision int) string {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		logrus.WithFields(logrus.Fields{"lat": lat, "lng": lng}).Error("invalid coordinates for geohash")
		return "0"
	}

	if precision < 1 {
		precision = 1
	}
	if precision > 12 {
		precision = 12
	}

	lat, lng = NormalizeCoordinates(lat, lng)

	latMin, latMax := -90.0, 90.0
	lngMin, lngMax := -180.0, 180.0

	geohash := make([]byte, 0, precision)
	bits := 0
	ch := 0
	evenBit := true

	for len(geohash) < precision {
		if evenBit {
			mid := (lngMin + lngMax) / 2
			if lng > mid {
				ch |= 1 << (4 - bits)
				lngMin = mid
			} else {
				lngMax = mid
			}
		} else {
			mid := (latMin + latMax) / 2
			if lat > mid {
				ch |= 1 << (4 - bits)
				latMin = mid
			} else {
				latMax = mid
			}
		}
		evenBit = !evenBit

		bits++
		if bits == 5 {
			geohash = append(geohash, geohashBase32[ch])
			bits = 0
			ch = 0
		}
	}

	return string(geohash)
}

// DecodeGeohash returns the center point of the geohash cell.
func DecodeGeohash(geohash string) (lat, lng float64) {
	latMin, latMax := -90.0, 90.0
	lngMin, lngMax := -180.0, 180.0

	evenBit := true
	for i := 0; i < len(geohash); i++ {
		idx := indexOfGeohashBase32(geohash[i])
		if idx == -1 {
			continue
		}

		for mask := 16; mask > 0; mask >>= 1 {
			if evenBit {
				mid := (lngMin + lngMax) / 2
				if idx&mask != 0 {
					lngMin = mid
				} else {
					lngMax = mid
				}
			} else {
				mid := (latMin + latMax) / 2
				if idx&mask != 0 {
					latMin = mid
				} else {
					latMax = mid
				}
			}
			evenBit = !evenBit
		}
	}

	return (latMin + latMax) / 2, (lngMin + lngMax) / 2
}

func indexOfGeohashBase32(ch byte) int {
	for i := 0; i < len(geohashBase32); i++ {
		if geohashBase32[i] == ch {
			return i
		}
	}
	return -1
}
