// Package geo decides which geofence regions contain a location sample.
//
// Everything here is pure: no I/O, no shared state, safe to call from any
// goroutine. Inputs are not validated. A NaN coordinate yields a NaN
// distance, and NaN compares false against any radius, so malformed input
// reads as "not contained" rather than as an error.
package geo

import (
	"math"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371000

// Distance returns the great-circle distance in meters between a and b on a
// sphere of radius EarthRadiusMeters.
func Distance(a, b domain.Coordinate) float64 {
	phi1 := toRad(a.Lat)
	phi2 := toRad(b.Lat)
	dPhi := toRad(b.Lat - a.Lat)
	dLambda := toRad(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
