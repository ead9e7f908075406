package geo

import "github.com/PritamSuryawanshii/FollowMee/module/core/domain"

// boundaryTolerance absorbs trigonometric rounding so that a point placed
// exactly on the circle still counts as inside.
const boundaryTolerance = 1e-6

// IsWithin reports whether the distance from the sample to the region
// center is at most Radius + boundaryTolerance (1e-6 m), so the edge counts
// as inside. NaN coordinates are never within. The active flag is not
// consulted.
func IsWithin(sample domain.LocationSample, region domain.GeofenceRegion) bool {
	return Distance(sample.Coord, region.Center) <= region.Radius+boundaryTolerance
}

// EvaluateAll checks the sample against every active region. Inactive
// regions are left out of the result entirely.
func EvaluateAll(sample domain.LocationSample, regions []domain.GeofenceRegion) domain.Membership {
	out := make(domain.Membership, len(regions))
	for _, r := range regions {
		if !r.Active {
			continue
		}
		out[r.ID] = IsWithin(sample, r)
	}
	return out
}
