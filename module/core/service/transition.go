package service

import (
	"sort"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

// Diff compares the membership of the current evaluation against the
// previous one. Only regions present in curr are reported; a region that
// disappeared (deleted or deactivated) yields nothing. A region seen for the
// first time counts as previously outside.
func Diff(prev, curr domain.Membership) []domain.Transition {
	ids := make([]string, 0, len(curr))
	for id := range curr {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.Transition, 0, len(ids))
	for _, id := range ids {
		was, now := prev[id], curr[id]
		t := domain.TransitionUnchanged
		switch {
		case now && !was:
			t = domain.TransitionEntered
		case !now && was:
			t = domain.TransitionExited
		}
		out = append(out, domain.Transition{RegionID: id, Type: t})
	}
	return out
}
