package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		prev domain.Membership
		curr domain.Membership
		want []domain.Transition
	}{
		{
			name: "first sighting inside",
			prev: nil,
			curr: domain.Membership{"home": true},
			want: []domain.Transition{{RegionID: "home", Type: domain.TransitionEntered}},
		},
		{
			name: "first sighting outside",
			prev: domain.Membership{},
			curr: domain.Membership{"home": false},
			want: []domain.Transition{{RegionID: "home", Type: domain.TransitionUnchanged}},
		},
		{
			name: "left region",
			prev: domain.Membership{"home": true},
			curr: domain.Membership{"home": false},
			want: []domain.Transition{{RegionID: "home", Type: domain.TransitionExited}},
		},
		{
			name: "stayed inside",
			prev: domain.Membership{"home": true},
			curr: domain.Membership{"home": true},
			want: []domain.Transition{{RegionID: "home", Type: domain.TransitionUnchanged}},
		},
		{
			name: "region gone yields nothing",
			prev: domain.Membership{"home": true, "gym": true},
			curr: domain.Membership{"home": true},
			want: []domain.Transition{{RegionID: "home", Type: domain.TransitionUnchanged}},
		},
		{
			name: "sorted by region id",
			prev: domain.Membership{"b": true},
			curr: domain.Membership{"c": true, "a": false, "b": false},
			want: []domain.Transition{
				{RegionID: "a", Type: domain.TransitionUnchanged},
				{RegionID: "b", Type: domain.TransitionExited},
				{RegionID: "c", Type: domain.TransitionEntered},
			},
		},
		{
			name: "empty",
			prev: domain.Membership{"home": true},
			curr: domain.Membership{},
			want: []domain.Transition{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.prev, tt.curr)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Diff() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
