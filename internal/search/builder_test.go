package search

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/jonathan/apply-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearches_EveryPairOnce(t *testing.T) {
	tests := []struct {
		positions []string
		locations []string
	}{
		{[]string{"Go Engineer"}, []string{"Berlin"}},
		{[]string{"Go Engineer", "Backend Developer", "SRE"}, []string{"Berlin", "Remote"}},
		{[]string{"a", "b", "c", "d"}, []string{"1", "2", "3", "4", "5"}},
		{nil, []string{"Berlin"}},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%dx%d", len(tt.positions), len(tt.locations))
		t.Run(name, func(t *testing.T) {
			for seed := int64(0); seed < 5; seed++ {
				filters := &types.SearchFilterSet{Positions: tt.positions, Locations: tt.locations}
				searches := BuildSearches(filters, rand.New(rand.NewSource(seed)))

				require.Len(t, searches, len(tt.positions)*len(tt.locations))
				seen := make(map[Search]int)
				for _, s := range searches {
					seen[s]++
				}
				for _, p := range tt.positions {
					for _, l := range tt.locations {
						assert.Equal(t, 1, seen[Search{Position: p, Location: l}])
					}
				}
			}
		})
	}
}

func TestBuildSearches_NilRandKeepsOrder(t *testing.T) {
	filters := &types.SearchFilterSet{Positions: []string{"a", "b"}, Locations: []string{"x", "y"}}

	searches := BuildSearches(filters, nil)

	assert.Equal(t, []Search{{"a", "x"}, {"a", "y"}, {"b", "x"}, {"b", "y"}}, searches)
}

func TestBuildFilterQuery(t *testing.T) {
	tests := []struct {
		name    string
		filters types.SearchFilterSet
		want    string
	}{
		{
			name: "remote and week only",
			filters: types.SearchFilterSet{
				WorkTypes: map[string]bool{"remote": true},
				Date:      map[string]bool{"week": true},
			},
			want: "?f_WT=3&f_LF=f_AL&f_TPR=r604800",
		},
		{
			name:    "nothing enabled",
			filters: types.SearchFilterSet{},
			want:    "?f_LF=f_AL",
		},
		{
			name: "all categories",
			filters: types.SearchFilterSet{
				ExperienceLevel: map[string]bool{"entry": true, "associate": true, "director": false},
				JobTypes:        map[string]bool{"full-time": true, "contract": true},
				WorkTypes:       map[string]bool{"on-site": true, "hybrid": true},
				Date:            map[string]bool{"24 hours": true},
			},
			want: "?f_E=2,3&f_WT=1,2&f_JT=F,C&f_LF=f_AL&f_TPR=r86400",
		},
		{
			name: "all time means no date constraint",
			filters: types.SearchFilterSet{
				Date: map[string]bool{"all time": true, "month": true},
			},
			want: "?f_LF=f_AL",
		},
		{
			name: "unknown keys are ignored",
			filters: types.SearchFilterSet{
				WorkTypes: map[string]bool{"moon base": true},
			},
			want: "?f_LF=f_AL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFilterQuery(&tt.filters))
		})
	}
}

func TestBuildFilterQuery_RemoteWeekHasNoOtherCategories(t *testing.T) {
	filters := &types.SearchFilterSet{
		WorkTypes: map[string]bool{"remote": true},
		Date:      map[string]bool{"week": true},
	}

	query := BuildFilterQuery(filters)

	assert.Contains(t, query, "f_WT=3")
	assert.Contains(t, query, "f_TPR=r604800")
	assert.NotContains(t, query, "f_E=")
	assert.NotContains(t, query, "f_JT=")
}

func TestSearchURL(t *testing.T) {
	got := SearchURL("?f_LF=f_AL", Search{Position: "Go Engineer", Location: "New York"}, 2)

	assert.Equal(t, "https://www.linkedin.com/jobs/search/?f_LF=f_AL&keywords=Go+Engineer&location=New+York&start=50", got)
}
