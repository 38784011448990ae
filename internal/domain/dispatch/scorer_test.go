package dispatch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propcare/internal/domain/cases"
	"propcare/internal/domain/policy"
	"propcare/internal/domain/roster"
)

func policyFor(mode policy.InvolvementMode) *policy.Policy {
	p := policy.Default("org-1")
	p.InvolvementMode = mode
	return p
}

func TestCategoryMatches(t *testing.T) {
	tests := []struct {
		caseCat, contractorCat string
		want                   bool
	}{
		{"Leaking kitchen faucet", "Plumbing", true},
		{"Plumbing", "plumbing & drains", true},
		{"Electrical", "Electrician", true},
		{"Breaker keeps tripping", "Electric", true},
		{"Furnace not heating", "HVAC", true},
		{"Broken dishwasher", "Appliance repair", true},
		{"Garage door stuck", "Garage Door Services", true},
		{"General maintenance", "Handyman", true},
		{"Leaking kitchen faucet", "Electrical", false},
		{"Roofing", "Painting", false},
		{"", "Plumbing", false},
		{"Plumbing", "  ", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CategoryMatches(tc.caseCat, tc.contractorCat), "%q vs %q", tc.caseCat, tc.contractorCat)
	}
}

func TestScenarioCSpecialtyAndRationale(t *testing.T) {
	c := &cases.Case{Title: "Leaking kitchen faucet", Category: "Leaking kitchen faucet"}
	plumber := roster.Contractor{ID: "v-1", Source: roster.SourceVendor, Category: "Plumbing", IsAvailable: true}

	got := Rank(c, []roster.Contractor{plumber}, policyFor(policy.ModeBalanced))
	require.Len(t, got, 1)
	assert.True(t, got[0].MatchedCategory)
	assert.Equal(t, 30+20, got[0].Score)
	assert.Contains(t, got[0].Rationale, "Matches")

	specialist := roster.Contractor{ID: "p-2", Source: roster.SourceLinked, Category: "General", Specialties: []string{"Pipe repair"}}
	got = Rank(c, []roster.Contractor{specialist}, policyFor(policy.ModeHandsOn))
	require.Len(t, got, 1)
	assert.False(t, got[0].MatchedCategory)
	assert.True(t, got[0].MatchedSpecialty)
	assert.Equal(t, 60, got[0].Score)
}

func TestScoreWeightsPerMode(t *testing.T) {
	c := &cases.Case{Category: "Plumbing"}
	full := roster.Contractor{
		ID: "v-1", Source: roster.SourceVendor, Category: "Plumbing",
		IsAvailable: true, IsTrusted: true, InTrustedSet: true, IsFavorite: true, IsPreferred: true,
	}
	assert.Equal(t, 60+40+50+30+10, Score(c, full, WeightsFor(policy.ModeHandsOn)).Score)
	assert.Equal(t, 30+20+100+50+10, Score(c, full, WeightsFor(policy.ModeBalanced)).Score)
	assert.Equal(t, 30+20+200+150+10, Score(c, full, WeightsFor(policy.ModeHandsOff)).Score)

	linked := full
	linked.Source = roster.SourceLinked
	assert.Equal(t, 60+40+50+30, Score(c, linked, WeightsFor(policy.ModeHandsOn)).Score, "preferred only counts for vendors")
}

func TestRationalePrecedence(t *testing.T) {
	c := &cases.Case{Category: "Plumbing"}
	w := WeightsFor(policy.ModeBalanced)

	both := roster.Contractor{InTrustedSet: true, IsTrusted: true, IsFavorite: true, Category: "Plumbing", IsAvailable: true}
	assert.Equal(t, "Trusted favorite contractor", Score(c, both, w).Rationale)

	trusted := roster.Contractor{InTrustedSet: true, IsTrusted: true, Category: "Plumbing"}
	assert.Equal(t, "Trusted contractor", Score(c, trusted, w).Rationale)

	fav := roster.Contractor{IsFavorite: true, IsTrusted: true, Category: "Plumbing"}
	assert.Equal(t, "Favorite contractor", Score(c, fav, w).Rationale)

	avail := roster.Contractor{Category: "Roofing", IsAvailable: true}
	assert.Equal(t, "Available now", Score(c, avail, w).Rationale)

	none := roster.Contractor{Category: "Roofing"}
	assert.Equal(t, "No strong signal", Score(c, none, w).Rationale)
}

func makePool(n int) []roster.Contractor {
	pool := make([]roster.Contractor, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, roster.Contractor{
			ID:          fmt.Sprintf("c-%d", i),
			Source:      roster.SourceVendor,
			Category:    []string{"Plumbing", "Electrical", "Roofing"}[i%3],
			IsAvailable: i%2 == 0,
			IsFavorite:  i%5 == 0,
			IsTrusted:   i%5 == 0 || i%7 == 0,
		})
	}
	return pool
}

func TestRankCapAndOrder(t *testing.T) {
	c := &cases.Case{Category: "Plumbing"}
	for _, mode := range []policy.InvolvementMode{policy.ModeHandsOn, policy.ModeBalanced, policy.ModeHandsOff} {
		for n := 0; n <= 12; n++ {
			got := Rank(c, makePool(n), policyFor(mode))
			want := n
			if want > MaxRecommendations {
				want = MaxRecommendations
			}
			if mode == policy.ModeHandsOff && n > 0 {
				// pre-filter may shrink the pool
				assert.LessOrEqual(t, len(got), want)
				assert.NotEmpty(t, got)
			} else {
				assert.Len(t, got, want, "mode=%s n=%d", mode, n)
			}
			for i := 1; i < len(got); i++ {
				assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
			}
		}
	}
}

func TestRankTiesKeepEnumerationOrder(t *testing.T) {
	c := &cases.Case{Category: "Plumbing"}
	pool := []roster.Contractor{
		{ID: "first", Category: "Plumbing"},
		{ID: "second", Category: "Plumbing"},
		{ID: "third", Category: "Plumbing"},
		{ID: "fourth", Category: "Plumbing"},
	}
	got := Rank(c, pool, policyFor(policy.ModeBalanced))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{got[0].ID, got[1].ID, got[2].ID})

	again := Rank(c, pool, policyFor(policy.ModeBalanced))
	assert.Equal(t, got, again)
}

func TestHandsOffPrefiltersAndFallsBack(t *testing.T) {
	c := &cases.Case{Category: "Plumbing"}
	pool := []roster.Contractor{
		{ID: "match", Category: "Plumbing", IsAvailable: true, IsPreferred: true, Source: roster.SourceVendor},
		{ID: "trusted", Category: "Roofing", IsTrusted: true, InTrustedSet: true},
	}
	got := Rank(c, pool, policyFor(policy.ModeHandsOff))
	require.Len(t, got, 1)
	assert.Equal(t, "trusted", got[0].ID)

	untrusted := []roster.Contractor{{ID: "a", Category: "Plumbing"}, {ID: "b", Category: "Roofing"}}
	got = Rank(c, untrusted, policyFor(policy.ModeHandsOff))
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
}

func TestRankEmptyPool(t *testing.T) {
	got := Rank(&cases.Case{Category: "Plumbing"}, nil, policyFor(policy.ModeBalanced))
	assert.Empty(t, got)
}
