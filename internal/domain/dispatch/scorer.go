package dispatch

import (
	"sort"
	"strings"

	"propcare/internal/domain/cases"
	"propcare/internal/domain/policy"
	"propcare/internal/domain/roster"
)

// MaxRecommendations caps the ranked list.
const MaxRecommendations = 3

// Weights are the points a signal is worth under one involvement mode.
type Weights struct {
	Match     int
	Available int
	Trusted   int
	Favorite  int
	Preferred int
}

var modeWeights = map[policy.InvolvementMode]Weights{
	policy.ModeHandsOn:  {Match: 60, Available: 40, Trusted: 50, Favorite: 30, Preferred: 10},
	policy.ModeBalanced: {Match: 30, Available: 20, Trusted: 100, Favorite: 50, Preferred: 10},
	policy.ModeHandsOff: {Match: 30, Available: 20, Trusted: 200, Favorite: 150, Preferred: 10},
}

func WeightsFor(mode policy.InvolvementMode) Weights {
	if w, ok := modeWeights[mode]; ok {
		return w
	}
	return modeWeights[policy.ModeBalanced]
}

// ScoredCandidate is a ranked recommendation.
type ScoredCandidate struct {
	roster.Contractor
	Score            int    `json:"score"`
	Rationale        string `json:"rationale"`
	MatchedCategory  bool   `json:"matchedCategory"`
	MatchedSpecialty bool   `json:"matchedSpecialty"`
}

// caseCategoryText is the case-side text compared against contractor trades.
func caseCategoryText(c *cases.Case) string {
	if strings.TrimSpace(c.Category) != "" {
		return c.Category
	}
	return c.Title
}

// Score evaluates one candidate. Specialties are consulted only when the
// contractor's own category does not match.
func Score(c *cases.Case, cand roster.Contractor, w Weights) ScoredCandidate {
	sc := ScoredCandidate{Contractor: cand}
	text := caseCategoryText(c)

	if CategoryMatches(text, cand.Category) {
		sc.MatchedCategory = true
	} else {
		for _, sp := range cand.Specialties {
			if CategoryMatches(text, sp) {
				sc.MatchedSpecialty = true
				break
			}
		}
	}

	if sc.MatchedCategory || sc.MatchedSpecialty {
		sc.Score += w.Match
	}
	if cand.IsAvailable {
		sc.Score += w.Available
	}
	if cand.IsTrusted {
		sc.Score += w.Trusted
	}
	if cand.IsFavorite {
		sc.Score += w.Favorite
	}
	if cand.Source == roster.SourceVendor && cand.IsPreferred {
		sc.Score += w.Preferred
	}
	sc.Rationale = rationale(sc, text)
	return sc
}

func rationale(sc ScoredCandidate, category string) string {
	switch {
	case sc.InTrustedSet && sc.IsFavorite:
		return "Trusted favorite contractor"
	case sc.InTrustedSet:
		return "Trusted contractor"
	case sc.IsFavorite:
		return "Favorite contractor"
	case sc.MatchedCategory:
		return "Matches " + strings.TrimSpace(category) + " work"
	case sc.MatchedSpecialty:
		return "Specialty matches " + strings.TrimSpace(category) + " work"
	case sc.IsAvailable:
		return "Available now"
	default:
		return "No strong signal"
	}
}

// Rank scores candidates under the policy's mode and returns at most
// MaxRecommendations, best first. Equal scores keep enumeration order.
// In hands-off mode only trusted or favorite contractors are ranked, unless
// there are none.
func Rank(c *cases.Case, candidates []roster.Contractor, p *policy.Policy) []ScoredCandidate {
	pool := candidates
	if p.InvolvementMode == policy.ModeHandsOff {
		var preferred []roster.Contractor
		for _, cand := range candidates {
			if cand.IsTrusted || cand.IsFavorite {
				preferred = append(preferred, cand)
			}
		}
		if len(preferred) > 0 {
			pool = preferred
		}
	}

	w := WeightsFor(p.InvolvementMode)
	scored := make([]ScoredCandidate, 0, len(pool))
	for _, cand := range pool {
		scored = append(scored, Score(c, cand, w))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > MaxRecommendations {
		scored = scored[:MaxRecommendations]
	}
	return scored
}
