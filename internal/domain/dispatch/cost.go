package dispatch

import (
	"regexp"
	"strconv"
	"strings"

	"propcare/internal/domain/cases"
)

// Keys under which triage output may carry a cost estimate, in lookup order.
var triageCostKeys = []string{"estimatedCost", "estimated_cost", "costEstimate", "cost_estimate", "estimatedCostRange"}

var amountPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// EffectiveCost is the case's estimated cost when positive, otherwise the
// highest amount found in the triage cost estimate, otherwise 0.
func EffectiveCost(c *cases.Case) float64 {
	if c.EstimatedCost != nil && *c.EstimatedCost > 0 {
		return *c.EstimatedCost
	}
	for _, key := range triageCostKeys {
		raw, ok := c.AITriage[key]
		if !ok || raw == nil {
			continue
		}
		if v := costFromValue(raw); v > 0 {
			return v
		}
	}
	return 0
}

func costFromValue(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		return MaxAmount(v)
	case map[string]any:
		// {"min": 150, "max": 300} or {"low": "...", "high": "..."}
		best := 0.0
		for _, inner := range v {
			if n := costFromValue(inner); n > best {
				best = n
			}
		}
		return best
	case []any:
		best := 0.0
		for _, inner := range v {
			if n := costFromValue(inner); n > best {
				best = n
			}
		}
		return best
	}
	return 0
}

// MaxAmount returns the largest number in free text such as "$1,200 - $1,500", or 0.
func MaxAmount(text string) float64 {
	best := 0.0
	for _, tok := range amountPattern.FindAllString(text, -1) {
		n, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64)
		if err != nil {
			continue
		}
		if n > best {
			best = n
		}
	}
	return best
}
