package dispatch

import "strings"

// synonymGroups maps a trade root onto the terms that identify it. A text
// belongs to a group when it contains the root or any of its terms.
var synonymGroups = []struct {
	root  string
	terms []string
}{
	{"electric", []string{"electrical", "electrician", "wiring", "circuit", "outlet", "breaker", "lighting", "power outage"}},
	{"plumb", []string{"plumbing", "plumber", "leak", "faucet", "pipe", "drain", "toilet", "sink", "water heater", "sewer"}},
	{"hvac", []string{"heating", "cooling", "air condition", "a/c", "furnace", "heat pump", "ventilation", "thermostat", "boiler"}},
	{"appliance", []string{"washer", "dryer", "dishwasher", "refrigerator", "fridge", "oven", "stove", "microwave"}},
	{"roof", []string{"roofing", "roofer", "gutter", "shingle", "skylight"}},
	{"paint", []string{"painting", "painter", "drywall", "plaster"}},
	{"carpent", []string{"carpentry", "carpenter", "cabinet", "woodwork", "deck", "framing"}},
	{"landscap", []string{"landscaping", "landscaper", "lawn", "garden", "yard", "tree removal", "tree trimming", "hedge", "irrigation"}},
	{"general", []string{"handyman", "odd job", "maintenance"}},
	{"garage door", []string{"garage", "door opener"}},
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func groupsOf(text string) map[string]bool {
	out := map[string]bool{}
	for _, g := range synonymGroups {
		if strings.Contains(text, g.root) {
			out[g.root] = true
			continue
		}
		for _, term := range g.terms {
			if strings.Contains(text, term) {
				out[g.root] = true
				break
			}
		}
	}
	return out
}

// CategoryMatches compares a case category with a contractor category or
// specialty: direct containment either way, or a shared synonym group.
// Blank inputs never match.
func CategoryMatches(caseCategory, contractorCategory string) bool {
	a, b := normalize(caseCategory), normalize(contractorCategory)
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	bg := groupsOf(b)
	if len(bg) == 0 {
		return false
	}
	for root := range groupsOf(a) {
		if bg[root] {
			return true
		}
	}
	return false
}
