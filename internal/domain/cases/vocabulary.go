package cases

import "strings"

// Inbound labels used by other surfaces of the product, normalized to
// lowercase words separated by single spaces.
var inboundStatus = map[string]Status{
	"new":              StatusNew,
	"submitted":        StatusNew,
	"open":             StatusNew,
	"in review":        StatusInReview,
	"pending review":   StatusInReview,
	"under review":     StatusInReview,
	"pending approval": StatusInReview,
	"assigned":         StatusInReview,
	"quoted":           StatusQuoted,
	"quote sent":       StatusQuoted,
	"scheduled":        StatusScheduled,
	"confirmed":        StatusScheduled,
	"accepted":         StatusScheduled,
	"in progress":      StatusInProgress,
	"started":          StatusInProgress,
	"working":          StatusInProgress,
	"on hold":          StatusOnHold,
	"paused":           StatusOnHold,
	"resolved":         StatusResolved,
	"completed":        StatusResolved,
	"complete":         StatusResolved,
	"done":             StatusResolved,
	"closed":           StatusClosed,
	"cancelled":        StatusClosed,
	"canceled":         StatusClosed,
}

// Labels the contractor surface shows for canonical statuses.
var contractorLabels = map[Status]string{
	StatusNew:        "Open",
	StatusInReview:   "Pending Approval",
	StatusQuoted:     "Quote Sent",
	StatusScheduled:  "Confirmed",
	StatusInProgress: "In Progress",
	StatusOnHold:     "On Hold",
	StatusResolved:   "Completed",
	StatusClosed:     "Closed",
}

func normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.NewReplacer("_", " ", "-", " ").Replace(label)
	return strings.Join(strings.Fields(label), " ")
}

// ParseStatus maps a status label from any surface onto the canonical enum.
func ParseStatus(label string) (Status, bool) {
	s, ok := inboundStatus[normalizeLabel(label)]
	return s, ok
}

// ContractorLabel renders s for the contractor surface.
func ContractorLabel(s Status) string {
	if label, ok := contractorLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParsePriority accepts canonical priorities plus "emergency" and "low"/"medium".
func ParsePriority(label string) (Priority, bool) {
	switch normalizeLabel(label) {
	case "normal", "low", "medium", "routine":
		return PriorityNormal, true
	case "high":
		return PriorityHigh, true
	case "urgent", "emergency":
		return PriorityUrgent, true
	}
	return "", false
}
