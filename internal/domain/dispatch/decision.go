package dispatch

import (
	"propcare/internal/domain/cases"
	"propcare/internal/domain/policy"
	"propcare/internal/domain/roster"
)

// Decision is the outcome of an assignment and the facts it was derived from.
type Decision struct {
	AutoConfirm      bool                   `json:"autoConfirm"`
	Status           cases.Status           `json:"status"`
	Mode             policy.InvolvementMode `json:"involvementMode"`
	IsTrusted        bool                   `json:"isTrusted"`
	IsEmergency      bool                   `json:"isEmergency"`
	IsUnderThreshold bool                   `json:"isUnderThreshold"`
	EffectiveCost    float64                `json:"effectiveCost"`
	CostLimit        float64                `json:"costLimit"`
}

// Decide determines whether assigning cand to c confirms the job
// immediately (Scheduled) or leaves it for the landlord to review (In Review).
// Hands-on organizations always review. Balanced organizations auto-confirm
// only trusted, in-budget emergencies.
func Decide(c *cases.Case, cand roster.Contractor, p *policy.Policy) Decision {
	d := Decision{
		Mode:          p.InvolvementMode,
		IsTrusted:     cand.InTrustedSet || cand.IsFavorite || p.Trusts(cand.ID, cand.PersonID),
		IsEmergency:   c.IsEmergency(),
		EffectiveCost: EffectiveCost(c),
		CostLimit:     p.AutoApproveCostLimit,
	}
	d.IsUnderThreshold = d.EffectiveCost > 0 && d.EffectiveCost <= d.CostLimit
	emergencyOK := d.IsEmergency && p.AutoApproveEmergencies

	switch p.InvolvementMode {
	case policy.ModeHandsOff:
		d.AutoConfirm = (d.IsTrusted && d.IsUnderThreshold) || emergencyOK
	case policy.ModeBalanced:
		d.AutoConfirm = d.IsTrusted && d.IsUnderThreshold && emergencyOK
	default:
		d.AutoConfirm = false
	}

	d.Status = cases.StatusInReview
	if d.AutoConfirm {
		d.Status = cases.StatusScheduled
	}
	return d
}
