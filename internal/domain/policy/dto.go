package policy

// UpdatePolicyRequest replaces the organization's active policy.
type UpdatePolicyRequest struct {
	InvolvementMode        string   `json:"involvementMode" validate:"required"`
	TrustedContractorIDs   []string `json:"trustedContractorIds"`
	AutoApproveCostLimit   *float64 `json:"autoApproveCostLimit"`
	AutoApproveEmergencies *bool    `json:"autoApproveEmergencies"`
}
