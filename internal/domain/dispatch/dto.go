package dispatch

// AssignRequest accepts either vendorId or contractorId; vendorId wins when both are set.
type AssignRequest struct {
	VendorID     string `json:"vendorId"`
	ContractorID string `json:"contractorId"`
}

func (r AssignRequest) Target() string {
	if r.VendorID != "" {
		return r.VendorID
	}
	return r.ContractorID
}
