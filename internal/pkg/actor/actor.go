// Package actor describes who is calling: the authenticated user, their role
// and the organization the request is scoped to.
package actor

import "github.com/gin-gonic/gin"

const (
	RoleLandlord   = "landlord"
	RoleContractor = "contractor"
	RoleAdmin      = "admin"
	RoleSystem     = "system"
)

// Gin context keys written by the auth middleware.
const (
	KeyUserID       = "user_id"
	KeyRole         = "role"
	KeyOrgID        = "org_id"
	KeyContractorID = "contractor_id"
)

type Actor struct {
	UserID       string
	Role         string
	OrgID        string
	ContractorID string
}

// System is the actor for background jobs.
func System(orgID string) Actor {
	return Actor{UserID: RoleSystem, Role: RoleSystem, OrgID: orgID}
}

func (a Actor) IsPrivileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}

func (a Actor) IsContractor() bool { return a.Role == RoleContractor }

func (a Actor) IsLandlord() bool { return a.Role == RoleLandlord }

// FromGin reads the actor the auth middleware stored on c.
func FromGin(c *gin.Context) Actor {
	return Actor{
		UserID:       c.GetString(KeyUserID),
		Role:         c.GetString(KeyRole),
		OrgID:        c.GetString(KeyOrgID),
		ContractorID: c.GetString(KeyContractorID),
	}
}
