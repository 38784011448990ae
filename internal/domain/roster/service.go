package roster

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"propcare/internal/domain/policy"
	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/apperr"
)

// PolicySource resolves the active approval policy of an organization.
type PolicySource interface {
	GetActivePolicy(ctx context.Context, orgID string) (*policy.Policy, error)
}

type Service struct {
	repo     Repository
	policies PolicySource
	log      *zap.Logger
}

func NewService(repo Repository, policies PolicySource, log *zap.Logger) *Service {
	return &Service{repo: repo, policies: policies, log: log}
}

// ListCandidates returns every contractor the organization can dispatch to:
// its vendors first, then active linked contractors, each person at most once.
// A linked contractor who also appears as a vendor is represented by the vendor.
func (s *Service) ListCandidates(ctx context.Context, orgID string) ([]Contractor, error) {
	if orgID == "" {
		return nil, apperr.Authorization("no organization context")
	}

	var (
		vendors   []Vendor
		links     []ContractorLink
		favorites map[string]bool
		pol       *policy.Policy
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		vendors, err = s.repo.ListVendors(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		links, err = s.repo.ListActiveLinks(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		favorites, err = s.repo.FavoriteIDs(gctx, orgID)
		return err
	})
	g.Go(func() (err error) {
		pol, err = s.policies.GetActivePolicy(gctx, orgID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	personIDs := make([]string, 0, len(vendors)+len(links))
	for _, v := range vendors {
		if v.UserID != nil && *v.UserID != "" {
			personIDs = append(personIDs, *v.UserID)
		}
	}
	for _, l := range links {
		personIDs = append(personIDs, l.ContractorUserID)
	}

	var (
		profiles    map[string]ContractorProfile
		specialties map[string][]string
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profiles, err = s.repo.ProfilesByUser(gctx, personIDs)
		return err
	})
	g.Go(func() (err error) {
		specialties, err = s.repo.SpecialtiesByUser(gctx, personIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(personIDs))
	out := make([]Contractor, 0, len(vendors)+len(links))
	for _, v := range vendors {
		// One candidate per person; the earliest vendor row wins.
		if v.UserID != nil && *v.UserID != "" && seen[*v.UserID] {
			continue
		}
		c := Contractor{
			ID:                 v.ID,
			OrganizationID:     orgID,
			Source:             SourceVendor,
			Name:               v.Name,
			Category:           v.Category,
			Rating:             v.Rating,
			ResponseTimeHours:  v.ResponseTimeHours,
			EmergencyAvailable: v.EmergencyAvailable,
			IsPreferred:        v.IsPreferred,
			IsAvailable:        true,
		}
		if v.UserID != nil && *v.UserID != "" {
			c.PersonID = *v.UserID
			seen[c.PersonID] = true
			if p, ok := profiles[c.PersonID]; ok {
				c.IsAvailable = p.IsAvailable
			}
		}
		out = append(out, c)
	}
	for _, l := range links {
		if seen[l.ContractorUserID] {
			continue
		}
		seen[l.ContractorUserID] = true
		c := Contractor{
			ID:             l.ContractorUserID,
			PersonID:       l.ContractorUserID,
			OrganizationID: orgID,
			Source:         SourceLinked,
			IsAvailable:    true,
		}
		if p, ok := profiles[l.ContractorUserID]; ok {
			c.Name = p.DisplayName
			c.Category = p.Category
			c.Rating = p.Rating
			c.ResponseTimeHours = p.ResponseTimeHours
			c.EmergencyAvailable = p.EmergencyAvailable
			c.IsAvailable = p.IsAvailable
		}
		out = append(out, c)
	}

	for i := range out {
		c := &out[i]
		c.Specialties = specialties[c.PersonID]
		if c.Specialties == nil {
			c.Specialties = []string{}
		}
		c.IsFavorite = favorites[c.ID] || (c.PersonID != "" && favorites[c.PersonID])
		c.InTrustedSet = pol.Trusts(c.ID, c.PersonID)
		c.IsTrusted = c.InTrustedSet || c.IsFavorite
	}
	return out, nil
}

// FindCandidate resolves a contractor by contractor id or person id.
func (s *Service) FindCandidate(ctx context.Context, orgID, contractorID string) (*Contractor, error) {
	contractorID = strings.TrimSpace(contractorID)
	if contractorID == "" {
		return nil, apperr.Validation("contractor id is required")
	}
	candidates, err := s.ListCandidates(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].ID == contractorID {
			return &candidates[i], nil
		}
	}
	for i := range candidates {
		if candidates[i].PersonID == contractorID {
			return &candidates[i], nil
		}
	}
	return nil, ErrContractorNotFound
}

// Directory maps contractor ids to candidates for display.
func (s *Service) Directory(ctx context.Context, orgID string) (map[string]Contractor, error) {
	candidates, err := s.ListCandidates(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Contractor, len(candidates)*2)
	for _, c := range candidates {
		out[c.ID] = c
		if c.PersonID != "" {
			if _, taken := out[c.PersonID]; !taken {
				out[c.PersonID] = c
			}
		}
	}
	return out, nil
}

func (s *Service) AddFavorite(ctx context.Context, a actor.Actor, contractorID string) (*FavoriteContractor, error) {
	c, err := s.FindCandidate(ctx, a.OrgID, contractorID)
	if err != nil {
		return nil, err
	}
	fav := &FavoriteContractor{
		OrganizationID: a.OrgID,
		ContractorID:   c.ID,
		CreatedBy:      a.UserID,
	}
	if err := s.repo.AddFavorite(ctx, fav); err != nil {
		return nil, err
	}
	s.log.Info("contractor favorited", zap.String("org_id", a.OrgID), zap.String("contractor_id", c.ID))
	return fav, nil
}

func (s *Service) RemoveFavorite(ctx context.Context, a actor.Actor, contractorID string) error {
	return s.repo.RemoveFavorite(ctx, a.OrgID, contractorID)
}
