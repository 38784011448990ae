package policy

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/apperr"
)

type Service struct {
	repo  Repository
	cache Cache
	log   *zap.Logger
}

// NewService wires the store. cache may be nil.
func NewService(repo Repository, cache Cache, log *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// GetActivePolicy returns the organization's active policy, or the default
// policy when none is stored. Cache failures fall through to the repository.
func (s *Service) GetActivePolicy(ctx context.Context, orgID string) (*Policy, error) {
	fill := false
	var gen int64
	if s.cache != nil {
		p, ok, err := s.cache.Get(ctx, orgID)
		if err != nil {
			s.log.Warn("policy cache read failed", zap.String("org_id", orgID), zap.Error(err))
		} else if ok {
			return p, nil
		}
		// Without a generation the fill could not be fenced; skip it.
		if gen, err = s.cache.Generation(ctx, orgID); err == nil {
			fill = true
		}
	}

	p, err := s.repo.GetActive(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = Default(orgID)
	}

	if fill {
		stored, err := s.cache.SetIfCurrent(ctx, p, gen)
		if err != nil {
			s.log.Warn("policy cache write failed", zap.String("org_id", orgID), zap.Error(err))
		} else if !stored {
			s.log.Debug("policy changed during load; cache fill skipped", zap.String("org_id", orgID))
		}
	}
	return p, nil
}

// ActivatePolicy replaces the active policy. Omitted limits keep the defaults.
func (s *Service) ActivatePolicy(ctx context.Context, a actor.Actor, req UpdatePolicyRequest) (*Policy, error) {
	mode, ok := ParseMode(req.InvolvementMode)
	if !ok {
		return nil, ErrInvalidMode
	}

	p := Default(a.OrgID)
	p.InvolvementMode = mode
	p.CreatedBy = a.UserID
	if req.AutoApproveCostLimit != nil {
		if *req.AutoApproveCostLimit < 0 {
			return nil, ErrInvalidLimit
		}
		p.AutoApproveCostLimit = *req.AutoApproveCostLimit
	}
	if req.AutoApproveEmergencies != nil {
		p.AutoApproveEmergencies = *req.AutoApproveEmergencies
	}
	p.TrustedContractorIDs = dedupe(req.TrustedContractorIDs)

	if err := s.repo.Activate(ctx, p); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, a.OrgID); err != nil {
			s.log.Warn("policy cache invalidate failed", zap.String("org_id", a.OrgID), zap.Error(err))
		}
	}
	s.log.Info("policy activated",
		zap.String("org_id", a.OrgID),
		zap.String("policy_id", p.ID),
		zap.String("mode", string(p.InvolvementMode)),
	)
	return p, nil
}

func (s *Service) ListPolicies(ctx context.Context, orgID string) ([]Policy, error) {
	if orgID == "" {
		return nil, apperr.Authorization("no organization context")
	}
	return s.repo.ListByOrg(ctx, orgID)
}

func dedupe(ids []string) datatypes.JSONSlice[string] {
	seen := make(map[string]bool, len(ids))
	out := make(datatypes.JSONSlice[string], 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
