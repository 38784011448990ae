package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"propcare/internal/domain/cases"
	"propcare/internal/domain/policy"
	"propcare/internal/domain/roster"
	"propcare/internal/domain/timeline"
	"propcare/internal/metrics"
	"propcare/internal/pkg/actor"
)

type Roster interface {
	ListCandidates(ctx context.Context, orgID string) ([]roster.Contractor, error)
	FindCandidate(ctx context.Context, orgID, contractorID string) (*roster.Contractor, error)
}

type Policies interface {
	GetActivePolicy(ctx context.Context, orgID string) (*policy.Policy, error)
}

// Notifier tells a contractor about work. Delivery failures never undo an assignment.
type Notifier interface {
	Notify(ctx context.Context, contractorID, message string) error
}

type Service struct {
	cases    cases.Repository
	roster   Roster
	policies Policies
	events   timeline.EventLog
	tx       cases.Transactor
	notifier Notifier
	feed     timeline.Publisher
	metrics  metrics.Recorder
	log      *zap.Logger
}

type Deps struct {
	Cases    cases.Repository
	Roster   Roster
	Policies Policies
	Events   timeline.EventLog
	Tx       cases.Transactor
	Notifier Notifier
	Feed     timeline.Publisher
	Metrics  metrics.Recorder
	Log      *zap.Logger
}

func NewService(d Deps) *Service {
	s := &Service{
		cases:    d.Cases,
		roster:   d.Roster,
		policies: d.Policies,
		events:   d.Events,
		tx:       d.Tx,
		notifier: d.Notifier,
		feed:     d.Feed,
		metrics:  d.Metrics,
		log:      d.Log,
	}
	if s.feed == nil {
		s.feed = timeline.NopPublisher{}
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

type Recommendations struct {
	Contractors          []ScoredCandidate      `json:"contractors"`
	InvolvementMode      policy.InvolvementMode `json:"involvementMode"`
	AutoApproveCostLimit float64                `json:"autoApproveCostLimit"`
}

type AssignResult struct {
	Case          *cases.Case       `json:"case"`
	AutoConfirmed bool              `json:"autoConfirmed"`
	Decision      Decision          `json:"decision"`
	Contractor    roster.Contractor `json:"contractor"`
}

func (s *Service) loadCase(ctx context.Context, a actor.Actor, caseID string) (*cases.Case, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.OrganizationID != a.OrgID {
		return nil, cases.ErrCaseNotFound
	}
	return c, nil
}

// Recommend ranks the organization's contractors for a case.
func (s *Service) Recommend(ctx context.Context, a actor.Actor, caseID string) (*Recommendations, error) {
	c, err := s.loadCase(ctx, a, caseID)
	if err != nil {
		return nil, err
	}
	p, err := s.policies.GetActivePolicy(ctx, a.OrgID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.roster.ListCandidates(ctx, a.OrgID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ranked := Rank(c, candidates, p)
	s.metrics.RankingObserved(time.Since(start), len(candidates))

	return &Recommendations{
		Contractors:          ranked,
		InvolvementMode:      p.InvolvementMode,
		AutoApproveCostLimit: p.AutoApproveCostLimit,
	}, nil
}

// Assign hands an open case to a contractor. The case either auto-confirms
// (Scheduled) or waits for landlord review (In Review). Only one of any
// number of concurrent assignments of the same case succeeds; the rest get
// ErrAlreadyAssigned and write nothing.
func (s *Service) Assign(ctx context.Context, a actor.Actor, caseID, contractorID string) (*AssignResult, error) {
	contractorID = strings.TrimSpace(contractorID)
	if contractorID == "" {
		return nil, ErrContractorRequired
	}
	if a.IsContractor() {
		return nil, ErrAssignForbidden
	}

	c, err := s.loadCase(ctx, a, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status != cases.StatusNew || c.AssignedContractorID != nil {
		return nil, ErrAlreadyAssigned
	}

	p, err := s.policies.GetActivePolicy(ctx, a.OrgID)
	if err != nil {
		return nil, err
	}
	cand, err := s.roster.FindCandidate(ctx, a.OrgID, contractorID)
	if err != nil {
		return nil, err
	}

	d := Decide(c, *cand, p)
	ev := timeline.CaseEvent{
		CaseID:         c.ID,
		OrganizationID: c.OrganizationID,
		Type:           timeline.EventContractorAssigned,
		Description:    fmt.Sprintf("%s assigned; awaiting landlord review", displayName(cand)),
		ActorID:        a.UserID,
		Metadata: datatypes.JSONMap{
			"contractorId":     cand.ID,
			"involvementMode":  string(d.Mode),
			"isTrusted":        d.IsTrusted,
			"isEmergency":      d.IsEmergency,
			"isUnderThreshold": d.IsUnderThreshold,
			"effectiveCost":    d.EffectiveCost,
			"costLimit":        d.CostLimit,
			"autoConfirmed":    d.AutoConfirm,
		},
	}
	if d.AutoConfirm {
		ev.Type = timeline.EventJobAutoConfirmed
		ev.Description = fmt.Sprintf("%s auto-confirmed under %s policy", displayName(cand), d.Mode)
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.cases.AssignIfOpen(ctx, c.ID, c.OrganizationID, cand.ID, d.Status)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyAssigned
		}
		return s.events.Append(ctx, &ev)
	})
	if err != nil {
		return nil, err
	}

	assignee := cand.ID
	c.Status = d.Status
	c.AssignedContractorID = &assignee

	outcome := "review"
	if d.AutoConfirm {
		outcome = "auto_confirmed"
	}
	s.metrics.AssignmentDecided(outcome)
	s.feed.Publish(ev)
	s.log.Info("contractor assigned",
		zap.String("case_id", c.ID),
		zap.String("contractor_id", cand.ID),
		zap.String("status", string(d.Status)),
		zap.Bool("auto_confirmed", d.AutoConfirm),
	)
	s.notify(ctx, cand.ID, assignmentMessage(c, d))

	return &AssignResult{Case: c, AutoConfirmed: d.AutoConfirm, Decision: d, Contractor: *cand}, nil
}

func (s *Service) notify(ctx context.Context, contractorID, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, contractorID, message); err != nil {
		s.metrics.NotificationFailed("dispatch")
		s.log.Warn("contractor notification failed",
			zap.String("contractor_id", contractorID),
			zap.Error(err),
		)
	}
}

func assignmentMessage(c *cases.Case, d Decision) string {
	if d.AutoConfirm {
		return fmt.Sprintf("You're booked: %q is confirmed and ready to schedule.", c.Title)
	}
	return fmt.Sprintf("New job request: %q is waiting for landlord approval.", c.Title)
}

func displayName(c *roster.Contractor) string {
	if c.Name != "" {
		return c.Name
	}
	return "Contractor " + c.ID
}
