package cases

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"propcare/internal/domain/timeline"
	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/apperr"
)

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Which roles may move a case into each status. Admin and system actors may
// drive any edge.
var transitionRoles = map[Status][]string{
	StatusInReview:   {actor.RoleLandlord},
	StatusQuoted:     {actor.RoleContractor},
	StatusScheduled:  {actor.RoleLandlord, actor.RoleContractor},
	StatusInProgress: {actor.RoleContractor},
	StatusOnHold:     {actor.RoleLandlord, actor.RoleContractor},
	StatusResolved:   {actor.RoleContractor, actor.RoleLandlord},
	StatusClosed:     {actor.RoleLandlord},
}

type Service struct {
	repo   Repository
	events timeline.EventLog
	tx     Transactor
	feed   timeline.Publisher
	log    *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, events timeline.EventLog, tx Transactor, feed timeline.Publisher, log *zap.Logger) *Service {
	if feed == nil {
		feed = timeline.NopPublisher{}
	}
	return &Service{repo: repo, events: events, tx: tx, feed: feed, log: log, now: time.Now}
}

// Load returns the case when it belongs to the actor's organization. Cases of
// other organizations are reported as not found.
func (s *Service) Load(ctx context.Context, a actor.Actor, id string) (*Case, error) {
	if a.OrgID == "" {
		return nil, apperr.Authorization("no organization context")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OrganizationID != a.OrgID {
		return nil, ErrCaseNotFound
	}
	return c, nil
}

func (s *Service) EnsureCaseAccess(ctx context.Context, a actor.Actor, id string) error {
	_, err := s.Load(ctx, a, id)
	return err
}

func (s *Service) List(ctx context.Context, a actor.Actor, f ListFilter) ([]Case, error) {
	if a.OrgID == "" {
		return nil, apperr.Authorization("no organization context")
	}
	if a.IsContractor() {
		f.AssignedContractorID = a.ContractorID
	}
	return s.repo.List(ctx, a.OrgID, f)
}

func (s *Service) Create(ctx context.Context, a actor.Actor, req CreateCaseRequest) (*Case, error) {
	if a.OrgID == "" {
		return nil, apperr.Authorization("no organization context")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	priority := PriorityNormal
	if req.Priority != "" {
		p, ok := ParsePriority(req.Priority)
		if !ok {
			return nil, ErrInvalidPriority
		}
		priority = p
	}

	c := &Case{
		OrganizationID: a.OrgID,
		PropertyID:     req.PropertyID,
		Title:          title,
		Description:    req.Description,
		Category:       strings.TrimSpace(req.Category),
		Priority:       priority,
		IsUrgent:       req.IsUrgent,
		Status:         StatusNew,
		EstimatedCost:  req.EstimatedCost,
		ReportedBy:     a.UserID,
	}
	if req.AITriage != nil {
		c.AITriage = datatypes.JSONMap(req.AITriage)
	}

	var ev *timeline.CaseEvent
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		ev = &timeline.CaseEvent{
			CaseID:         c.ID,
			OrganizationID: c.OrganizationID,
			Type:           timeline.EventCaseCreated,
			Description:    "Case reported: " + c.Title,
			ActorID:        a.UserID,
			Metadata:       datatypes.JSONMap{"priority": string(c.Priority), "category": c.Category},
		}
		return s.events.Append(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	s.feed.Publish(*ev)
	return c, nil
}

// Transition moves the case along one lifecycle edge. The write only lands
// if the case still has the status that was validated.
func (s *Service) Transition(ctx context.Context, a actor.Actor, id string, to Status, note string) (*Case, error) {
	return s.transition(ctx, a, id, to, timeline.EventStatusChanged, note)
}

// Close ends the landlord's involvement: the case moves to Resolved.
func (s *Service) Close(ctx context.Context, a actor.Actor, id string, reason string) (*Case, error) {
	return s.transition(ctx, a, id, StatusResolved, timeline.EventCaseClosed, reason)
}

func (s *Service) transition(ctx context.Context, a actor.Actor, id string, to Status, eventType, note string) (*Case, error) {
	c, err := s.Load(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(c.Status, to); err != nil {
		return nil, err
	}
	// Unassigned intake cases leave New through dispatch; only closing them
	// by hand is allowed.
	if c.Status == StatusNew && c.AssignedContractorID == nil && to.Phase() != PhaseClosure {
		return nil, ErrCaseNotDispatched
	}
	if err := authorizeTransition(a, c, to); err != nil {
		return nil, err
	}

	from := c.Status
	now := s.now()
	updates := map[string]any{"status": string(to)}
	switch to {
	case StatusResolved:
		updates["resolved_at"] = now
		c.ResolvedAt = &now
	case StatusClosed:
		updates["closed_at"] = now
		c.ClosedAt = &now
	}

	ev := timeline.CaseEvent{
		CaseID:         c.ID,
		OrganizationID: c.OrganizationID,
		Type:           eventType,
		Description:    "Status changed from " + string(from) + " to " + string(to),
		ActorID:        a.UserID,
		Metadata:       datatypes.JSONMap{"from": string(from), "to": string(to), "actorRole": a.Role},
	}
	if note = strings.TrimSpace(note); note != "" {
		ev.Metadata["note"] = note
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.repo.UpdateIfStatus(ctx, c.ID, c.OrganizationID, from, updates)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		return s.events.Append(ctx, &ev)
	})
	if err != nil {
		return nil, err
	}

	c.Status = to
	s.feed.Publish(ev)
	s.log.Info("case status changed",
		zap.String("case_id", c.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_role", a.Role),
	)
	return c, nil
}

func (s *Service) SetPriority(ctx context.Context, a actor.Actor, id string, req PriorityRequest) (*Case, error) {
	priority, ok := ParsePriority(req.Priority)
	if !ok {
		return nil, ErrInvalidPriority
	}
	c, err := s.Load(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if a.IsContractor() {
		return nil, apperr.Authorization("contractors cannot change case priority")
	}
	if c.Status.IsTerminal() {
		return nil, apperr.InvalidTransition("case is %s", c.Status)
	}

	isUrgent := c.IsUrgent
	if req.IsUrgent != nil {
		isUrgent = *req.IsUrgent
	}
	ev := timeline.CaseEvent{
		CaseID:         c.ID,
		OrganizationID: c.OrganizationID,
		Type:           timeline.EventPriorityChanged,
		Description:    "Priority changed from " + string(c.Priority) + " to " + string(priority),
		ActorID:        a.UserID,
		Metadata:       datatypes.JSONMap{"from": string(c.Priority), "to": string(priority), "isUrgent": isUrgent},
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.repo.UpdateIfStatus(ctx, c.ID, c.OrganizationID, c.Status, map[string]any{
			"priority":  string(priority),
			"is_urgent": isUrgent,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		return s.events.Append(ctx, &ev)
	})
	if err != nil {
		return nil, err
	}

	c.Priority = priority
	c.IsUrgent = isUrgent
	s.feed.Publish(ev)
	return c, nil
}

func authorizeTransition(a actor.Actor, c *Case, to Status) error {
	if a.IsPrivileged() {
		return nil
	}
	allowed := false
	for _, role := range transitionRoles[to] {
		if role == a.Role {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperr.Authorization("role %q cannot move a case to %s", a.Role, to)
	}
	if a.IsContractor() && !c.IsAssignedTo(a.ContractorID) {
		return ErrNotCaseContractor
	}
	return nil
}
