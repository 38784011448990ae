package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"propcare/internal/domain/cases"
	"propcare/internal/domain/roster"
	"propcare/internal/domain/timeline"
	"propcare/internal/metrics"
	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/apperr"
)

// DefaultValidDays is how long a sent quote stays open when the contractor does not say.
const DefaultValidDays = 14

// CaseStore is the part of the case repository negotiation writes through.
type CaseStore interface {
	GetByID(ctx context.Context, id string) (*cases.Case, error)
	UpdateIfStatus(ctx context.Context, id, orgID string, expected cases.Status, updates map[string]any) (bool, error)
}

type Directory interface {
	Directory(ctx context.Context, orgID string) (map[string]roster.Contractor, error)
}

// Notifier delivers a message to a contractor or landlord. Failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, recipientID, message string) error
}

type Service struct {
	quotes    Repository
	cases     CaseStore
	directory Directory
	events    timeline.EventLog
	tx        cases.Transactor
	notifier  Notifier
	feed      timeline.Publisher
	metrics   metrics.Recorder
	log       *zap.Logger
	now       func() time.Time
}

type Deps struct {
	Quotes    Repository
	Cases     CaseStore
	Directory Directory
	Events    timeline.EventLog
	Tx        cases.Transactor
	Notifier  Notifier
	Feed      timeline.Publisher
	Metrics   metrics.Recorder
	Log       *zap.Logger
	Now       func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		quotes:    d.Quotes,
		cases:     d.Cases,
		directory: d.Directory,
		events:    d.Events,
		tx:        d.Tx,
		notifier:  d.Notifier,
		feed:      d.Feed,
		metrics:   d.Metrics,
		log:       d.Log,
		now:       d.Now,
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
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) loadCase(ctx context.Context, a actor.Actor, caseID string) (*cases.Case, error) {
	if a.OrgID == "" {
		return nil, apperr.Authorization("no organization context")
	}
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.OrganizationID != a.OrgID {
		return nil, cases.ErrCaseNotFound
	}
	return c, nil
}

// loadQuote enforces organization scope, and for contractors, ownership.
func (s *Service) loadQuote(ctx context.Context, a actor.Actor, id string) (*Quote, error) {
	if a.OrgID == "" {
		return nil, apperr.Authorization("no organization context")
	}
	q, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.OrganizationID != a.OrgID {
		return nil, ErrForeignQuote
	}
	if a.IsContractor() && q.ContractorID != a.ContractorID {
		return nil, ErrNotQuoteContractor
	}
	if !canSeeDraft(a, q) {
		return nil, ErrQuoteNotFound
	}
	return q, nil
}

// canSeeDraft reports whether a may see q. Drafts stay private to the
// contractor who wrote them until they are sent.
func canSeeDraft(a actor.Actor, q *Quote) bool {
	if q.Status != StatusDraft {
		return true
	}
	return a.IsPrivileged() || (a.IsContractor() && q.ContractorID == a.ContractorID)
}

func (s *Service) event(q *Quote, a actor.Actor, typ, description string, meta datatypes.JSONMap) timeline.CaseEvent {
	if meta == nil {
		meta = datatypes.JSONMap{}
	}
	meta["quoteId"] = q.ID
	meta["contractorId"] = q.ContractorID
	return timeline.CaseEvent{
		CaseID:         q.CaseID,
		OrganizationID: q.OrganizationID,
		Type:           typ,
		Description:    description,
		ActorID:        a.UserID,
		Metadata:       meta,
	}
}

func (s *Service) appendAll(ctx context.Context, events []timeline.CaseEvent) error {
	for i := range events {
		if err := s.events.Append(ctx, &events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) notify(ctx context.Context, recipientID, message string) {
	if s.notifier == nil || recipientID == "" {
		return
	}
	if err := s.notifier.Notify(ctx, recipientID, message); err != nil {
		s.metrics.NotificationFailed("quote")
		s.log.Warn("quote notification failed",
			zap.String("recipient_id", recipientID),
			zap.Error(err),
		)
	}
}

// List returns a case's quotes. Contractors only see their own; drafts are
// shown to their author only.
func (s *Service) List(ctx context.Context, a actor.Actor, caseID string, includeArchived bool) ([]QuoteView, error) {
	c, err := s.loadCase(ctx, a, caseID)
	if err != nil {
		return nil, err
	}
	quotes, err := s.quotes.ListByCase(ctx, c.ID, includeArchived)
	if err != nil {
		return nil, err
	}
	var dir map[string]roster.Contractor
	if s.directory != nil {
		if dir, err = s.directory.Directory(ctx, c.OrganizationID); err != nil {
			return nil, err
		}
	}

	out := make([]QuoteView, 0, len(quotes))
	for _, q := range quotes {
		if a.IsContractor() && q.ContractorID != a.ContractorID {
			continue
		}
		if !canSeeDraft(a, &q) {
			continue
		}
		view := QuoteView{Quote: q}
		if con, ok := dir[q.ContractorID]; ok {
			view.Contractor = &con
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, a actor.Actor, id string) (*Quote, error) {
	return s.loadQuote(ctx, a, id)
}

// Accept approves a pending quote. In one transaction the case moves to
// In Review with the quote's contractor assigned, the quote becomes approved
// and every other open quote of the case is declined.
func (s *Service) Accept(ctx context.Context, a actor.Actor, id string) (*Quote, error) {
	if a.IsContractor() {
		return nil, ErrLandlordOnly
	}
	q, err := s.loadQuote(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if q.IsArchived() {
		return nil, ErrQuoteArchived
	}
	if !q.Status.IsPending() {
		return nil, ErrQuoteNotPending
	}
	c, err := s.cases.GetByID(ctx, q.CaseID)
	if err != nil {
		return nil, err
	}
	if c.Status != cases.StatusInReview {
		if err := cases.ValidateTransition(c.Status, cases.StatusInReview); err != nil {
			return nil, err
		}
	}

	now := s.now()
	var (
		events  []timeline.CaseEvent
		losers  []Quote
		caseWas = c.Status
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.cases.UpdateIfStatus(ctx, c.ID, c.OrganizationID, caseWas, map[string]any{
			"status":                 string(cases.StatusInReview),
			"assigned_contractor_id": q.ContractorID,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrCaseConflict
		}

		ok, err = s.quotes.UpdateIfStatus(ctx, q.ID, pendingStatuses, map[string]any{
			"status":      string(StatusApproved),
			"approved_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrQuoteConflict
		}

		siblings, err := s.quotes.ListByCase(ctx, q.CaseID, false)
		if err != nil {
			return err
		}
		losers = losers[:0]
		for _, sib := range siblings {
			if sib.ID != q.ID && sib.Status.IsOpen() {
				losers = append(losers, sib)
			}
		}
		if _, err := s.quotes.DeclineOthers(ctx, q.CaseID, q.ID, now); err != nil {
			return err
		}
		n, err := s.quotes.CountApproved(ctx, q.CaseID)
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrMultipleApproved
		}

		events = events[:0]
		events = append(events, s.event(q, a, timeline.EventQuoteAccepted,
			fmt.Sprintf("Quote for %.2f accepted", q.Total),
			datatypes.JSONMap{"total": q.Total, "caseStatusFrom": string(caseWas), "declinedCount": len(losers)}))
		for i := range losers {
			events = append(events, s.event(&losers[i], a, timeline.EventQuoteDeclined,
				"Quote declined: another quote was accepted",
				datatypes.JSONMap{"supersededBy": q.ID}))
		}
		return s.appendAll(ctx, events)
	})
	if err != nil {
		return nil, err
	}

	q.Status = StatusApproved
	q.ApprovedAt = &now
	s.metrics.QuoteTransition("accept")
	s.feed.Publish(events...)
	s.log.Info("quote accepted",
		zap.String("quote_id", q.ID),
		zap.String("case_id", q.CaseID),
		zap.String("contractor_id", q.ContractorID),
		zap.Int("declined", len(losers)),
	)
	s.notify(ctx, q.ContractorID, fmt.Sprintf("Your quote for %q was accepted.", c.Title))
	for _, l := range losers {
		s.notify(ctx, l.ContractorID, fmt.Sprintf("Another quote was chosen for %q.", c.Title))
	}
	return q, nil
}

// Decline rejects one pending quote. Other quotes of the case are untouched.
func (s *Service) Decline(ctx context.Context, a actor.Actor, id, reason string) (*Quote, error) {
	if a.IsContractor() {
		return nil, ErrLandlordOnly
	}
	q, err := s.loadQuote(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if q.IsArchived() {
		return nil, ErrQuoteArchived
	}
	if !q.Status.IsPending() {
		return nil, ErrQuoteNotPending
	}

	now := s.now()
	reason = strings.TrimSpace(reason)
	updates := map[string]any{"status": string(StatusDeclined), "declined_at": now}
	notes := q.InternalNotes
	if reason != "" {
		notes = appendNote(notes, now, "Declined: "+reason)
		updates["internal_notes"] = notes
	}
	meta := datatypes.JSONMap{}
	if reason != "" {
		meta["reason"] = reason
	}
	ev := s.event(q, a, timeline.EventQuoteDeclined, "Quote declined", meta)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.quotes.UpdateIfStatus(ctx, q.ID, []Status{q.Status}, updates)
		if err != nil {
			return err
		}
		if !ok {
			return ErrQuoteConflict
		}
		return s.events.Append(ctx, &ev)
	})
	if err != nil {
		return nil, err
	}

	q.Status = StatusDeclined
	q.DeclinedAt = &now
	q.InternalNotes = notes
	s.metrics.QuoteTransition("decline")
	s.feed.Publish(ev)
	s.notify(ctx, q.ContractorID, "Your quote was declined.")
	return q, nil
}

// CounterPropose records a revision from either party and puts the quote
// back in awaiting_response. The case is not touched.
func (s *Service) CounterPropose(ctx context.Context, a actor.Actor, id string, req CounterRequest) (*CounterProposal, error) {
	message := strings.TrimSpace(req.Message)
	if req.ProposedTotal == nil && message == "" {
		return nil, ErrEmptyCounter
	}
	q, err := s.loadQuote(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if q.IsArchived() {
		return nil, ErrQuoteArchived
	}
	if q.Status.IsFinal() {
		return nil, ErrQuoteClosed
	}
	if !q.Status.IsPending() {
		return nil, ErrQuoteNotPending
	}
	c, err := s.cases.GetByID(ctx, q.CaseID)
	if err != nil {
		return nil, err
	}

	role := actor.RoleLandlord
	if a.IsContractor() {
		role = actor.RoleContractor
	}
	cp := &CounterProposal{
		QuoteID:        q.ID,
		ProposedBy:     a.UserID,
		ProposedByRole: role,
		Status:         CounterStatusPending,
		ProposedTotal:  req.ProposedTotal,
		Message:        message,
	}
	if len(req.Payload) > 0 {
		cp.Payload = datatypes.JSONMap(req.Payload)
	}
	meta := datatypes.JSONMap{"proposedByRole": role, "counterProposalCount": q.CounterProposalCount + 1}
	if req.ProposedTotal != nil {
		meta["proposedTotal"] = *req.ProposedTotal
	}
	ev := s.event(q, a, timeline.EventCounterProposed, "Counter proposal from "+role, meta)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.quotes.UpdateIfStatus(ctx, q.ID, []Status{q.Status}, map[string]any{
			"status":                 string(StatusAwaitingResponse),
			"has_counter_proposal":   true,
			"counter_proposal_count": gorm.Expr("counter_proposal_count + ?", 1),
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrQuoteConflict
		}
		if err := s.quotes.AddCounterProposal(ctx, cp); err != nil {
			return err
		}
		ev.Metadata["counterProposalId"] = cp.ID
		return s.events.Append(ctx, &ev)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.QuoteTransition("counter")
	s.feed.Publish(ev)
	if role == actor.RoleContractor {
		s.notify(ctx, c.ReportedBy, fmt.Sprintf("The contractor sent a counter proposal for %q.", c.Title))
	} else {
		s.notify(ctx, q.ContractorID, fmt.Sprintf("The landlord sent a counter proposal for %q.", c.Title))
	}
	return cp, nil
}

func acceptsQuotes(st cases.Status) bool {
	return st == cases.StatusNew || st.Phase() == cases.PhaseAssignment
}

// ensureNoAgreement fails once a quote for the case has been approved. It
// runs inside the writing transaction.
func (s *Service) ensureNoAgreement(ctx context.Context, caseID string) error {
	n, err := s.quotes.CountApproved(ctx, caseID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCaseNotQuotable
	}
	return nil
}

// Submit creates a contractor's quote for a case, archiving any open quote
// the same contractor had there. A sent quote moves the case to Quoted.
func (s *Service) Submit(ctx context.Context, a actor.Actor, caseID string, req SubmitQuoteRequest) (*Quote, error) {
	if !a.IsContractor() || a.ContractorID == "" {
		return nil, ErrContractorOnly
	}
	c, err := s.loadCase(ctx, a, caseID)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, a, c, req)
}

func (s *Service) submit(ctx context.Context, a actor.Actor, c *cases.Case, req SubmitQuoteRequest) (*Quote, error) {
	if !acceptsQuotes(c.Status) {
		return nil, ErrCaseNotQuotable
	}

	now := s.now()
	q := &Quote{
		CaseID:         c.ID,
		OrganizationID: c.OrganizationID,
		ContractorID:   a.ContractorID,
		Status:         StatusDraft,
		Tax:            roundCents(req.Tax),
		Notes:          strings.TrimSpace(req.Notes),
		Availability:   strings.TrimSpace(req.Availability),
		ValidDays:      req.ValidDays,
	}
	if q.ValidDays == 0 {
		q.ValidDays = DefaultValidDays
	}
	if len(req.LineItems) > 0 {
		var subtotal float64
		for i, in := range req.LineItems {
			qty := in.Quantity
			if qty == 0 {
				qty = 1
			}
			amount := roundCents(qty * in.UnitPrice)
			subtotal += amount
			q.LineItems = append(q.LineItems, LineItem{
				Position:    i + 1,
				Description: strings.TrimSpace(in.Description),
				Quantity:    qty,
				UnitPrice:   in.UnitPrice,
				Amount:      amount,
			})
		}
		q.Subtotal = roundCents(subtotal)
	} else {
		q.Subtotal = roundCents(req.Subtotal)
	}
	q.Total = roundCents(q.Subtotal + q.Tax)
	if !req.Draft {
		markSent(q, now)
	}

	var events []timeline.CaseEvent
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureNoAgreement(ctx, c.ID); err != nil {
			return err
		}
		archived, err := s.quotes.ArchiveOpen(ctx, c.ID, a.ContractorID, now)
		if err != nil {
			return err
		}
		if err := s.quotes.Create(ctx, q); err != nil {
			return err
		}
		events = events[:0]
		events = append(events, s.event(q, a, timeline.EventQuoteSubmitted,
			fmt.Sprintf("Quote for %.2f submitted", q.Total),
			datatypes.JSONMap{"total": q.Total, "draft": req.Draft, "superseded": archived}))
		if q.Status == StatusSent {
			moved, err := s.moveCaseToQuoted(ctx, a, c)
			if err != nil {
				return err
			}
			if moved != nil {
				events = append(events, *moved)
			}
		}
		return s.appendAll(ctx, events)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.QuoteTransition("submit")
	s.feed.Publish(events...)
	if q.Status == StatusSent {
		c.Status = cases.StatusQuoted
		s.notify(ctx, c.ReportedBy, fmt.Sprintf("New quote for %q: %.2f", c.Title, q.Total))
	}
	return q, nil
}

// moveCaseToQuoted advances a New or In Review case to Quoted and returns
// the status event, or nil when the case is already Quoted.
func (s *Service) moveCaseToQuoted(ctx context.Context, a actor.Actor, c *cases.Case) (*timeline.CaseEvent, error) {
	if c.Status == cases.StatusQuoted {
		return nil, nil
	}
	if err := cases.ValidateTransition(c.Status, cases.StatusQuoted); err != nil {
		return nil, err
	}
	ok, err := s.cases.UpdateIfStatus(ctx, c.ID, c.OrganizationID, c.Status, map[string]any{
		"status": string(cases.StatusQuoted),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCaseConflict
	}
	return &timeline.CaseEvent{
		CaseID:         c.ID,
		OrganizationID: c.OrganizationID,
		Type:           timeline.EventStatusChanged,
		Description:    "Status changed from " + string(c.Status) + " to " + string(cases.StatusQuoted),
		ActorID:        a.UserID,
		Metadata:       datatypes.JSONMap{"from": string(c.Status), "to": string(cases.StatusQuoted), "actorRole": a.Role},
	}, nil
}

func markSent(q *Quote, now time.Time) {
	expires := now.AddDate(0, 0, q.ValidDays)
	q.Status = StatusSent
	q.SentAt = &now
	q.ExpiresAt = &expires
}

// Send publishes a draft quote to the landlord.
func (s *Service) Send(ctx context.Context, a actor.Actor, id string) (*Quote, error) {
	if !a.IsContractor() {
		return nil, ErrContractorOnly
	}
	q, err := s.loadQuote(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if q.IsArchived() {
		return nil, ErrQuoteArchived
	}
	if q.Status != StatusDraft {
		return nil, apperr.InvalidTransition("only draft quotes can be sent")
	}
	c, err := s.cases.GetByID(ctx, q.CaseID)
	if err != nil {
		return nil, err
	}
	if !acceptsQuotes(c.Status) {
		return nil, ErrCaseNotQuotable
	}

	markSent(q, s.now())
	var events []timeline.CaseEvent
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureNoAgreement(ctx, q.CaseID); err != nil {
			return err
		}
		ok, err := s.quotes.UpdateIfStatus(ctx, q.ID, []Status{StatusDraft}, map[string]any{
			"status":     string(StatusSent),
			"sent_at":    *q.SentAt,
			"expires_at": *q.ExpiresAt,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrQuoteConflict
		}
		events = events[:0]
		events = append(events, s.event(q, a, timeline.EventQuoteSent,
			fmt.Sprintf("Quote for %.2f sent", q.Total),
			datatypes.JSONMap{"total": q.Total, "expiresAt": q.ExpiresAt.Format(time.RFC3339)}))
		moved, err := s.moveCaseToQuoted(ctx, a, c)
		if err != nil {
			return err
		}
		if moved != nil {
			events = append(events, *moved)
		}
		return s.appendAll(ctx, events)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.QuoteTransition("send")
	s.feed.Publish(events...)
	s.notify(ctx, c.ReportedBy, fmt.Sprintf("New quote for %q: %.2f", c.Title, q.Total))
	return q, nil
}

// Cancel withdraws the contractor's own open quote.
func (s *Service) Cancel(ctx context.Context, a actor.Actor, id string) (*Quote, error) {
	if !a.IsContractor() && !a.IsPrivileged() {
		return nil, ErrContractorOnly
	}
	q, err := s.loadQuote(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if q.IsArchived() {
		return nil, ErrQuoteArchived
	}
	if !q.Status.IsOpen() {
		return nil, ErrQuoteClosed
	}

	ev := s.event(q, a, timeline.EventQuoteCancelled, "Quote withdrawn by contractor", datatypes.JSONMap{"from": string(q.Status)})
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.quotes.UpdateIfStatus(ctx, q.ID, []Status{q.Status}, map[string]any{"status": string(StatusCancelled)})
		if err != nil {
			return err
		}
		if !ok {
			return ErrQuoteConflict
		}
		return s.events.Append(ctx, &ev)
	})
	if err != nil {
		return nil, err
	}

	q.Status = StatusCancelled
	s.metrics.QuoteTransition("cancel")
	s.feed.Publish(ev)
	return q, nil
}

// ExpireOverdue marks pending quotes past their expiry as expired and
// returns how many it changed. Quotes decided concurrently are skipped.
func (s *Service) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.quotes.ListOverdue(ctx, now, 0)
	if err != nil {
		return 0, err
	}

	var (
		expired int
		errs    []error
	)
	for i := range overdue {
		q := &overdue[i]
		sys := actor.System(q.OrganizationID)
		ev := s.event(q, sys, timeline.EventQuoteExpired, "Quote expired without a decision",
			datatypes.JSONMap{"from": string(q.Status)})
		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			ok, err := s.quotes.UpdateIfStatus(ctx, q.ID, pendingStatuses, map[string]any{"status": string(StatusExpired)})
			if err != nil {
				return err
			}
			if !ok {
				return ErrQuoteConflict
			}
			return s.events.Append(ctx, &ev)
		})
		switch {
		case errors.Is(err, ErrQuoteConflict):
			continue
		case err != nil:
			s.log.Error("expire quote failed", zap.String("quote_id", q.ID), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		expired++
		s.metrics.QuoteTransition("expire")
		s.feed.Publish(ev)
		s.notify(ctx, q.ContractorID, "Your quote expired without a decision.")
	}
	return expired, errors.Join(errs...)
}

// AcceptCase is the assigned contractor's answer to an assignment. On a case
// in review it submits the estimate as a sent quote, moving the case to
// Quoted; on a scheduled case it confirms availability.
func (s *Service) AcceptCase(ctx context.Context, a actor.Actor, caseID string, req AcceptCaseRequest) (*AcceptCaseResult, error) {
	if !a.IsContractor() || a.ContractorID == "" {
		return nil, ErrContractorOnly
	}
	c, err := s.loadCase(ctx, a, caseID)
	if err != nil {
		return nil, err
	}
	if !c.IsAssignedTo(a.ContractorID) {
		return nil, cases.ErrNotCaseContractor
	}

	switch c.Status {
	case cases.StatusInReview:
		if req.Price == nil || *req.Price <= 0 {
			return nil, ErrPriceRequired
		}
		q, err := s.submit(ctx, a, c, SubmitQuoteRequest{
			Subtotal:     *req.Price,
			Notes:        req.Message,
			Availability: req.Availability,
		})
		if err != nil {
			return nil, err
		}
		return &AcceptCaseResult{CaseStatus: string(cases.StatusQuoted), Quote: q}, nil

	case cases.StatusScheduled:
		meta := datatypes.JSONMap{"contractorId": a.ContractorID}
		if v := strings.TrimSpace(req.Availability); v != "" {
			meta["availability"] = v
		}
		if req.Price != nil {
			meta["price"] = *req.Price
		}
		ev := timeline.CaseEvent{
			CaseID:         c.ID,
			OrganizationID: c.OrganizationID,
			Type:           timeline.EventContractorConfirmed,
			Description:    "Contractor confirmed the job",
			ActorID:        a.UserID,
			Metadata:       meta,
		}
		if err := s.events.Append(ctx, &ev); err != nil {
			return nil, err
		}
		s.feed.Publish(ev)
		s.notify(ctx, c.ReportedBy, fmt.Sprintf("The contractor confirmed %q.", c.Title))
		return &AcceptCaseResult{CaseStatus: string(c.Status)}, nil
	}
	return nil, ErrNothingToAccept
}

func appendNote(existing string, at time.Time, note string) string {
	line := fmt.Sprintf("[%s] %s", at.UTC().Format(time.RFC3339), note)
	if strings.TrimSpace(existing) == "" {
		return line
	}
	return existing + "\n" + line
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
