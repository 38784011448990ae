package quote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"propcare/internal/database"
	"propcare/internal/domain/cases"
	"propcare/internal/domain/timeline"
	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/apperr"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (n *recordingNotifier) Notify(_ context.Context, recipientID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = map[string][]string{}
	}
	n.sent[recipientID] = append(n.sent[recipientID], message)
	return nil
}

func (n *recordingNotifier) count(recipientID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent[recipientID])
}

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	db       *gorm.DB
	quotes   *GormRepository
	cases    *cases.GormRepository
	events   *timeline.Repository
	notifier *recordingNotifier
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:quote_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	models := append(cases.Models(), &timeline.CaseEvent{})
	require.NoError(t, database.Migrate(db, append(models, Models()...), Indexes))

	f := &fixture{
		db:       db,
		quotes:   NewRepository(db),
		cases:    cases.NewRepository(db),
		events:   timeline.NewRepository(db),
		notifier: &recordingNotifier{},
	}
	f.svc = NewService(Deps{
		Quotes:   f.quotes,
		Cases:    f.cases,
		Events:   f.events,
		Tx:       database.NewTransactor(db),
		Notifier: f.notifier,
		Log:      zap.NewNop(),
		Now:      func() time.Time { return baseTime },
	})
	return f
}

var (
	landlord   = actor.Actor{UserID: "u-land", Role: actor.RoleLandlord, OrgID: "org-1"}
	contractor = actor.Actor{UserID: "u-v1", Role: actor.RoleContractor, OrgID: "org-1", ContractorID: "V1"}
	outsider   = actor.Actor{UserID: "u-x", Role: actor.RoleLandlord, OrgID: "org-2"}
)

func strPtr(s string) *string { return &s }

func (f *fixture) seedCase(t *testing.T, status cases.Status, assignee *string) *cases.Case {
	t.Helper()
	c := &cases.Case{
		OrganizationID:       "org-1",
		Title:                "Broken water heater",
		Category:             "Plumbing",
		Priority:             cases.PriorityNormal,
		Status:               status,
		AssignedContractorID: assignee,
		ReportedBy:           landlord.UserID,
	}
	require.NoError(t, f.cases.Create(context.Background(), c))
	return c
}

func (f *fixture) seedQuote(t *testing.T, caseID, contractorID string, status Status, archived bool) *Quote {
	t.Helper()
	q := &Quote{
		CaseID:         caseID,
		OrganizationID: "org-1",
		ContractorID:   contractorID,
		Status:         status,
		Subtotal:       400,
		Total:          400,
		ValidDays:      DefaultValidDays,
	}
	if archived {
		at := baseTime.Add(-time.Hour)
		q.ArchivedAt = &at
	}
	require.NoError(t, f.quotes.Create(context.Background(), q))
	return q
}

func (f *fixture) status(t *testing.T, id string) Status {
	t.Helper()
	q, err := f.quotes.GetByID(context.Background(), id)
	require.NoError(t, err)
	return q.Status
}

func TestAcceptIsWinnerTakeAll(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusQuoted, nil)

	winner := f.seedQuote(t, c.ID, "V1", StatusSent, false)
	countered := f.seedQuote(t, c.ID, "V2", StatusAwaitingResponse, false)
	draft := f.seedQuote(t, c.ID, "V3", StatusDraft, false)
	archived := f.seedQuote(t, c.ID, "V4", StatusSent, true)
	withdrawn := f.seedQuote(t, c.ID, "V5", StatusCancelled, false)

	got, err := f.svc.Accept(ctx, landlord, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	require.NotNil(t, got.ApprovedAt)

	assert.Equal(t, StatusApproved, f.status(t, winner.ID))
	assert.Equal(t, StatusDeclined, f.status(t, countered.ID))
	assert.Equal(t, StatusDeclined, f.status(t, draft.ID))
	assert.Equal(t, StatusSent, f.status(t, archived.ID), "archived quotes are left alone")
	assert.Equal(t, StatusCancelled, f.status(t, withdrawn.ID))

	stored, err := f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cases.StatusInReview, stored.Status)
	require.NotNil(t, stored.AssignedContractorID)
	assert.Equal(t, "V1", *stored.AssignedContractorID)

	n, err := f.quotes.CountApproved(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	events, err := f.events.ListByCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, timeline.EventQuoteAccepted, events[0].Type)
	assert.Equal(t, timeline.EventQuoteDeclined, events[1].Type)

	assert.Equal(t, 1, f.notifier.count("V1"))
	assert.Equal(t, 1, f.notifier.count("V2"))
	assert.Equal(t, 0, f.notifier.count("V5"))

	_, err = f.svc.Accept(ctx, landlord, countered.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestAcceptConcurrentLeavesOneApproved(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusQuoted, nil)
	q1 := f.seedQuote(t, c.ID, "V1", StatusSent, false)
	q2 := f.seedQuote(t, c.ID, "V2", StatusSent, false)

	ids := []string{q1.ID, q2.ID}
	errs := make([]error, len(ids))
	var g errgroup.Group
	for i := range ids {
		i := i
		g.Go(func() error {
			_, errs[i] = f.svc.Accept(ctx, landlord, ids[i])
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrInvalidTransition), err)
	}
	assert.Equal(t, 1, succeeded)

	n, err := f.quotes.CountApproved(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAcceptRejectsInvalidRequests(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusQuoted, nil)
	q := f.seedQuote(t, c.ID, "V1", StatusSent, false)
	archived := f.seedQuote(t, c.ID, "V2", StatusSent, true)

	_, err := f.svc.Accept(ctx, outsider, q.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = f.svc.Accept(ctx, contractor, q.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = f.svc.Accept(ctx, landlord, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Accept(ctx, landlord, archived.ID)
	assert.ErrorIs(t, err, ErrQuoteArchived)

	scheduled := f.seedCase(t, cases.StatusScheduled, strPtr("V9"))
	late := f.seedQuote(t, scheduled.ID, "V1", StatusSent, false)
	_, err = f.svc.Accept(ctx, landlord, late.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.Equal(t, StatusSent, f.status(t, late.ID))
}

func TestDeclineLeavesSiblingsUntouched(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusQuoted, nil)
	target := f.seedQuote(t, c.ID, "V1", StatusSent, false)
	sibling := f.seedQuote(t, c.ID, "V2", StatusAwaitingResponse, false)

	got, err := f.svc.Decline(ctx, landlord, target.ID, "  too expensive ")
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, got.Status)

	stored, err := f.quotes.GetByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, stored.Status)
	assert.Contains(t, stored.InternalNotes, "Declined: too expensive")
	assert.Equal(t, StatusAwaitingResponse, f.status(t, sibling.ID))

	storedCase, err := f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cases.StatusQuoted, storedCase.Status)

	_, err = f.svc.Decline(ctx, landlord, target.ID, "")
	assert.ErrorIs(t, err, ErrQuoteNotPending)
}

func TestCounterProposeIncrementsEachTime(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusQuoted, nil)
	q := f.seedQuote(t, c.ID, "V1", StatusSent, false)

	total := 350.0
	cp, err := f.svc.CounterPropose(ctx, landlord, q.ID, CounterRequest{ProposedTotal: &total, Message: "Can you do 350?"})
	require.NoError(t, err)
	assert.Equal(t, actor.RoleLandlord, cp.ProposedByRole)
	assert.Equal(t, CounterStatusPending, cp.Status)

	stored, err := f.quotes.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingResponse, stored.Status)
	assert.True(t, stored.HasCounterProposal)
	assert.Equal(t, 1, stored.CounterProposalCount)

	cp, err = f.svc.CounterPropose(ctx, contractor, q.ID, CounterRequest{Message: "375 is my floor"})
	require.NoError(t, err)
	assert.Equal(t, actor.RoleContractor, cp.ProposedByRole)

	stored, err = f.quotes.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CounterProposalCount)
	assert.Equal(t, StatusAwaitingResponse, stored.Status)

	storedCase, err := f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cases.StatusQuoted, storedCase.Status)

	assert.Equal(t, 1, f.notifier.count("V1"))
	assert.Equal(t, 1, f.notifier.count(landlord.UserID))
}

func TestCounterProposeRejectsClosedQuotes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusQuoted, nil)
	req := CounterRequest{Message: "lower please"}

	for _, st := range []Status{StatusApproved, StatusDeclined, StatusCancelled, StatusExpired} {
		q := f.seedQuote(t, c.ID, "V"+string(st), st, false)
		_, err := f.svc.CounterPropose(ctx, landlord, q.ID, req)
		assert.ErrorIs(t, err, ErrQuoteClosed, st)
	}

	archived := f.seedQuote(t, c.ID, "V1", StatusSent, true)
	_, err := f.svc.CounterPropose(ctx, landlord, archived.ID, req)
	assert.ErrorIs(t, err, ErrQuoteArchived)

	open := f.seedQuote(t, c.ID, "V2", StatusSent, false)
	_, err = f.svc.CounterPropose(ctx, landlord, open.ID, CounterRequest{Message: "  "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.CounterPropose(ctx, contractor, open.ID, req)
	assert.ErrorIs(t, err, ErrNotQuoteContractor)
}

func TestSubmitSupersedesAndMovesCase(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusNew, nil)

	first, err := f.svc.Submit(ctx, contractor, c.ID, SubmitQuoteRequest{
		LineItems: []LineItemInput{
			{Description: "Replace anode rod", Quantity: 1, UnitPrice: 120},
			{Description: "Labour (hours)", Quantity: 2.5, UnitPrice: 80},
		},
		Tax: 25.5,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSent, first.Status)
	assert.Equal(t, 320.0, first.Subtotal)
	assert.Equal(t, 345.5, first.Total)
	require.NotNil(t, first.ExpiresAt)
	assert.Equal(t, baseTime.AddDate(0, 0, DefaultValidDays), *first.ExpiresAt)

	storedCase, err := f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cases.StatusQuoted, storedCase.Status)

	second, err := f.svc.Submit(ctx, contractor, c.ID, SubmitQuoteRequest{Subtotal: 300})
	require.NoError(t, err)

	open, err := f.svc.List(ctx, landlord, c.ID, false)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)

	all, err := f.svc.List(ctx, landlord, c.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	loaded, err := f.quotes.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsArchived())
	assert.Len(t, loaded.LineItems, 2)
	assert.Equal(t, "Replace anode rod", loaded.LineItems[0].Description)

	_, err = f.svc.Submit(ctx, landlord, c.ID, SubmitQuoteRequest{Subtotal: 10})
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	closed := f.seedCase(t, cases.StatusInProgress, strPtr("V1"))
	_, err = f.svc.Submit(ctx, contractor, closed.ID, SubmitQuoteRequest{Subtotal: 10})
	assert.ErrorIs(t, err, ErrCaseNotQuotable)
}

func TestDraftSendAndCancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusInReview, strPtr("V1"))

	draft, err := f.svc.Submit(ctx, contractor, c.ID, SubmitQuoteRequest{Subtotal: 200, Draft: true, ValidDays: 3})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, draft.Status)
	assert.Nil(t, draft.ExpiresAt)

	storedCase, err := f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cases.StatusInReview, storedCase.Status, "drafts do not move the case")

	sent, err := f.svc.Send(ctx, contractor, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, sent.Status)
	assert.Equal(t, baseTime.AddDate(0, 0, 3), *sent.ExpiresAt)

	storedCase, err = f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cases.StatusQuoted, storedCase.Status)

	_, err = f.svc.Send(ctx, contractor, draft.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	cancelled, err := f.svc.Cancel(ctx, contractor, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	_, err = f.svc.Cancel(ctx, contractor, draft.ID)
	assert.ErrorIs(t, err, ErrQuoteClosed)
}

func TestExpireOverdue(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusQuoted, nil)

	overdue := f.seedQuote(t, c.ID, "V1", StatusSent, false)
	fresh := f.seedQuote(t, c.ID, "V2", StatusAwaitingResponse, false)
	approved := f.seedQuote(t, c.ID, "V3", StatusApproved, false)

	past := baseTime.Add(-time.Minute)
	future := baseTime.Add(time.Hour)
	require.NoError(t, f.db.Model(&Quote{}).Where("id IN ?", []string{overdue.ID, approved.ID}).Update("expires_at", past).Error)
	require.NoError(t, f.db.Model(&Quote{}).Where("id = ?", fresh.ID).Update("expires_at", future).Error)

	n, err := f.svc.ExpireOverdue(ctx, baseTime)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, StatusExpired, f.status(t, overdue.ID))
	assert.Equal(t, StatusAwaitingResponse, f.status(t, fresh.ID))
	assert.Equal(t, StatusApproved, f.status(t, approved.ID))

	n, err = f.svc.ExpireOverdue(ctx, baseTime)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.svc.CounterPropose(ctx, landlord, overdue.ID, CounterRequest{Message: "still there?"})
	assert.ErrorIs(t, err, ErrQuoteClosed)
}

func TestAcceptCase(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	review := f.seedCase(t, cases.StatusInReview, strPtr("V1"))
	_, err := f.svc.AcceptCase(ctx, contractor, review.ID, AcceptCaseRequest{})
	assert.ErrorIs(t, err, ErrPriceRequired)

	price := 480.0
	res, err := f.svc.AcceptCase(ctx, contractor, review.ID, AcceptCaseRequest{Price: &price, Availability: "Tuesday morning"})
	require.NoError(t, err)
	assert.Equal(t, string(cases.StatusQuoted), res.CaseStatus)
	require.NotNil(t, res.Quote)
	assert.Equal(t, 480.0, res.Quote.Total)
	assert.Equal(t, "Tuesday morning", res.Quote.Availability)

	scheduled := f.seedCase(t, cases.StatusScheduled, strPtr("V1"))
	res, err = f.svc.AcceptCase(ctx, contractor, scheduled.ID, AcceptCaseRequest{Availability: "Friday"})
	require.NoError(t, err)
	assert.Equal(t, string(cases.StatusScheduled), res.CaseStatus)
	assert.Nil(t, res.Quote)

	events, err := f.events.ListByCase(ctx, scheduled.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, timeline.EventContractorConfirmed, events[0].Type)
	assert.Equal(t, "Friday", events[0].Metadata["availability"])

	other := f.seedCase(t, cases.StatusInReview, strPtr("V2"))
	_, err = f.svc.AcceptCase(ctx, contractor, other.ID, AcceptCaseRequest{Price: &price})
	assert.ErrorIs(t, err, cases.ErrNotCaseContractor)

	fresh := f.seedCase(t, cases.StatusInProgress, strPtr("V1"))
	_, err = f.svc.AcceptCase(ctx, contractor, fresh.ID, AcceptCaseRequest{Price: &price})
	assert.ErrorIs(t, err, ErrNothingToAccept)
}

func TestListScopesContractorsAndOrganizations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusQuoted, nil)
	f.seedQuote(t, c.ID, "V1", StatusSent, false)
	f.seedQuote(t, c.ID, "V2", StatusSent, false)

	all, err := f.svc.List(ctx, landlord, c.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.List(ctx, contractor, c.ID, false)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "V1", mine[0].ContractorID)

	_, err = f.svc.List(ctx, outsider, c.ID, false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStorageRejectsSecondApprovedQuote(t *testing.T) {
	f := setup(t)
	c := f.seedCase(t, cases.StatusInReview, nil)
	f.seedQuote(t, c.ID, "V1", StatusApproved, false)

	err := f.quotes.Create(context.Background(), &Quote{CaseID: c.ID, OrganizationID: "org-1", ContractorID: "V2", Status: StatusApproved})
	assert.ErrorIs(t, err, ErrMultipleApproved)
}

func TestSubmitAfterAcceptIsRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusQuoted, nil)
	winner := f.seedQuote(t, c.ID, "V1", StatusSent, false)
	f.seedQuote(t, c.ID, "V2", StatusSent, false)

	_, err := f.svc.Accept(ctx, landlord, winner.ID)
	require.NoError(t, err)

	loser := actor.Actor{UserID: "u-v2", Role: actor.RoleContractor, OrgID: "org-1", ContractorID: "V2"}
	_, err = f.svc.Submit(ctx, loser, c.ID, SubmitQuoteRequest{Subtotal: 350})
	assert.ErrorIs(t, err, ErrCaseNotQuotable)

	_, err = f.svc.Submit(ctx, loser, c.ID, SubmitQuoteRequest{Subtotal: 350, Draft: true})
	assert.ErrorIs(t, err, ErrCaseNotQuotable)

	stored, err := f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cases.StatusInReview, stored.Status)
	require.NotNil(t, stored.AssignedContractorID)
	assert.Equal(t, "V1", *stored.AssignedContractorID)

	all, err := f.quotes.ListByCase(ctx, c.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, StatusApproved, f.status(t, winner.ID))
}

func TestDraftsArePrivateToTheirAuthor(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.seedCase(t, cases.StatusInReview, nil)
	draft := f.seedQuote(t, c.ID, "V1", StatusDraft, false)

	seen, err := f.svc.List(ctx, landlord, c.ID, false)
	require.NoError(t, err)
	assert.Empty(t, seen)

	mine, err := f.svc.List(ctx, contractor, c.ID, false)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	admin := actor.Actor{UserID: "u-admin", Role: actor.RoleAdmin, OrgID: "org-1"}
	byAdmin, err := f.svc.List(ctx, admin, c.ID, false)
	require.NoError(t, err)
	assert.Len(t, byAdmin, 1)

	_, err = f.svc.Get(ctx, landlord, draft.ID)
	assert.ErrorIs(t, err, ErrQuoteNotFound)

	req := CounterRequest{Message: "lower please"}
	_, err = f.svc.CounterPropose(ctx, landlord, draft.ID, req)
	assert.ErrorIs(t, err, ErrQuoteNotFound)

	_, err = f.svc.CounterPropose(ctx, contractor, draft.ID, req)
	assert.ErrorIs(t, err, ErrQuoteNotPending)

	_, err = f.svc.Accept(ctx, landlord, draft.ID)
	assert.ErrorIs(t, err, ErrQuoteNotFound)

	assert.Equal(t, StatusDraft, f.status(t, draft.ID))
}
