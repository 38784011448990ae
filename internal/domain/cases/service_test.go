package cases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"propcare/internal/database"
	"propcare/internal/domain/timeline"
	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/apperr"
)

type recordingFeed struct{ events []timeline.CaseEvent }

func (f *recordingFeed) Publish(events ...timeline.CaseEvent) { f.events = append(f.events, events...) }

type fixture struct {
	svc    *Service
	repo   *GormRepository
	events *timeline.Repository
	feed   *recordingFeed
	db     *gorm.DB
}

func setup(t *testing.T) fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:cases_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Case{}, &timeline.CaseEvent{}))

	repo := NewRepository(db)
	events := timeline.NewRepository(db)
	feed := &recordingFeed{}
	svc := NewService(repo, events, database.NewTransactor(db), feed, zap.NewNop())
	return fixture{svc: svc, repo: repo, events: events, feed: feed, db: db}
}

var (
	landlord   = actor.Actor{UserID: "u-land", Role: actor.RoleLandlord, OrgID: "org-1"}
	contractor = actor.Actor{UserID: "u-con", Role: actor.RoleContractor, OrgID: "org-1", ContractorID: "v-1"}
	outsider   = actor.Actor{UserID: "u-x", Role: actor.RoleLandlord, OrgID: "org-2"}
)

func seedCase(t *testing.T, f fixture, status Status, assignee *string) *Case {
	t.Helper()
	c := &Case{OrganizationID: "org-1", Title: "Leaking faucet", Category: "Plumbing", Priority: PriorityNormal, Status: status, AssignedContractorID: assignee}
	require.NoError(t, f.repo.Create(context.Background(), c))
	return c
}

func strPtr(s string) *string { return &s }

func TestCreateCaseRecordsEvent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, landlord, CreateCaseRequest{
		Title:    "  No hot water ",
		Category: "Plumbing",
		Priority: "emergency",
		AITriage: map[string]any{"estimatedCost": "$200 - $350"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusNew, c.Status)
	assert.Equal(t, PriorityUrgent, c.Priority)
	assert.Equal(t, "No hot water", c.Title)

	stored, err := f.repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "$200 - $350", stored.AITriage["estimatedCost"])

	events, err := f.events.ListByCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, timeline.EventCaseCreated, events[0].Type)
	assert.Len(t, f.feed.events, 1)
}

func TestCreateCaseValidation(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), landlord, CreateCaseRequest{Title: "   "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Create(context.Background(), landlord, CreateCaseRequest{Title: "x", Priority: "someday"})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestLoadHidesOtherOrganizations(t *testing.T) {
	f := setup(t)
	c := seedCase(t, f, StatusNew, nil)

	_, err := f.svc.Load(context.Background(), outsider, c.ID)
	assert.ErrorIs(t, err, ErrCaseNotFound)

	_, err = f.svc.Load(context.Background(), landlord, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestContractorDrivesExecution(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := seedCase(t, f, StatusScheduled, strPtr("v-1"))

	updated, err := f.svc.Transition(ctx, contractor, c.ID, StatusInProgress, "on site")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, updated.Status)

	updated, err = f.svc.Transition(ctx, contractor, c.ID, StatusResolved, "")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, updated.Status)
	assert.NotNil(t, updated.ResolvedAt)

	events, err := f.events.ListByCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "on site", events[0].Metadata["note"])
	assert.Equal(t, "Resolved", events[1].Metadata["to"])
}

func TestTransitionOwnership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := seedCase(t, f, StatusScheduled, strPtr("v-other"))

	_, err := f.svc.Transition(ctx, contractor, c.ID, StatusInProgress, "")
	assert.ErrorIs(t, err, ErrNotCaseContractor)

	_, err = f.svc.Transition(ctx, landlord, c.ID, StatusInProgress, "")
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = f.svc.Transition(ctx, actor.System("org-1"), c.ID, StatusInProgress, "")
	assert.NoError(t, err)
}

func TestUnassignedNewCaseOnlyLeavesThroughClosure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := seedCase(t, f, StatusNew, nil)

	for _, to := range []Status{StatusInReview, StatusScheduled, StatusInProgress} {
		_, err := f.svc.Transition(ctx, landlord, c.ID, to, "")
		assert.ErrorIs(t, err, ErrCaseNotDispatched, to)
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition, to)
	}
	_, err := f.svc.Transition(ctx, actor.System("org-1"), c.ID, StatusScheduled, "")
	assert.ErrorIs(t, err, ErrCaseNotDispatched)

	stored, err := f.repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, stored.Status)
	events, err := f.events.ListByCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, events)

	closed, err := f.svc.Close(ctx, landlord, c.ID, "duplicate request")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, closed.Status)

	assigned := seedCase(t, f, StatusNew, strPtr("v-1"))
	updated, err := f.svc.Transition(ctx, landlord, assigned.ID, StatusScheduled, "")
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, updated.Status)
}

func TestTransitionRejectsInvalidEdgeWithoutWriting(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := seedCase(t, f, StatusClosed, nil)

	_, err := f.svc.Transition(ctx, landlord, c.ID, StatusInReview, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	stored, err := f.repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, stored.Status)
	events, err := f.events.ListByCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCloseMovesToResolved(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := seedCase(t, f, StatusInProgress, strPtr("v-1"))

	closed, err := f.svc.Close(ctx, landlord, c.ID, "tenant confirmed fix")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, closed.Status)

	events, err := f.events.ListByCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, timeline.EventCaseClosed, events[0].Type)

	_, err = f.svc.Close(ctx, landlord, c.ID, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestStaleStatusLosesCompareAndSet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := seedCase(t, f, StatusQuoted, nil)

	ok, err := f.repo.UpdateIfStatus(ctx, c.ID, "org-1", StatusInReview, map[string]any{"status": string(StatusScheduled)})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.repo.UpdateIfStatus(ctx, c.ID, "org-2", StatusQuoted, map[string]any{"status": string(StatusScheduled)})
	require.NoError(t, err)
	assert.False(t, ok, "organization scopes the write")

	ok, err = f.repo.UpdateIfStatus(ctx, c.ID, "org-1", StatusQuoted, map[string]any{"status": string(StatusScheduled)})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetPriority(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := seedCase(t, f, StatusInReview, nil)
	urgent := true

	updated, err := f.svc.SetPriority(ctx, landlord, c.ID, PriorityRequest{Priority: "high", IsUrgent: &urgent})
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, updated.Priority)
	assert.True(t, updated.IsEmergency())

	_, err = f.svc.SetPriority(ctx, contractor, c.ID, PriorityRequest{Priority: "urgent"})
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = f.svc.SetPriority(ctx, landlord, c.ID, PriorityRequest{Priority: "later"})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestListScopesContractorsToTheirCases(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	seedCase(t, f, StatusScheduled, strPtr("v-1"))
	seedCase(t, f, StatusNew, nil)

	all, err := f.svc.List(ctx, landlord, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.List(ctx, contractor, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	open, err := f.svc.List(ctx, landlord, ListFilter{Status: StatusNew})
	require.NoError(t, err)
	assert.Len(t, open, 1)
}
