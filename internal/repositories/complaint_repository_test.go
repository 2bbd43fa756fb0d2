package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricegov/internal/fsm"
	"pricegov/internal/models"
)

func createComplaint(t *testing.T, f *fixture, repo *ComplaintRepository, kind string) models.Complaint {
	t.Helper()
	c, err := repo.Create(context.Background(), models.Complaint{
		Title:         "Overcharged for urea",
		Description:   "Shop asked 1200 for a 50kg bag",
		ComplaintType: kind,
		Priority:      models.PriorityMedium,
		ComplainantID: f.farmer.ID,
		DistrictID:    f.district.ID,
		SKUID:         &f.sku.ID,
	}, "Complaint created")
	require.NoError(t, err)
	return c
}

func TestComplaintCreateRecordsHistory(t *testing.T) {
	f := newFixture(t)
	repo := &ComplaintRepository{DB: f.db}
	c := createComplaint(t, f, repo, models.ComplaintPriceViolation)

	assert.Equal(t, fsm.StatusPending, c.Status)
	assert.Equal(t, "farmer@test", c.ComplainantName)
	assert.Equal(t, "Urea 46-0-0", c.SKUName)

	history, err := repo.ListHistory(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "", history[0].OldStatus)
	assert.Equal(t, fsm.StatusPending, history[0].NewStatus)
	assert.Equal(t, "Complaint created", history[0].Notes)
}

func TestComplaintWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := &ComplaintRepository{DB: f.db}
	c := createComplaint(t, f, repo, models.ComplaintPriceViolation)

	require.NoError(t, repo.Assign(ctx, c.ID, c.Status, f.admin.ID, f.admin.ID, "Assigned to Asha Rao"))
	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, fsm.StatusUnderReview, got.Status)
	require.NotNil(t, got.AssignedToID)
	assert.Equal(t, "Asha Rao", got.AssignedToName)

	// a stale "from" status loses the optimistic update
	err = repo.Transition(ctx, c.ID, fsm.StatusPending, fsm.StatusUnderReview, f.admin.ID, "")
	assert.ErrorIs(t, err, models.ErrStaleStatus)

	err = repo.Resolve(ctx, c.ID, got.Status, models.ResolveRequest{ResolutionAction: "Warning issued"}, f.admin.ID, "done")
	require.NoError(t, err)
	got, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, fsm.StatusResolved, got.Status)
	assert.Equal(t, "Warning issued", got.ResolutionAction)
	require.NotNil(t, got.ResolvedAt)
	assert.Nil(t, got.ClosedAt)

	err = repo.Transition(ctx, c.ID, got.Status, fsm.StatusInvestigation, f.admin.ID, "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	require.NoError(t, repo.Transition(ctx, c.ID, got.Status, fsm.StatusClosed, f.admin.ID, "archived"))
	got, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ClosedAt)

	history, err := repo.ListHistory(ctx, c.ID)
	require.NoError(t, err)
	var statuses []string
	for _, h := range history {
		statuses = append(statuses, h.NewStatus)
	}
	assert.Equal(t, []string{"pending", "under_review", "resolved", "closed"}, statuses)
}

func TestComplaintListAndStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := &ComplaintRepository{DB: f.db}
	createComplaint(t, f, repo, models.ComplaintPriceViolation)
	createComplaint(t, f, repo, models.ComplaintServiceIssue)
	c := createComplaint(t, f, repo, models.ComplaintOther)
	require.NoError(t, repo.Transition(ctx, c.ID, c.Status, fsm.StatusRejected, f.admin.ID, ""))

	list, total, err := repo.List(ctx, models.ComplaintFilter{ComplainantID: &f.farmer.ID, Status: fsm.StatusPending,
		Page: models.NewPage(1, 1)})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 1)

	stats, err := repo.Statistics(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintStatistics{TotalComplaints: 3, PendingComplaints: 2, PriceViolations: 1}, stats)

	stats, err = repo.Statistics(ctx, &f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalComplaints)
}

func TestEvidenceAndNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := &ComplaintRepository{DB: f.db}
	notes := &NotificationRepository{DB: f.db}
	c := createComplaint(t, f, repo, models.ComplaintPriceViolation)

	_, err := repo.AddEvidence(ctx, models.ComplaintEvidence{ComplaintID: c.ID, FileType: models.EvidenceReceipt,
		FileURL: "/uploads/complaints/evidence/r.jpg", FileName: "r.jpg", FileSize: 2048, UploadedByID: f.farmer.ID})
	require.NoError(t, err)
	evidence, err := repo.ListEvidence(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, evidence, 1)
	assert.Equal(t, int64(2048), evidence[0].FileSize)

	n, err := notes.Create(ctx, models.ComplaintNotification{ComplaintID: c.ID, RecipientID: f.admin.ID,
		NotificationType: models.NotifyStatusChange, Title: "New complaint", Message: "m"})
	require.NoError(t, err)
	require.NoError(t, notes.MarkPushed(ctx, n.ID))

	_, err = notes.MarkRead(ctx, n.ID, f.farmer.ID, time.Now().UTC())
	assert.ErrorIs(t, err, models.ErrNoRecord)

	read, err := notes.MarkRead(ctx, n.ID, f.admin.ID, day(4))
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)
	assert.True(t, read.SentViaPush)
	assert.True(t, read.ReadAt.Equal(day(4)))

	unread, total, err := notes.ListForRecipient(ctx, f.admin.ID, true, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, unread)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), models.ErrNoRecord)
}
