package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/collab-league-api/internal/models"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
)

type campaignFixture struct {
	requests  *RequestService
	campaigns *CampaignService
	store     *memoryCollabStore
	cache     *cacheRepoSpy
}

func newCampaignFixture() *campaignFixture {
	rf := newRequestFixture()
	identity := NewIdentityService(rf.actors, zap.NewNop())
	cache := NewCacheService(rf.cache, nil, time.Minute, zap.NewNop(), true)
	campaigns := NewCampaignService(identity, rf.store, memoryNoteStore{collab: rf.store}, rf.audit, cache, nil, nil, zap.NewNop())
	campaigns.now = func() time.Time { return time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC) }
	return &campaignFixture{requests: rf.svc, campaigns: campaigns, store: rf.store, cache: rf.cache}
}

func (f *campaignFixture) acceptedCampaign(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	created, err := f.requests.Create(ctx, businessID, validRequestInput())
	require.NoError(t, err)
	_, err = f.requests.Respond(ctx, creatorID, created.ID, models.RespondRequestInput{Status: models.RequestStatusAccepted})
	require.NoError(t, err)
	return created.ID
}

func TestCampaignCompleteSetsCompletedAt(t *testing.T) {
	f := newCampaignFixture()
	ctx := context.Background()
	id := f.acceptedCampaign(t)

	view, err := f.campaigns.UpdateStatus(ctx, businessID, id, models.UpdateCampaignStatusInput{Status: models.CampaignStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusCompleted, view.Status)
	require.NotNil(t, view.CompletedAt)
	assert.Equal(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC), *view.CompletedAt)

	_, err = f.campaigns.UpdateStatus(ctx, creatorID, id, models.UpdateCampaignStatusInput{Status: models.CampaignStatusCancelled})
	requireCode(t, err, appErrors.ErrForbidden)

	note, err := f.campaigns.AddNote(ctx, creatorID, id, models.AddNoteInput{Content: "Final report attached"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", note.AuthorName)
}

func TestCampaignCancelClosesNotes(t *testing.T) {
	f := newCampaignFixture()
	ctx := context.Background()
	id := f.acceptedCampaign(t)

	view, err := f.campaigns.UpdateStatus(ctx, creatorID, id, models.UpdateCampaignStatusInput{Status: models.CampaignStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusCancelled, view.Status)
	assert.Nil(t, view.CompletedAt)

	_, err = f.campaigns.AddNote(ctx, businessID, id, models.AddNoteInput{Content: "hello?"})
	requireCode(t, err, appErrors.ErrForbidden)
}

func TestCampaignUpdateStatusDeniesEveryoneElseAlike(t *testing.T) {
	f := newCampaignFixture()
	ctx := context.Background()
	id := f.acceptedCampaign(t)

	_, err := f.campaigns.UpdateStatus(ctx, otherBusinessID, id, models.UpdateCampaignStatusInput{Status: models.CampaignStatusCompleted})
	foreign := requireCode(t, err, appErrors.ErrForbidden)

	_, err = f.campaigns.UpdateStatus(ctx, businessID, "99999999-2222-4333-8444-555555555555", models.UpdateCampaignStatusInput{Status: models.CampaignStatusCompleted})
	missing := requireCode(t, err, appErrors.ErrForbidden)
	assert.Equal(t, foreign.Message, missing.Message)

	_, err = f.campaigns.UpdateStatus(ctx, adminID, id, models.UpdateCampaignStatusInput{Status: models.CampaignStatusCompleted})
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = f.campaigns.UpdateStatus(ctx, businessID, id, models.UpdateCampaignStatusInput{Status: models.CampaignStatusInProgress})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestCampaignNotesFlow(t *testing.T) {
	f := newCampaignFixture()
	ctx := context.Background()
	id := f.acceptedCampaign(t)

	_, err := f.campaigns.AddNote(ctx, businessID, id, models.AddNoteInput{Content: "  <p>Brief is <em>ready</em></p> "})
	require.NoError(t, err)
	_, err = f.campaigns.AddNote(ctx, creatorID, id, models.AddNoteInput{Content: "Got it"})
	require.NoError(t, err)

	_, err = f.campaigns.AddNote(ctx, creatorID, id, models.AddNoteInput{Content: "   "})
	requireCode(t, err, appErrors.ErrValidation)

	_, err = f.campaigns.AddNote(ctx, otherCreatorID, id, models.AddNoteInput{Content: "let me in"})
	requireCode(t, err, appErrors.ErrForbidden)

	notes, err := f.campaigns.ListNotes(ctx, creatorID, id)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Brief is ready", notes[0].Content)
	assert.Equal(t, "Acme", notes[0].AuthorName)
	assert.Equal(t, "Ana", notes[1].AuthorName)
	assert.True(t, notes[0].CreatedAt.Before(notes[1].CreatedAt))

	_, err = f.campaigns.ListNotes(ctx, otherBusinessID, id)
	requireCode(t, err, appErrors.ErrNotFound)
	assert.True(t, f.cache.wasInvalidated(dashboardView(creatorID)+":*"))
}

func TestCampaignNotesRequireAcceptedRequest(t *testing.T) {
	f := newCampaignFixture()
	ctx := context.Background()
	created, err := f.requests.Create(ctx, businessID, validRequestInput())
	require.NoError(t, err)

	_, err = f.campaigns.AddNote(ctx, businessID, created.ID, models.AddNoteInput{Content: "early"})
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = f.campaigns.ListNotes(ctx, businessID, created.ID)
	requireCode(t, err, appErrors.ErrNotFound)

	_, err = f.campaigns.Get(ctx, businessID, created.ID)
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestCampaignListScopesToParticipant(t *testing.T) {
	f := newCampaignFixture()
	ctx := context.Background()
	id := f.acceptedCampaign(t)

	page, hit, err := f.campaigns.List(ctx, creatorID, models.CampaignFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, id, page.Items[0].ID)
	require.NotNil(t, page.Items[0].AcceptedAt)

	other, _, err := f.campaigns.List(ctx, otherBusinessID, models.CampaignFilter{})
	require.NoError(t, err)
	assert.Empty(t, other.Items)

	all, _, err := f.campaigns.List(ctx, adminID, models.CampaignFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 1)

	_, hit, err = f.campaigns.List(ctx, creatorID, models.CampaignFilter{})
	require.NoError(t, err)
	assert.True(t, hit)

	_, err = f.campaigns.UpdateStatus(ctx, creatorID, id, models.UpdateCampaignStatusInput{Status: models.CampaignStatusCompleted})
	require.NoError(t, err)
	page, hit, err = f.campaigns.List(ctx, creatorID, models.CampaignFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, models.CampaignStatusCompleted, page.Items[0].Status)
}

func TestCampaignGetForAdmin(t *testing.T) {
	f := newCampaignFixture()
	id := f.acceptedCampaign(t)

	view, err := f.campaigns.Get(context.Background(), adminID, id)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusInProgress, view.Status)
}
