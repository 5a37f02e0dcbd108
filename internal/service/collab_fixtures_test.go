package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/internal/repository"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
)

var (
	businessID      = "7d1c5f1e-2b1a-4a53-9a0e-8f6f7d0b1a01"
	otherBusinessID = "7d1c5f1e-2b1a-4a53-9a0e-8f6f7d0b1a02"
	creatorID       = "0f8a2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c01"
	otherCreatorID  = "0f8a2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c02"
	adminID         = "5a5a5a5a-1111-4222-8333-944444444401"
	newcomerID      = "5a5a5a5a-1111-4222-8333-944444444402"
)

func rolePtr(r models.Role) *models.Role { return &r }

// actorStoreStub serves actors from a fixed table.
type actorStoreStub struct {
	actors map[string]*models.Actor
	err    error
	calls  int
}

func (s *actorStoreStub) FindActor(ctx context.Context, userID string) (*models.Actor, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	actor, ok := s.actors[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *actor
	return &copied, nil
}

func newActorStore() *actorStoreStub {
	return &actorStoreStub{actors: map[string]*models.Actor{
		businessID:      {UserID: businessID, Role: rolePtr(models.RoleBusiness), OnboardingComplete: true, DisplayName: "Acme"},
		otherBusinessID: {UserID: otherBusinessID, Role: rolePtr(models.RoleBusiness), OnboardingComplete: true, DisplayName: "Globex"},
		creatorID:       {UserID: creatorID, Role: rolePtr(models.RoleCreator), OnboardingComplete: true, DisplayName: "Ana"},
		otherCreatorID:  {UserID: otherCreatorID, Role: rolePtr(models.RoleCreator), OnboardingComplete: true, DisplayName: "Ben"},
		adminID:         {UserID: adminID, Role: rolePtr(models.RoleAdmin), OnboardingComplete: true},
		newcomerID:      {UserID: newcomerID, Role: rolePtr(models.RoleCreator)},
	}}
}

type creatorFinderStub struct {
	creators map[string]*models.Creator
	err      error
}

func (s *creatorFinderStub) FindPublicCreator(ctx context.Context, id string) (*models.Creator, error) {
	if s.err != nil {
		return nil, s.err
	}
	creator, ok := s.creators[id]
	if !ok || !creator.IsActive || !creator.IsPublic {
		return nil, sql.ErrNoRows
	}
	return creator, nil
}

func newCreatorFinder() *creatorFinderStub {
	return &creatorFinderStub{creators: map[string]*models.Creator{
		creatorID:      {ID: creatorID, FullName: "Ana", PrimaryPlatform: "instagram", Niche: "fashion", FollowersCount: 12000, IsActive: true, IsPublic: true},
		otherCreatorID: {ID: otherCreatorID, FullName: "Ben", PrimaryPlatform: "youtube", Niche: "tech", IsActive: false, IsPublic: true},
	}}
}

// memoryCollabStore applies the same conditional predicates as the SQL store so
// lifecycle races can be exercised without a database.
type memoryCollabStore struct {
	mu       sync.Mutex
	requests map[string]*models.CollaborationRequest
	notes    []models.CampaignNote
	seq      int
	err      error
}

func newMemoryCollabStore() *memoryCollabStore {
	return &memoryCollabStore{requests: make(map[string]*models.CollaborationRequest)}
}

func (m *memoryCollabStore) Create(ctx context.Context, req *models.CollaborationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.requests {
		if existing.BusinessID == req.BusinessID && existing.CreatorID == req.CreatorID && existing.Status == models.RequestStatusPending {
			return &pq.Error{Code: "23505", Constraint: repository.PendingRequestIndex}
		}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	m.seq++
	now := time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	req.Status = models.RequestStatusPending
	req.CreatedAt, req.UpdatedAt = now, now
	copied := *req
	m.requests[req.ID] = &copied
	return nil
}

func (m *memoryCollabStore) GetByID(ctx context.Context, id string) (*models.CollaborationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	req, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *req
	return &copied, nil
}

func (m *memoryCollabStore) GetDetail(ctx context.Context, id string) (*models.RequestDetail, error) {
	req, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := memoryDetail(*req)
	return &detail, nil
}

func memoryDetail(req models.CollaborationRequest) models.RequestDetail {
	return models.RequestDetail{
		Request:  req,
		Business: models.BusinessSummary{ID: req.BusinessID, BrandName: "Brand " + req.BusinessID[:4]},
		Creator:  models.CreatorSummary{ID: req.CreatorID, FullName: "Creator " + req.CreatorID[:4]},
	}
}

func (m *memoryCollabStore) sorted(keep func(*models.CollaborationRequest) bool) []models.RequestDetail {
	var out []models.RequestDetail
	for _, req := range m.requests {
		if keep(req) {
			out = append(out, memoryDetail(*req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Request.CreatedAt.After(out[j].Request.CreatedAt) })
	return out
}

func (m *memoryCollabStore) List(ctx context.Context, filter models.RequestFilter) ([]models.RequestDetail, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	out := m.sorted(func(r *models.CollaborationRequest) bool {
		if filter.BusinessID != "" && r.BusinessID != filter.BusinessID {
			return false
		}
		if filter.CreatorID != "" && r.CreatorID != filter.CreatorID {
			return false
		}
		return filter.Status == nil || r.Status == *filter.Status
	})
	return out, len(out), nil
}

func (m *memoryCollabStore) ListCampaigns(ctx context.Context, filter models.CampaignFilter) ([]models.RequestDetail, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	out := m.sorted(func(r *models.CollaborationRequest) bool {
		if r.CampaignStatus == nil {
			return false
		}
		if filter.ParticipantID != "" && !r.IsParticipant(filter.ParticipantID) {
			return false
		}
		return filter.Status == nil || *r.CampaignStatus == *filter.Status
	})
	return out, len(out), nil
}

func (m *memoryCollabStore) Respond(ctx context.Context, params repository.RespondParams) (*models.CollaborationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	req, ok := m.requests[params.ID]
	if !ok || req.CreatorID != params.CreatorID || req.Status != models.RequestStatusPending {
		return nil, sql.ErrNoRows
	}
	req.Status = params.Status
	req.CreatorNotes = params.Notes
	at := params.RespondedAt
	req.RespondedAt = &at
	req.UpdatedAt = at
	if params.Status == models.RequestStatusAccepted {
		inProgress := models.CampaignStatusInProgress
		req.CampaignStatus = &inProgress
	}
	copied := *req
	return &copied, nil
}

func (m *memoryCollabStore) Cancel(ctx context.Context, id, businessID string, at time.Time) (*models.CollaborationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	req, ok := m.requests[id]
	if !ok || req.BusinessID != businessID || req.Status != models.RequestStatusPending {
		return nil, sql.ErrNoRows
	}
	req.Status = models.RequestStatusCancelled
	req.UpdatedAt = at
	copied := *req
	return &copied, nil
}

func (m *memoryCollabStore) UpdateCampaignStatus(ctx context.Context, params repository.CampaignStatusParams) (*models.CollaborationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	req, ok := m.requests[params.ID]
	if !ok || req.CampaignStatus == nil || *req.CampaignStatus != models.CampaignStatusInProgress || !req.IsParticipant(params.ActorID) {
		return nil, sql.ErrNoRows
	}
	status := params.Status
	req.CampaignStatus = &status
	req.UpdatedAt = params.UpdatedAt
	if status == models.CampaignStatusCompleted {
		at := params.UpdatedAt
		req.CompletedAt = &at
	}
	copied := *req
	return &copied, nil
}

// memoryNoteStore shares the request map with memoryCollabStore.
type memoryNoteStore struct {
	collab *memoryCollabStore
}

func (n memoryNoteStore) Create(ctx context.Context, note *models.CampaignNote) error {
	m := n.collab
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	req, ok := m.requests[note.CampaignID]
	if !ok || req.CampaignStatus == nil || !req.CampaignStatus.AcceptsNotes() || !req.IsParticipant(note.AuthorID) {
		return sql.ErrNoRows
	}
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	m.seq++
	note.CreatedAt = time.Date(2026, 2, 1, 0, 0, m.seq, 0, time.UTC)
	m.notes = append(m.notes, *note)
	return nil
}

func (n memoryNoteStore) ListByCampaign(ctx context.Context, campaignID string) ([]models.CampaignNote, error) {
	m := n.collab
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []models.CampaignNote
	for _, note := range m.notes {
		if note.CampaignID == campaignID {
			out = append(out, note)
		}
	}
	return out, nil
}

type auditSpy struct {
	mu   sync.Mutex
	logs []*models.AuditLog
	err  error
}

func (a *auditSpy) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return a.err
}

func (a *auditSpy) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.logs))
	for _, log := range a.logs {
		out = append(out, log.Action)
	}
	return out
}

// cacheRepoSpy records cache traffic in memory.
type cacheRepoSpy struct {
	mu          sync.Mutex
	entries     map[string]interface{}
	invalidated []string
	getErr      error
}

func newCacheRepoSpy() *cacheRepoSpy {
	return &cacheRepoSpy{entries: make(map[string]interface{})}
}

func (c *cacheRepoSpy) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	value, ok := c.entries[key]
	if !ok {
		return errCacheMissForTest
	}
	return copyCached(value, dest)
}

func (c *cacheRepoSpy) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *cacheRepoSpy) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, pattern)
	prefix := pattern[:len(pattern)-1]
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *cacheRepoSpy) wasInvalidated(pattern string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.invalidated {
		if p == pattern {
			return true
		}
	}
	return false
}

var (
	errStoreDown        = errors.New("connection refused")
	errCacheMissForTest = appErrors.ErrCacheMiss
)

func copyCached(value, dest interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
