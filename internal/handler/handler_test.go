package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/collab-league-api/internal/dto"
	"github.com/noah-isme/collab-league-api/internal/middleware"
	"github.com/noah-isme/collab-league-api/internal/models"
	"github.com/noah-isme/collab-league-api/internal/service"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
)

const (
	callerUUID  = "7d1c5f1e-2b1a-4a53-9a0e-8f6f7d0b1a01"
	requestUUID = "3f9a2c4b-8d1e-4f60-a7b2-5c6d7e8f9a10"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func testContext(method, target string, body interface{}, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != "" {
		c.Set(middleware.ContextUserIDKey, userID)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

type fakeRequestSrv struct {
	view      *models.RequestView
	page      *service.RequestPage
	hit       bool
	err       error
	lastID    string
	lastInput models.RespondRequestInput
	filter    models.RequestFilter
}

func (f *fakeRequestSrv) Create(ctx context.Context, callerID string, input models.CreateRequestInput) (*models.RequestView, error) {
	return f.view, f.err
}

func (f *fakeRequestSrv) Respond(ctx context.Context, callerID, requestID string, input models.RespondRequestInput) (*models.RequestView, error) {
	f.lastID, f.lastInput = requestID, input
	return f.view, f.err
}

func (f *fakeRequestSrv) Cancel(ctx context.Context, callerID, requestID string) (*models.RequestView, error) {
	f.lastID = requestID
	return f.view, f.err
}

func (f *fakeRequestSrv) Read(ctx context.Context, callerID, requestID string) (*models.RequestView, error) {
	f.lastID = requestID
	return f.view, f.err
}

func (f *fakeRequestSrv) ListIncoming(ctx context.Context, callerID string, filter models.RequestFilter) (*service.RequestPage, bool, error) {
	f.filter = filter
	return f.page, f.hit, f.err
}

func (f *fakeRequestSrv) ListSent(ctx context.Context, callerID string, filter models.RequestFilter) (*service.RequestPage, bool, error) {
	f.filter = filter
	return f.page, f.hit, f.err
}

func TestRequestHandlerCreate(t *testing.T) {
	h := NewRequestHandler(&fakeRequestSrv{view: &models.RequestView{ID: "req-1", Status: models.RequestStatusPending}})
	c, rec := testContext(http.MethodPost, "/requests", map[string]string{"creator_id": callerUUID}, callerUUID)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"status":"pending"`)
}

func TestRequestHandlerRequiresCaller(t *testing.T) {
	h := NewRequestHandler(&fakeRequestSrv{})
	c, rec := testContext(http.MethodPost, "/requests", map[string]string{}, "")

	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestHandlerMalformedBody(t *testing.T) {
	h := NewRequestHandler(&fakeRequestSrv{})
	c, rec := testContext(http.MethodPost, "/requests", nil, callerUUID)
	c.Request.Body = http.NoBody

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, rec).Error.Code)
}

func TestRequestHandlerRespondStaleState(t *testing.T) {
	srv := &fakeRequestSrv{err: appErrors.WithDetails(appErrors.ErrStaleState, map[string]interface{}{"current_status": "cancelled"})}
	h := NewRequestHandler(srv)
	c, rec := testContext(http.MethodPost, "/requests/"+requestUUID+"/respond", map[string]string{"status": "accepted"}, callerUUID)
	c.Params = gin.Params{{Key: "id", Value: requestUUID}}

	h.Respond(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, appErrors.ErrStaleState.Code, env.Error.Code)
	assert.Equal(t, "cancelled", env.Error.Details["current_status"])
	assert.Equal(t, requestUUID, srv.lastID)
	assert.Equal(t, models.RequestStatusAccepted, srv.lastInput.Status)
}

func TestRequestHandlerMalformedIDIsNotFound(t *testing.T) {
	cases := map[string]func(h *RequestHandler, c *gin.Context){
		"respond": func(h *RequestHandler, c *gin.Context) { h.Respond(c) },
		"cancel":  func(h *RequestHandler, c *gin.Context) { h.Cancel(c) },
		"get":     func(h *RequestHandler, c *gin.Context) { h.Get(c) },
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			srv := &fakeRequestSrv{}
			h := NewRequestHandler(srv)
			c, rec := testContext(http.MethodPost, "/requests/not-a-uuid/"+name, map[string]string{"status": "accepted"}, callerUUID)
			c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

			call(h, c)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, appErrors.ErrNotFound.Code, decode(t, rec).Error.Code)
			assert.Empty(t, srv.lastID)
		})
	}
}

func TestRequestHandlerIncomingListsWithCacheMeta(t *testing.T) {
	srv := &fakeRequestSrv{
		page: &service.RequestPage{Items: []models.RequestView{{ID: "req-1"}}, Pagination: models.Pagination{Page: 2, PageSize: 5, TotalCount: 6}},
		hit:  true,
	}
	h := NewRequestHandler(srv)
	c, rec := testContext(http.MethodGet, "/requests/incoming?status=pending&page=2&page_size=5", nil, callerUUID)

	h.Incoming(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	env := decode(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 6, env.Pagination.TotalCount)
	require.NotNil(t, srv.filter.Status)
	assert.Equal(t, models.RequestStatusPending, *srv.filter.Status)
	assert.Equal(t, 5, srv.filter.PageSize)
}

func TestRequestHandlerRejectsNonNumericPage(t *testing.T) {
	h := NewRequestHandler(&fakeRequestSrv{})
	c, rec := testContext(http.MethodGet, "/requests/sent?page=two", nil, callerUUID)

	h.Sent(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "must be a whole number", decode(t, rec).Error.Details["page"])
}

type fakeDiscoverySrv struct {
	byID, byUsername string
	filter           models.DiscoveryFilter
}

func (f *fakeDiscoverySrv) Search(ctx context.Context, filter models.DiscoveryFilter) (*dto.DiscoveryResult, bool, error) {
	f.filter = filter
	return &dto.DiscoveryResult{Creators: []models.Creator{}, Page: 1, Limit: 12}, false, nil
}

func (f *fakeDiscoverySrv) GetCreator(ctx context.Context, id string) (*models.Creator, error) {
	f.byID = id
	return &models.Creator{ID: id}, nil
}

func (f *fakeDiscoverySrv) GetCreatorByUsername(ctx context.Context, username string) (*models.Creator, error) {
	f.byUsername = username
	return nil, appErrors.Clone(appErrors.ErrNotFound, "creator not found")
}

func TestDiscoveryHandlerGetRoutesByReference(t *testing.T) {
	srv := &fakeDiscoverySrv{}
	h := NewDiscoveryHandler(srv)

	c, rec := testContext(http.MethodGet, "/creators/"+callerUUID, nil, "")
	c.Params = gin.Params{{Key: "ref", Value: callerUUID}}
	h.Get(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, callerUUID, srv.byID)

	c, rec = testContext(http.MethodGet, "/creators/ana", nil, "")
	c.Params = gin.Params{{Key: "ref", Value: "ana"}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ana", srv.byUsername)
}

func TestDiscoveryHandlerSearchParsesFilters(t *testing.T) {
	srv := &fakeDiscoverySrv{}
	h := NewDiscoveryHandler(srv)
	c, rec := testContext(http.MethodGet, "/creators?niche=tech&minFollowers=1000&sortBy=full_name&limit=24", nil, "")

	h.Search(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	require.NotNil(t, srv.filter.MinFollowers)
	assert.Equal(t, 1000, *srv.filter.MinFollowers)
	assert.Nil(t, srv.filter.MaxFollowers)
	assert.Equal(t, 24, srv.filter.Limit)
	assert.Equal(t, "full_name", srv.filter.SortBy)
}

type fakeExporter struct {
	req dto.CampaignExportRequest
	err error
}

func (f *fakeExporter) Campaigns(ctx context.Context, callerID string, req dto.CampaignExportRequest) (*dto.ExportFile, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ExportFile{Filename: "campaigns.csv", ContentType: "text/csv", Content: []byte("Campaign\n")}, nil
}

func TestAdminHandlerExportStreamsFile(t *testing.T) {
	exporter := &fakeExporter{}
	h := NewAdminHandler(nil, exporter)
	c, rec := testContext(http.MethodGet, "/admin/campaigns/export?format=csv&status=completed", nil, callerUUID)

	h.ExportCampaigns(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="campaigns.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Campaign\n", rec.Body.String())
	require.NotNil(t, exporter.req.Status)
	assert.Equal(t, models.CampaignStatusCompleted, *exporter.req.Status)
}

func TestAdminHandlerExportForbidden(t *testing.T) {
	h := NewAdminHandler(nil, &fakeExporter{err: appErrors.Clone(appErrors.ErrForbidden, "")})
	c, rec := testContext(http.MethodGet, "/admin/campaigns/export?format=pdf", nil, callerUUID)

	h.ExportCampaigns(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

type fakeDashboardSrv struct {
	resp *dto.DashboardResponse
	hit  bool
	err  error
}

func (f *fakeDashboardSrv) Get(ctx context.Context, callerID string) (*dto.DashboardResponse, bool, error) {
	return f.resp, f.hit, f.err
}

func TestDashboardHandlerGet(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardSrv{
		resp: &dto.DashboardResponse{Role: models.RoleCreator, Creator: &dto.CreatorDashboardStats{TotalOffers: 3}, Activity: []dto.ActivityItem{}},
		hit:  true,
	})
	c, rec := testContext(http.MethodGet, "/dashboard", nil, callerUUID)

	h.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, string(env.Data), `"role":"creator"`)
}

func TestDashboardHandlerOnboardingRequired(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardSrv{err: appErrors.Clone(appErrors.ErrOnboardingRequired, "")})
	c, rec := testContext(http.MethodGet, "/dashboard", nil, callerUUID)

	h.Get(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, appErrors.ErrOnboardingRequired.Code, decode(t, rec).Error.Code)
}

type fakeProfileSrv struct {
	created bool
}

func (f *fakeProfileSrv) Get(ctx context.Context, userID string) (*models.ProfileDetails, error) {
	return &models.ProfileDetails{Profile: models.Profile{ID: userID}}, nil
}

func (f *fakeProfileSrv) Completion(ctx context.Context, userID string) (*dto.ProfileCompletion, error) {
	return &dto.ProfileCompletion{NextStep: dto.NextStepBusinessProfile}, nil
}

func (f *fakeProfileSrv) CreateCreator(ctx context.Context, userID string, input models.CreatorProfileInput) (*models.Creator, error) {
	f.created = true
	return &models.Creator{ID: userID, FullName: input.FullName}, nil
}

func (f *fakeProfileSrv) UpdateCreator(ctx context.Context, userID string, input models.CreatorProfileInput) (*models.Creator, error) {
	return &models.Creator{ID: userID, FullName: input.FullName}, nil
}

func (f *fakeProfileSrv) CreateBusiness(ctx context.Context, userID string, input models.BusinessProfileInput) (*models.Business, error) {
	return &models.Business{ID: userID, BrandName: input.BrandName}, nil
}

func (f *fakeProfileSrv) UpdateBusiness(ctx context.Context, userID string, input models.BusinessProfileInput) (*models.Business, error) {
	return &models.Business{ID: userID, BrandName: input.BrandName}, nil
}

func TestProfileHandlerCreateAndUpdateStatus(t *testing.T) {
	srv := &fakeProfileSrv{}
	h := NewProfileHandler(srv)

	c, rec := testContext(http.MethodPost, "/profile/creator", map[string]string{"full_name": "Ana"}, callerUUID)
	h.CreateCreator(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, srv.created)

	c, rec = testContext(http.MethodPut, "/profile/business", map[string]string{"brand_name": "Acme"}, callerUUID)
	h.UpdateBusiness(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"brand_name":"Acme"`)
}

type fakeAuthSrv struct {
	authService
	meErr error
}

func (f *fakeAuthSrv) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &models.UserInfo{ID: userID, Email: "ana@example.com"}, nil
}

func TestAuthHandlerMe(t *testing.T) {
	h := NewAuthHandler(&fakeAuthSrv{})

	c, rec := testContext(http.MethodGet, "/auth/me", nil, callerUUID)
	h.Me(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), callerUUID)

	c, rec = testContext(http.MethodGet, "/auth/me", nil, "")
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{
		"postgres": PingFunc(func(ctx context.Context) error { return nil }),
		"redis":    PingFunc(func(ctx context.Context) error { return context.DeadlineExceeded }),
	})
	c, rec := testContext(http.MethodGet, "/ready", nil, "")

	h.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "up", body.Checks["postgres"])
	assert.Equal(t, "down", body.Checks["redis"])
}
