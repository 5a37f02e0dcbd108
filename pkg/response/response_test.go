package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestErrorHidesDriverDetails(t *testing.T) {
	c, rec := newContext()
	storeErr := appErrors.Wrap(errors.New("pq: relation does not exist"), appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)

	Error(c, storeErr)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
	assert.Len(t, c.Errors, 1)

	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, body.Error.Code)
}

func TestErrorCarriesDetails(t *testing.T) {
	c, rec := newContext()

	Error(c, appErrors.WithDetails(appErrors.ErrStaleState, map[string]interface{}{"current_status": "accepted"}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"current_status":"accepted"`)
	assert.Empty(t, c.Errors)
}

func TestAttachment(t *testing.T) {
	c, rec := newContext()

	Attachment(c, "campaigns.csv", "text/csv", []byte("a,b\n"))

	assert.Equal(t, `attachment; filename="campaigns.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}
