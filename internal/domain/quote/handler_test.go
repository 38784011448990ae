package quote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propcare/internal/domain/cases"
	"propcare/internal/pkg/actor"
	"propcare/internal/pkg/response"
)

func newRouter(f *fixture, a actor.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Set(actor.KeyUserID, a.UserID)
		c.Set(actor.KeyRole, a.Role)
		c.Set(actor.KeyOrgID, a.OrgID)
		c.Set(actor.KeyContractorID, a.ContractorID)
		c.Next()
	})
	NewHandler(f.svc).RegisterRoutes(api)
	return r
}

func do(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestQuoteHandlersLandlordFlow(t *testing.T) {
	f := setup(t)
	c := f.seedCase(t, cases.StatusQuoted, nil)
	q1 := f.seedQuote(t, c.ID, "V1", StatusSent, false)
	q2 := f.seedQuote(t, c.ID, "V2", StatusSent, false)
	r := newRouter(f, landlord)

	w, resp := do(r, http.MethodGet, "/api/v1/cases/"+c.ID+"/quotes", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, resp.Data.([]any), 2)

	w, resp = do(r, http.MethodPost, "/api/v1/quotes/"+q2.ID+"/counter", `{"message": 12}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	w, _ = do(r, http.MethodPost, "/api/v1/quotes/"+q2.ID+"/counter", `{"proposedTotal": 300}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp = do(r, http.MethodPost, "/api/v1/quotes/"+q1.ID+"/accept", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, resp.Success)
	assert.Equal(t, string(StatusApproved), resp.Data.(map[string]any)["status"])

	w, resp = do(r, http.MethodPost, "/api/v1/quotes/"+q2.ID+"/accept", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)

	w, _ = do(r, http.MethodPost, "/api/v1/quotes/missing/decline", `{"reason":"no"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteHandlersRoleGates(t *testing.T) {
	f := setup(t)
	c := f.seedCase(t, cases.StatusNew, nil)
	q := f.seedQuote(t, c.ID, "V1", StatusSent, false)

	asContractor := newRouter(f, contractor)
	w, _ := do(asContractor, http.MethodPost, "/api/v1/quotes/"+q.ID+"/accept", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := do(asContractor, http.MethodPost, "/api/v1/cases/"+c.ID+"/quotes", `{"subtotal": 150, "tax": 15}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 165.0, resp.Data.(map[string]any)["total"])

	asOutsider := newRouter(f, outsider)
	w, resp = do(asOutsider, http.MethodPost, "/api/v1/quotes/"+q.ID+"/decline", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTHORIZATION", resp.Error.Code)
}
