package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/api/handlers"
)

type testDeps struct {
	vendors    *MockVendorService
	rfps       *MockRFPService
	proposals  *MockProposalService
	outreach   *MockOutreachService
	ingestion  *MockIngestionService
	comparison *MockComparisonService
}

// newTestRouter wires every handler onto the production paths.
func newTestRouter(exposeErrors bool) (*gin.Engine, *testDeps) {
	gin.SetMode(gin.TestMode)
	d := &testDeps{
		vendors:    new(MockVendorService),
		rfps:       new(MockRFPService),
		proposals:  new(MockProposalService),
		outreach:   new(MockOutreachService),
		ingestion:  new(MockIngestionService),
		comparison: new(MockComparisonService),
	}

	vh := handlers.NewVendorHandler(d.vendors, exposeErrors)
	rh := handlers.NewRFPHandler(d.rfps, d.vendors, d.outreach, exposeErrors)
	ph := handlers.NewProposalHandler(d.proposals, d.ingestion, d.comparison, exposeErrors)

	r := gin.New()
	r.POST("/api/vendors", vh.CreateVendor)
	r.GET("/api/vendors", vh.ListVendors)
	r.GET("/api/vendors/:id", vh.GetVendor)
	r.PUT("/api/vendors/:id", vh.UpdateVendor)
	r.DELETE("/api/vendors/:id", vh.DeleteVendor)

	r.POST("/api/rfps/create", rh.CreateRFP)
	r.GET("/api/rfps", rh.ListRFPs)
	r.GET("/api/rfps/:id", rh.GetRFP)
	r.PUT("/api/rfps/:id", rh.UpdateRFP)
	r.POST("/api/rfps/:id/send", rh.SendRFP)

	r.GET("/api/proposals/rfp/:rfpId", ph.ListByRFP)
	r.POST("/api/proposals/check-emails", ph.CheckEmails)
	r.GET("/api/proposals/:id/compare", ph.CompareProposals)
	r.GET("/api/proposals/:id", ph.GetProposal)
	return r, d
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}
