package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/services"
)

// ProposalHandler handles /api/proposals.
type ProposalHandler struct {
	errorResponder
	proposalService   services.IProposalService
	ingestionService  services.IIngestionService
	comparisonService services.IComparisonService
}

func NewProposalHandler(proposalService services.IProposalService, ingestionService services.IIngestionService, comparisonService services.IComparisonService, exposeErrors bool) *ProposalHandler {
	return &ProposalHandler{
		errorResponder:    errorResponder{exposeErrors},
		proposalService:   proposalService,
		ingestionService:  ingestionService,
		comparisonService: comparisonService,
	}
}

// ListByRFP handles GET /api/proposals/rfp/:rfpId
func (h *ProposalHandler) ListByRFP(c *gin.Context) {
	rfpID, ok := parseIDParam(c, "rfpId")
	if !ok {
		h.fail(c, http.StatusBadRequest, "Invalid RFP ID", nil)
		return
	}
	proposals, err := h.proposalService.ListByRFP(c.Request.Context(), rfpID)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Server error while fetching proposals", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(proposals), "proposals": proposals})
}

// GetProposal handles GET /api/proposals/:id
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.fail(c, http.StatusBadRequest, "Invalid proposal ID", nil)
		return
	}
	proposal, err := h.proposalService.GetView(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.fail(c, http.StatusNotFound, "Proposal not found", nil)
			return
		}
		h.fail(c, http.StatusInternalServerError, "Server error while fetching proposal", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "proposal": proposal})
}

// checkEmailsResponse flattens the ingestion report into the success envelope.
type checkEmailsResponse struct {
	Success bool `json:"success"`
	*services.IngestionReport
}

// CheckEmails handles POST /api/proposals/check-emails
func (h *ProposalHandler) CheckEmails(c *gin.Context) {
	report, err := h.ingestionService.CheckInbox(c.Request.Context())
	switch {
	case errors.Is(err, services.ErrPollInProgress):
		h.fail(c, http.StatusConflict, "An email check is already in progress", nil)
		return
	case errors.Is(err, services.ErrInboxNotConfigured):
		h.fail(c, http.StatusServiceUnavailable, "Inbound email is not configured", nil)
		return
	case err != nil:
		h.fail(c, http.StatusInternalServerError, "Server error while checking emails", err)
		return
	}
	c.JSON(http.StatusOK, checkEmailsResponse{Success: true, IngestionReport: report})
}

// CompareProposals handles GET /api/proposals/:id/compare, where :id is the RFP.
func (h *ProposalHandler) CompareProposals(c *gin.Context) {
	rfpID, ok := parseIDParam(c, "id")
	if !ok {
		h.fail(c, http.StatusBadRequest, "Invalid RFP ID", nil)
		return
	}
	result, err := h.comparisonService.Compare(c.Request.Context(), rfpID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.fail(c, http.StatusNotFound, "RFP not found", nil)
		return
	case errors.Is(err, services.ErrNoProposals):
		h.fail(c, http.StatusNotFound, "No proposals found for this RFP", nil)
		return
	case err != nil:
		h.fail(c, http.StatusInternalServerError, "Server error while comparing proposals", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "proposals": result.Proposals, "comparison": result.Comparison})
}
