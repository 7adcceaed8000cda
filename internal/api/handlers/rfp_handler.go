package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/services"
)

// RFPHandler handles /api/rfps.
type RFPHandler struct {
	errorResponder
	rfpService      services.IRFPService
	vendorService   services.IVendorService
	outreachService services.IOutreachService
}

func NewRFPHandler(rfpService services.IRFPService, vendorService services.IVendorService, outreachService services.IOutreachService, exposeErrors bool) *RFPHandler {
	return &RFPHandler{
		errorResponder:  errorResponder{exposeErrors},
		rfpService:      rfpService,
		vendorService:   vendorService,
		outreachService: outreachService,
	}
}

type createRFPRequest struct {
	Description string `json:"description"`
}

type sendRFPRequest struct {
	VendorIDs []string `json:"vendorIds"`
}

// CreateRFP handles POST /api/rfps/create
func (h *RFPHandler) CreateRFP(c *gin.Context) {
	var req createRFPRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rfp, structured, err := h.rfpService.CreateFromDescription(c.Request.Context(), req.Description)
	if err != nil {
		h.rfpError(c, err, "Server error while creating RFP")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "rfp": rfp, "structured": structured})
}

// ListRFPs handles GET /api/rfps
func (h *RFPHandler) ListRFPs(c *gin.Context) {
	rfps, err := h.rfpService.ListRFPs(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Server error while fetching RFPs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(rfps), "rfps": rfps})
}

// GetRFP handles GET /api/rfps/:id
func (h *RFPHandler) GetRFP(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.fail(c, http.StatusBadRequest, "Invalid RFP ID", nil)
		return
	}
	rfp, err := h.rfpService.GetView(c.Request.Context(), id)
	if err != nil {
		h.rfpError(c, err, "Server error while fetching RFP")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rfp": rfp})
}

// UpdateRFP handles PUT /api/rfps/:id. Only title, description, items,
// budget, deadline, terms and status are applied.
func (h *RFPHandler) UpdateRFP(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.fail(c, http.StatusBadRequest, "Invalid RFP ID", nil)
		return
	}
	var body map[string]json.RawMessage
	if err := bindJSON(c, &body); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	patch, err := decodeRFPPatch(body)
	if err != nil {
		h.rfpError(c, err, "Server error while updating RFP")
		return
	}

	rfp, err := h.rfpService.UpdateRFP(c.Request.Context(), id, patch)
	if err != nil {
		h.rfpError(c, err, "Server error while updating RFP")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rfp": rfp})
}

// SendRFP handles POST /api/rfps/:id/send
func (h *RFPHandler) SendRFP(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.fail(c, http.StatusBadRequest, "Invalid RFP ID", nil)
		return
	}
	var req sendRFPRequest
	if err := bindJSON(c, &req); err != nil || len(req.VendorIDs) == 0 {
		h.fail(c, http.StatusBadRequest, "Vendor IDs array is required", nil)
		return
	}
	vendorIDs, err := models.ParseIDs(req.VendorIDs)
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid vendor ID", err)
		return
	}

	ctx := c.Request.Context()
	rfp, err := h.rfpService.FindByID(ctx, id)
	if err != nil {
		h.rfpError(c, err, "Server error while sending RFP")
		return
	}

	vendors, err := h.vendorService.FindByIDs(ctx, vendorIDs)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Server error while sending RFP", err)
		return
	}
	if len(vendors) == 0 {
		h.fail(c, http.StatusNotFound, "No valid vendors found", nil)
		return
	}

	result := h.outreachService.SendRFP(ctx, rfp, vendors)

	updated, err := h.rfpService.MarkSent(ctx, id, vendorIDs)
	if err != nil {
		h.rfpError(c, err, "Server error while sending RFP")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sent":    result.Sent,
		"failed":  result.Failed,
		"message": result.Message,
		"rfp":     updated,
	})
}

func (h *RFPHandler) rfpError(c *gin.Context, err error, fallback string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		h.fail(c, http.StatusBadRequest, ve.Message, nil)
	case errors.Is(err, mongo.ErrNoDocuments):
		h.fail(c, http.StatusNotFound, "RFP not found", nil)
	default:
		h.fail(c, http.StatusInternalServerError, fallback, err)
	}
}

// deadlineLayouts are the accepted forms of an updated deadline.
var deadlineLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// decodeRFPPatch picks the whitelisted fields out of an update body. Unknown
// keys are ignored; a null value counts as absent.
func decodeRFPPatch(body map[string]json.RawMessage) (models.RFPPatch, error) {
	var patch models.RFPPatch
	present := func(key string) (json.RawMessage, bool) {
		raw, ok := body[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, false
		}
		return raw, true
	}
	decode := func(key string, dst any) error {
		raw, ok := present(key)
		if !ok {
			return nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return services.NewValidationError(fmt.Sprintf("Invalid %s", key))
		}
		return nil
	}

	if _, ok := present("title"); ok {
		patch.Title = new(string)
		if err := decode("title", patch.Title); err != nil {
			return patch, err
		}
	}
	if _, ok := present("description"); ok {
		patch.Description = new(string)
		if err := decode("description", patch.Description); err != nil {
			return patch, err
		}
	}
	if _, ok := present("items"); ok {
		patch.Items = &[]models.RFPItem{}
		if err := decode("items", patch.Items); err != nil {
			return patch, err
		}
	}
	if _, ok := present("budget"); ok {
		patch.Budget = new(float64)
		if err := decode("budget", patch.Budget); err != nil {
			return patch, err
		}
	}
	if _, ok := present("terms"); ok {
		patch.Terms = &models.RFPTerms{}
		if err := decode("terms", patch.Terms); err != nil {
			return patch, err
		}
	}
	if _, ok := present("status"); ok {
		patch.Status = new(models.RFPStatus)
		if err := decode("status", patch.Status); err != nil {
			return patch, err
		}
	}
	if _, ok := present("deadline"); ok {
		var s string
		if err := decode("deadline", &s); err != nil {
			return patch, err
		}
		deadline, err := parseDeadline(s)
		if err != nil {
			return patch, services.NewValidationError("Invalid deadline")
		}
		patch.Deadline = &deadline
	}
	return patch, nil
}

func parseDeadline(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range deadlineLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
