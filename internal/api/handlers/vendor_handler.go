package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/services"
)

// VendorHandler handles /api/vendors.
type VendorHandler struct {
	errorResponder
	vendorService services.IVendorService
}

func NewVendorHandler(vendorService services.IVendorService, exposeErrors bool) *VendorHandler {
	return &VendorHandler{errorResponder: errorResponder{exposeErrors}, vendorService: vendorService}
}

// CreateVendor handles POST /api/vendors
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var input models.VendorInput
	if err := bindJSON(c, &input); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	vendor, err := h.vendorService.CreateVendor(c.Request.Context(), input)
	if err != nil {
		h.vendorError(c, err, "Server error while creating vendor")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "vendor": vendor})
}

// ListVendors handles GET /api/vendors
func (h *VendorHandler) ListVendors(c *gin.Context) {
	vendors, err := h.vendorService.ListVendors(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Server error while fetching vendors", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(vendors), "vendors": vendors})
}

// GetVendor handles GET /api/vendors/:id
func (h *VendorHandler) GetVendor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.fail(c, http.StatusBadRequest, "Invalid vendor ID", nil)
		return
	}
	vendor, err := h.vendorService.FindByID(c.Request.Context(), id)
	if err != nil {
		h.vendorError(c, err, "Server error while fetching vendor")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "vendor": vendor})
}

// UpdateVendor handles PUT /api/vendors/:id
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.fail(c, http.StatusBadRequest, "Invalid vendor ID", nil)
		return
	}
	var patch models.VendorPatch
	if err := bindJSON(c, &patch); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), id, patch)
	if err != nil {
		h.vendorError(c, err, "Server error while updating vendor")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "vendor": vendor})
}

// DeleteVendor handles DELETE /api/vendors/:id
func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.fail(c, http.StatusBadRequest, "Invalid vendor ID", nil)
		return
	}
	if err := h.vendorService.DeleteVendor(c.Request.Context(), id); err != nil {
		h.vendorError(c, err, "Server error while deleting vendor")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Vendor deleted successfully"})
}

func (h *VendorHandler) vendorError(c *gin.Context, err error, fallback string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		h.fail(c, http.StatusBadRequest, ve.Message, nil)
	case errors.Is(err, services.ErrVendorEmailExists):
		h.fail(c, http.StatusBadRequest, "Vendor with this email already exists", nil)
	case errors.Is(err, mongo.ErrNoDocuments):
		h.fail(c, http.StatusNotFound, "Vendor not found", nil)
	default:
		h.fail(c, http.StatusInternalServerError, fallback, err)
	}
}
