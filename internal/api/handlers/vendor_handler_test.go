package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/services"
)

func TestVendorHandler_CreateVendor_Success(t *testing.T) {
	r, d := newTestRouter(true)
	input := models.VendorInput{Name: "Jane", Email: "jane@acme.io", Company: "Acme"}
	vendor := &models.Vendor{Base: models.NewBase(), Name: "Jane", Email: "jane@acme.io", Company: "Acme"}
	d.vendors.On("CreateVendor", mock.Anything, input).Return(vendor, nil)

	w, resp := doJSON(t, r, http.MethodPost, "/api/vendors", input)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, resp["success"])
	got := resp["vendor"].(map[string]interface{})
	assert.Equal(t, vendor.ID.Hex(), got["_id"])
	assert.Equal(t, "jane@acme.io", got["email"])
	d.vendors.AssertExpectations(t)
}

func TestVendorHandler_CreateVendor_Validation(t *testing.T) {
	r, d := newTestRouter(true)
	d.vendors.On("CreateVendor", mock.Anything, models.VendorInput{Name: "Jane"}).
		Return(nil, services.NewValidationError("Name, email, and company are required"))

	w, resp := doJSON(t, r, http.MethodPost, "/api/vendors", map[string]string{"name": "Jane"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Name, email, and company are required", resp["message"])
	assert.NotContains(t, resp, "error")
}

func TestVendorHandler_CreateVendor_DuplicateEmail(t *testing.T) {
	r, d := newTestRouter(true)
	d.vendors.On("CreateVendor", mock.Anything, mock.Anything).Return(nil, services.ErrVendorEmailExists)

	w, resp := doJSON(t, r, http.MethodPost, "/api/vendors", map[string]string{"name": "a", "email": "a@b.c", "company": "c"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Vendor with this email already exists", resp["message"])
}

func TestVendorHandler_CreateVendor_MalformedBody(t *testing.T) {
	r, d := newTestRouter(true)

	w, resp := doJSON(t, r, http.MethodPost, "/api/vendors", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", resp["message"])
	d.vendors.AssertNotCalled(t, "CreateVendor", mock.Anything, mock.Anything)
}

func TestVendorHandler_ServerErrorDetail(t *testing.T) {
	dbErr := errors.New("connection reset")

	r, d := newTestRouter(true)
	d.vendors.On("ListVendors", mock.Anything).Return(nil, dbErr)
	w, resp := doJSON(t, r, http.MethodGet, "/api/vendors", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server error while fetching vendors", resp["message"])
	assert.Equal(t, "connection reset", resp["error"])

	r, d = newTestRouter(false)
	d.vendors.On("ListVendors", mock.Anything).Return(nil, dbErr)
	w, resp = doJSON(t, r, http.MethodGet, "/api/vendors", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, resp, "error")
}

func TestVendorHandler_ListVendors(t *testing.T) {
	r, d := newTestRouter(true)
	d.vendors.On("ListVendors", mock.Anything).Return([]models.Vendor{
		{Base: models.NewBase(), Name: "A"},
		{Base: models.NewBase(), Name: "B"},
	}, nil)

	w, resp := doJSON(t, r, http.MethodGet, "/api/vendors", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["count"])
	assert.Len(t, resp["vendors"], 2)
}

func TestVendorHandler_GetVendor(t *testing.T) {
	r, d := newTestRouter(true)

	w, resp := doJSON(t, r, http.MethodGet, "/api/vendors/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid vendor ID", resp["message"])

	missing := primitive.NewObjectID()
	d.vendors.On("FindByID", mock.Anything, missing).Return(nil, mongo.ErrNoDocuments)
	w, resp = doJSON(t, r, http.MethodGet, "/api/vendors/"+missing.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Vendor not found", resp["message"])

	vendor := &models.Vendor{Base: models.NewBase(), Name: "Jane"}
	d.vendors.On("FindByID", mock.Anything, vendor.ID).Return(vendor, nil)
	w, resp = doJSON(t, r, http.MethodGet, "/api/vendors/"+vendor.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jane", resp["vendor"].(map[string]interface{})["name"])
}

func TestVendorHandler_UpdateVendor(t *testing.T) {
	r, d := newTestRouter(true)
	vendor := &models.Vendor{Base: models.NewBase(), Name: "Renamed"}
	d.vendors.On("UpdateVendor", mock.Anything, vendor.ID, mock.MatchedBy(func(p models.VendorPatch) bool {
		return p.Name == "Renamed" && p.Address != nil && *p.Address == "" && p.Email == ""
	})).Return(vendor, nil)

	w, resp := doJSON(t, r, http.MethodPut, "/api/vendors/"+vendor.ID.Hex(), map[string]string{"name": "Renamed", "address": ""})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", resp["vendor"].(map[string]interface{})["name"])
	d.vendors.AssertExpectations(t)
}

func TestVendorHandler_DeleteVendor(t *testing.T) {
	r, d := newTestRouter(true)
	id := primitive.NewObjectID()
	d.vendors.On("DeleteVendor", mock.Anything, id).Return(nil)

	w, resp := doJSON(t, r, http.MethodDelete, "/api/vendors/"+id.Hex(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Vendor deleted successfully", resp["message"])

	other := primitive.NewObjectID()
	d.vendors.On("DeleteVendor", mock.Anything, other).Return(mongo.ErrNoDocuments)
	w, _ = doJSON(t, r, http.MethodDelete, "/api/vendors/"+other.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
