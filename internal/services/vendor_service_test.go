package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/db"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/utils"
)

func setupVendorService(t *testing.T) (*mongo.Database, IVendorService) {
	database := utils.SetupTestDB(t, "rfp_test_vendors", db.VendorsCollection)
	require.NoError(t, db.EnsureIndexes(context.Background(), database))
	return database, NewVendorService(database, zap.NewNop())
}

func TestVendorService_CreateAndFind(t *testing.T) {
	_, svc := setupVendorService(t)
	ctx := context.Background()

	v, err := svc.CreateVendor(ctx, models.VendorInput{
		Name:    " Jane Doe ",
		Email:   " Jane@Acme.IO ",
		Company: "Acme",
		Phone:   "555-0100",
	})
	require.NoError(t, err)
	assert.False(t, v.ID.IsZero())
	assert.Equal(t, "Jane Doe", v.Name)
	assert.Equal(t, "jane@acme.io", v.Email)
	assert.False(t, v.CreatedAt.IsZero())

	found, err := svc.FindByEmail(ctx, "JANE@acme.io")
	require.NoError(t, err)
	assert.Equal(t, v.ID, found.ID)

	byID, err := svc.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", byID.Company)

	_, err = svc.FindByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestVendorService_CreateValidation(t *testing.T) {
	_, svc := setupVendorService(t)
	ctx := context.Background()

	_, err := svc.CreateVendor(ctx, models.VendorInput{Name: "No Email", Company: "X"})
	assert.True(t, IsValidationError(err))
	assert.EqualError(t, err, "Name, email, and company are required")

	_, err = svc.CreateVendor(ctx, models.VendorInput{Name: "A", Email: "dup@x.io", Company: "X"})
	require.NoError(t, err)
	_, err = svc.CreateVendor(ctx, models.VendorInput{Name: "B", Email: "DUP@x.io", Company: "Y"})
	assert.ErrorIs(t, err, ErrVendorEmailExists)
}

func TestVendorService_ListUpdateDelete(t *testing.T) {
	_, svc := setupVendorService(t)
	ctx := context.Background()

	first, err := svc.CreateVendor(ctx, models.VendorInput{Name: "First", Email: "first@x.io", Company: "X", Address: "1 Main St"})
	require.NoError(t, err)
	second, err := svc.CreateVendor(ctx, models.VendorInput{Name: "Second", Email: "second@x.io", Company: "Y"})
	require.NoError(t, err)

	list, err := svc.ListVendors(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	empty := ""
	updated, err := svc.UpdateVendor(ctx, first.ID, models.VendorPatch{Name: "Renamed", Phone: "", Address: &empty})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "first@x.io", updated.Email)
	assert.Equal(t, "", updated.Address)

	_, err = svc.UpdateVendor(ctx, first.ID, models.VendorPatch{Email: "SECOND@x.io"})
	assert.ErrorIs(t, err, ErrVendorEmailExists)

	updated, err = svc.UpdateVendor(ctx, first.ID, models.VendorPatch{Email: "new@x.io"})
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", updated.Email)

	_, err = svc.UpdateVendor(ctx, primitive.NewObjectID(), models.VendorPatch{Name: "x"})
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	byIDs, err := svc.FindByIDs(ctx, []primitive.ObjectID{second.ID, primitive.NewObjectID(), first.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, second.ID, byIDs[0].ID)
	assert.Equal(t, first.ID, byIDs[1].ID)

	require.NoError(t, svc.DeleteVendor(ctx, first.ID))
	assert.ErrorIs(t, svc.DeleteVendor(ctx, first.ID), mongo.ErrNoDocuments)
}
