package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/db"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
)

// IVendorService defines the vendor directory operations.
type IVendorService interface {
	CreateVendor(ctx context.Context, input models.VendorInput) (*models.Vendor, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Vendor, error)
	FindByEmail(ctx context.Context, email string) (*models.Vendor, error)
	UpdateVendor(ctx context.Context, id primitive.ObjectID, patch models.VendorPatch) (*models.Vendor, error)
	DeleteVendor(ctx context.Context, id primitive.ObjectID) error
}

// vendorService implements IVendorService.
type vendorService struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewVendorService creates a new VendorService.
func NewVendorService(database *mongo.Database, logger *zap.Logger) IVendorService {
	return &vendorService{db: database, logger: logger}
}

func (s *vendorService) collection() *mongo.Collection {
	return s.db.Collection(db.VendorsCollection)
}

// CreateVendor validates and stores a new vendor. Emails are unique
// regardless of case.
func (s *vendorService) CreateVendor(ctx context.Context, input models.VendorInput) (*models.Vendor, error) {
	vendor := &models.Vendor{
		Name:      strings.TrimSpace(input.Name),
		Email:     models.NormalizeEmail(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Company:   strings.TrimSpace(input.Company),
		Address:   strings.TrimSpace(input.Address),
		CreatedAt: time.Now().UTC(),
	}
	if vendor.Name == "" || vendor.Email == "" || vendor.Company == "" {
		return nil, NewValidationError("Name, email, and company are required")
	}

	if _, err := s.FindByEmail(ctx, vendor.Email); err == nil {
		return nil, ErrVendorEmailExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	vendor, err := db.InsertOne(ctx, s.collection(), vendor)
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, ErrVendorEmailExists
		}
		return nil, err
	}

	s.logger.Info("vendor created", zap.String("vendor_id", vendor.ID.Hex()), zap.String("email", vendor.Email))
	return vendor, nil
}

// ListVendors returns all vendors, newest first.
func (s *vendorService) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer cursor.Close(ctx)

	vendors := []models.Vendor{}
	if err := cursor.All(ctx, &vendors); err != nil {
		return nil, fmt.Errorf("failed to decode vendors: %w", err)
	}
	return vendors, nil
}

// FindByID returns mongo.ErrNoDocuments when the vendor does not exist.
func (s *vendorService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&vendor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to find vendor %s: %w", id.Hex(), err)
	}
	return &vendor, nil
}

// FindByIDs returns the vendors that exist among ids, in the order given.
func (s *vendorService) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Vendor, error) {
	if len(ids) == 0 {
		return []models.Vendor{}, nil
	}
	cursor, err := s.collection().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors by id: %w", err)
	}
	defer cursor.Close(ctx)

	var found []models.Vendor
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode vendors: %w", err)
	}

	byID := make(map[primitive.ObjectID]models.Vendor, len(found))
	for _, v := range found {
		byID[v.ID] = v
	}
	ordered := make([]models.Vendor, 0, len(found))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok && !seen[id] {
			ordered = append(ordered, v)
			seen[id] = true
		}
	}
	return ordered, nil
}

// FindByEmail looks a vendor up by address, ignoring case.
func (s *vendorService) FindByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, mongo.ErrNoDocuments
	}
	var vendor models.Vendor
	if err := s.collection().FindOne(ctx, bson.M{"email": email}).Decode(&vendor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to find vendor by email: %w", err)
	}
	return &vendor, nil
}

// UpdateVendor applies a partial update. Empty strings leave name, email,
// phone and company untouched; a present address always overwrites.
func (s *vendorService) UpdateVendor(ctx context.Context, id primitive.ObjectID, patch models.VendorPatch) (*models.Vendor, error) {
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if name := strings.TrimSpace(patch.Name); name != "" {
		set["name"] = name
	}
	if email := models.NormalizeEmail(patch.Email); email != "" && email != existing.Email {
		other, err := s.FindByEmail(ctx, email)
		switch {
		case err == nil && other.ID != id:
			return nil, ErrVendorEmailExists
		case err != nil && !errors.Is(err, mongo.ErrNoDocuments):
			return nil, err
		}
		set["email"] = email
	}
	if phone := strings.TrimSpace(patch.Phone); phone != "" {
		set["phone"] = phone
	}
	if company := strings.TrimSpace(patch.Company); company != "" {
		set["company"] = company
	}
	if patch.Address != nil {
		set["address"] = strings.TrimSpace(*patch.Address)
	}
	if len(set) == 0 {
		return existing, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Vendor
	err = s.collection().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		if db.IsMongoDuplicateKeyError(err) {
			return nil, ErrVendorEmailExists
		}
		return nil, fmt.Errorf("failed to update vendor %s: %w", id.Hex(), err)
	}
	return &updated, nil
}

// DeleteVendor removes a vendor. Proposals that reference it are kept.
func (s *vendorService) DeleteVendor(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete vendor %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	s.logger.Info("vendor deleted", zap.String("vendor_id", id.Hex()))
	return nil
}

// vendorSummaries loads the populated form of the given vendor references.
func vendorSummaries(ctx context.Context, database *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]models.VendorSummary, error) {
	out := make(map[primitive.ObjectID]models.VendorSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "company": 1})
	cursor, err := database.Collection(db.VendorsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor summaries: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []models.VendorSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode vendor summaries: %w", err)
	}
	for _, v := range summaries {
		out[v.ID] = v
	}
	return out, nil
}
