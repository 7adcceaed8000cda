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

// RFPStructurer turns a free-text request into a structured draft.
type RFPStructurer interface {
	Structure(ctx context.Context, description string) *models.StructuredRFP
}

// IRFPService defines RFP storage operations.
type IRFPService interface {
	CreateFromDescription(ctx context.Context, description string) (*models.RFP, *models.StructuredRFP, error)
	ListRFPs(ctx context.Context) ([]models.RFPView, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.RFP, error)
	GetView(ctx context.Context, id primitive.ObjectID) (*models.RFPView, error)
	UpdateRFP(ctx context.Context, id primitive.ObjectID, patch models.RFPPatch) (*models.RFP, error)
	MarkSent(ctx context.Context, id primitive.ObjectID, vendorIDs []primitive.ObjectID) (*models.RFP, error)
}

type rfpService struct {
	db         *mongo.Database
	structurer RFPStructurer
	logger     *zap.Logger
}

func NewRFPService(database *mongo.Database, structurer RFPStructurer, logger *zap.Logger) IRFPService {
	return &rfpService{db: database, structurer: structurer, logger: logger}
}

func (s *rfpService) collection() *mongo.Collection {
	return s.db.Collection(db.RFPsCollection)
}

// CreateFromDescription structures description and stores the result as a draft.
func (s *rfpService) CreateFromDescription(ctx context.Context, description string) (*models.RFP, *models.StructuredRFP, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, nil, NewValidationError("Description is required")
	}

	structured := s.structurer.Structure(ctx, description)
	items := structured.Items
	if items == nil {
		items = []models.RFPItem{}
	}

	rfp := &models.RFP{
		Title:       structured.Title,
		Description: description,
		Items:       items,
		Budget:      structured.Budget,
		Deadline:    structured.Deadline.UTC(),
		Terms:       structured.Terms,
		Vendors:     []primitive.ObjectID{},
		Status:      models.RFPStatusDraft,
		CreatedAt:   time.Now().UTC(),
	}

	rfp, err := db.InsertOne(ctx, s.collection(), rfp)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("rfp created",
		zap.String("rfp_id", rfp.ID.Hex()),
		zap.String("title", rfp.Title),
		zap.Bool("fallback", structured.Fallback),
	)
	return rfp, structured, nil
}

// ListRFPs returns every RFP, newest first, with vendors populated.
func (s *rfpService) ListRFPs(ctx context.Context) ([]models.RFPView, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query rfps: %w", err)
	}
	defer cursor.Close(ctx)

	var rfps []models.RFP
	if err := cursor.All(ctx, &rfps); err != nil {
		return nil, fmt.Errorf("failed to decode rfps: %w", err)
	}

	var vendorIDs []primitive.ObjectID
	for _, r := range rfps {
		vendorIDs = append(vendorIDs, r.Vendors...)
	}
	summaries, err := vendorSummaries(ctx, s.db, vendorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.RFPView, 0, len(rfps))
	for _, r := range rfps {
		views = append(views, populateRFP(r, summaries))
	}
	return views, nil
}

func (s *rfpService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.RFP, error) {
	var rfp models.RFP
	if err := s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&rfp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to find rfp %s: %w", id.Hex(), err)
	}
	return &rfp, nil
}

// GetView returns the RFP with its vendors populated.
func (s *rfpService) GetView(ctx context.Context, id primitive.ObjectID) (*models.RFPView, error) {
	rfp, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summaries, err := vendorSummaries(ctx, s.db, rfp.Vendors)
	if err != nil {
		return nil, err
	}
	view := populateRFP(*rfp, summaries)
	return &view, nil
}

// UpdateRFP sets the present fields of patch and leaves the rest untouched.
// The "sent" status is reserved for the send operation.
func (s *rfpService) UpdateRFP(ctx context.Context, id primitive.ObjectID, patch models.RFPPatch) (*models.RFP, error) {
	set := bson.M{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, NewValidationError("Title cannot be empty")
		}
		set["title"] = title
	}
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		if desc == "" {
			return nil, NewValidationError("Description cannot be empty")
		}
		set["description"] = desc
	}
	if patch.Items != nil {
		items := make([]models.RFPItem, 0, len(*patch.Items))
		for _, it := range *patch.Items {
			it.Name = strings.TrimSpace(it.Name)
			if it.Name == "" {
				return nil, NewValidationError("Every item needs a name")
			}
			if it.Quantity <= 0 {
				it.Quantity = 1
			}
			items = append(items, it)
		}
		set["items"] = items
	}
	if patch.Budget != nil {
		if *patch.Budget < 0 {
			return nil, NewValidationError("Budget cannot be negative")
		}
		set["budget"] = *patch.Budget
	}
	if patch.Deadline != nil {
		set["deadline"] = patch.Deadline.UTC()
	}
	if patch.Terms != nil {
		set["terms"] = *patch.Terms
	}
	if patch.Status != nil {
		status := *patch.Status
		if !status.Valid() {
			return nil, NewValidationError(fmt.Sprintf("Invalid status %q", status))
		}
		if status == models.RFPStatusSent {
			return nil, NewValidationError("Status 'sent' is set by sending the RFP to vendors")
		}
		set["status"] = status
	}

	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}
	return s.applySet(ctx, id, set)
}

// MarkSent records the vendors an RFP was sent to and moves it to "sent".
func (s *rfpService) MarkSent(ctx context.Context, id primitive.ObjectID, vendorIDs []primitive.ObjectID) (*models.RFP, error) {
	if vendorIDs == nil {
		vendorIDs = []primitive.ObjectID{}
	}
	return s.applySet(ctx, id, bson.M{"vendors": vendorIDs, "status": models.RFPStatusSent})
}

func (s *rfpService) applySet(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.RFP, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.RFP
	err := s.collection().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to update rfp %s: %w", id.Hex(), err)
	}
	return &updated, nil
}

func populateRFP(r models.RFP, summaries map[primitive.ObjectID]models.VendorSummary) models.RFPView {
	view := models.RFPView{RFP: r, Vendors: []models.VendorSummary{}}
	for _, vid := range r.Vendors {
		if v, ok := summaries[vid]; ok {
			view.Vendors = append(view.Vendors, v)
		}
	}
	return view
}
