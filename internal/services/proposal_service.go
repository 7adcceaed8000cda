package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/db"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
)

// ErrDuplicateProposal is returned when a vendor already has a proposal for an RFP.
var ErrDuplicateProposal = errors.New("proposal already exists for this vendor and RFP")

// IProposalService defines proposal storage operations.
type IProposalService interface {
	// ListByRFP returns an RFP's proposals, most recently received first.
	ListByRFP(ctx context.Context, rfpID primitive.ObjectID) ([]models.ProposalView, error)
	// ListForComparison returns an RFP's proposals in the stable ranking
	// order: received first, then by ID.
	ListForComparison(ctx context.Context, rfpID primitive.ObjectID) ([]models.ProposalView, error)
	GetView(ctx context.Context, id primitive.ObjectID) (*models.ProposalView, error)
	Exists(ctx context.Context, rfpID, vendorID primitive.ObjectID) (bool, error)
	Create(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error)
	SaveScores(ctx context.Context, ids []primitive.ObjectID, scores []float64, summaries []string) error
}

type proposalService struct {
	db     *mongo.Database
	logger *zap.Logger
}

func NewProposalService(database *mongo.Database, logger *zap.Logger) IProposalService {
	return &proposalService{db: database, logger: logger}
}

func (s *proposalService) collection() *mongo.Collection {
	return s.db.Collection(db.ProposalsCollection)
}

func (s *proposalService) ListByRFP(ctx context.Context, rfpID primitive.ObjectID) ([]models.ProposalView, error) {
	return s.list(ctx, rfpID, bson.D{{Key: "received_at", Value: -1}, {Key: "_id", Value: -1}})
}

func (s *proposalService) ListForComparison(ctx context.Context, rfpID primitive.ObjectID) ([]models.ProposalView, error) {
	return s.list(ctx, rfpID, bson.D{{Key: "received_at", Value: 1}, {Key: "_id", Value: 1}})
}

func (s *proposalService) list(ctx context.Context, rfpID primitive.ObjectID, sort bson.D) ([]models.ProposalView, error) {
	cursor, err := s.collection().Find(ctx, bson.M{"rfp_id": rfpID}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals for rfp %s: %w", rfpID.Hex(), err)
	}
	defer cursor.Close(ctx)

	var proposals []models.Proposal
	if err := cursor.All(ctx, &proposals); err != nil {
		return nil, fmt.Errorf("failed to decode proposals: %w", err)
	}

	vendorIDs := make([]primitive.ObjectID, 0, len(proposals))
	for _, p := range proposals {
		vendorIDs = append(vendorIDs, p.VendorID)
	}
	summaries, err := vendorSummaries(ctx, s.db, vendorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.ProposalView, 0, len(proposals))
	for _, p := range proposals {
		view := models.ProposalView{Proposal: p}
		if v, ok := summaries[p.VendorID]; ok {
			view.Vendor = &v
		}
		views = append(views, view)
	}
	return views, nil
}

// GetView returns a proposal with its vendor and RFP populated.
func (s *proposalService) GetView(ctx context.Context, id primitive.ObjectID) (*models.ProposalView, error) {
	var p models.Proposal
	if err := s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to find proposal %s: %w", id.Hex(), err)
	}

	view := &models.ProposalView{Proposal: p}
	summaries, err := vendorSummaries(ctx, s.db, []primitive.ObjectID{p.VendorID})
	if err != nil {
		return nil, err
	}
	if v, ok := summaries[p.VendorID]; ok {
		view.Vendor = &v
	}

	var rfp models.RFPSummary
	opts := options.FindOne().SetProjection(bson.M{"title": 1, "budget": 1, "deadline": 1})
	err = s.db.Collection(db.RFPsCollection).FindOne(ctx, bson.M{"_id": p.RFPID}, opts).Decode(&rfp)
	switch {
	case err == nil:
		view.RFP = &rfp
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, fmt.Errorf("failed to load rfp for proposal %s: %w", id.Hex(), err)
	}
	return view, nil
}

func (s *proposalService) Exists(ctx context.Context, rfpID, vendorID primitive.ObjectID) (bool, error) {
	n, err := s.collection().CountDocuments(ctx, bson.M{"rfp_id": rfpID, "vendor_id": vendorID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check existing proposal: %w", err)
	}
	return n > 0, nil
}

// Create inserts a proposal. The unique (rfp, vendor) index turns a lost
// race into ErrDuplicateProposal.
func (s *proposalService) Create(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	if proposal.ParsedData == nil {
		proposal.ParsedData = models.Attributes{}
	}
	if proposal.Pricing.ItemPrices == nil {
		proposal.Pricing.ItemPrices = []models.ItemPrice{}
	}
	created, err := db.InsertOne(ctx, s.collection(), proposal)
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, ErrDuplicateProposal
		}
		return nil, err
	}
	return created, nil
}

// SaveScores writes score i and summary i onto proposal i.
func (s *proposalService) SaveScores(ctx context.Context, ids []primitive.ObjectID, scores []float64, summaries []string) error {
	if len(ids) != len(scores) || len(ids) != len(summaries) {
		return fmt.Errorf("save scores: %d proposals, %d scores, %d summaries", len(ids), len(scores), len(summaries))
	}
	if len(ids) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(ids))
	for i, id := range ids {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"ai_score": scores[i], "ai_summary": summaries[i]}}))
	}
	if _, err := s.collection().BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to save proposal scores: %w", err)
	}
	return nil
}
