package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/ai"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
)

// ProposalRanker scores proposals against their RFP.
type ProposalRanker interface {
	Rank(ctx context.Context, rfp *models.RFP, candidates []ai.Candidate) (*models.Comparison, error)
}

// ComparisonResult is the ranked proposal set of an RFP.
type ComparisonResult struct {
	Proposals  []models.ProposalView `json:"proposals"`
	Comparison models.Comparison     `json:"comparison"`
}

// IComparisonService ranks an RFP's proposals.
type IComparisonService interface {
	Compare(ctx context.Context, rfpID primitive.ObjectID) (*ComparisonResult, error)
}

type comparisonService struct {
	rfps      IRFPService
	proposals IProposalService
	ranker    ProposalRanker
	logger    *zap.Logger
}

func NewComparisonService(rfps IRFPService, proposals IProposalService, ranker ProposalRanker, logger *zap.Logger) IComparisonService {
	return &comparisonService{rfps: rfps, proposals: proposals, ranker: ranker, logger: logger}
}

// Compare ranks every proposal of the RFP and stores each score and summary
// on its proposal. Returns mongo.ErrNoDocuments for an unknown RFP and
// ErrNoProposals when there is nothing to rank.
func (s *comparisonService) Compare(ctx context.Context, rfpID primitive.ObjectID) (*ComparisonResult, error) {
	rfp, err := s.rfps.FindByID(ctx, rfpID)
	if err != nil {
		return nil, err
	}

	views, err := s.proposals.ListForComparison(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNoProposals
	}

	candidates := make([]ai.Candidate, len(views))
	ids := make([]primitive.ObjectID, len(views))
	for i := range views {
		name := ""
		if views[i].Vendor != nil {
			name = views[i].Vendor.Name
		}
		candidates[i] = ai.Candidate{VendorName: name, Proposal: &views[i].Proposal}
		ids[i] = views[i].ID
	}

	comparison, err := s.ranker.Rank(ctx, rfp, candidates)
	if err != nil {
		return nil, fmt.Errorf("rank proposals for rfp %s: %w", rfpID.Hex(), err)
	}

	if err := s.proposals.SaveScores(ctx, ids, comparison.Scores, comparison.Summaries); err != nil {
		return nil, err
	}
	for i := range views {
		score := comparison.Scores[i]
		views[i].AIScore = &score
		views[i].AISummary = comparison.Summaries[i]
	}

	s.logger.Info("proposals compared",
		zap.String("rfp_id", rfpID.Hex()),
		zap.Int("proposals", len(views)),
		zap.Int("recommended", comparison.Recommendation.VendorIndex),
	)
	return &ComparisonResult{Proposals: views, Comparison: *comparison}, nil
}
