package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/ai"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/inbox"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
)

// MockVendorService is a mock implementation of IVendorService.
type MockVendorService struct {
	mock.Mock
}

func (m *MockVendorService) CreateVendor(ctx context.Context, input models.VendorInput) (*models.Vendor, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vendor), args.Error(1)
}

func (m *MockVendorService) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vendor), args.Error(1)
}

func (m *MockVendorService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vendor), args.Error(1)
}

func (m *MockVendorService) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Vendor, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vendor), args.Error(1)
}

func (m *MockVendorService) FindByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vendor), args.Error(1)
}

func (m *MockVendorService) UpdateVendor(ctx context.Context, id primitive.ObjectID, patch models.VendorPatch) (*models.Vendor, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vendor), args.Error(1)
}

func (m *MockVendorService) DeleteVendor(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRFPService is a mock implementation of IRFPService.
type MockRFPService struct {
	mock.Mock
}

func (m *MockRFPService) CreateFromDescription(ctx context.Context, description string) (*models.RFP, *models.StructuredRFP, error) {
	args := m.Called(ctx, description)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.RFP), args.Get(1).(*models.StructuredRFP), args.Error(2)
}

func (m *MockRFPService) ListRFPs(ctx context.Context) ([]models.RFPView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RFPView), args.Error(1)
}

func (m *MockRFPService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.RFP, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RFP), args.Error(1)
}

func (m *MockRFPService) GetView(ctx context.Context, id primitive.ObjectID) (*models.RFPView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RFPView), args.Error(1)
}

func (m *MockRFPService) UpdateRFP(ctx context.Context, id primitive.ObjectID, patch models.RFPPatch) (*models.RFP, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RFP), args.Error(1)
}

func (m *MockRFPService) MarkSent(ctx context.Context, id primitive.ObjectID, vendorIDs []primitive.ObjectID) (*models.RFP, error) {
	args := m.Called(ctx, id, vendorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RFP), args.Error(1)
}

// MockProposalService is a mock implementation of IProposalService.
type MockProposalService struct {
	mock.Mock
}

func (m *MockProposalService) ListByRFP(ctx context.Context, rfpID primitive.ObjectID) ([]models.ProposalView, error) {
	args := m.Called(ctx, rfpID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProposalView), args.Error(1)
}

func (m *MockProposalService) ListForComparison(ctx context.Context, rfpID primitive.ObjectID) ([]models.ProposalView, error) {
	args := m.Called(ctx, rfpID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProposalView), args.Error(1)
}

func (m *MockProposalService) GetView(ctx context.Context, id primitive.ObjectID) (*models.ProposalView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProposalView), args.Error(1)
}

func (m *MockProposalService) Exists(ctx context.Context, rfpID, vendorID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, rfpID, vendorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProposalService) Create(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	args := m.Called(ctx, proposal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *MockProposalService) SaveScores(ctx context.Context, ids []primitive.ObjectID, scores []float64, summaries []string) error {
	args := m.Called(ctx, ids, scores, summaries)
	return args.Error(0)
}

// MockExtractor is a mock implementation of ProposalExtractor.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, emailText string) (*models.ExtractedProposal, error) {
	args := m.Called(ctx, emailText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExtractedProposal), args.Error(1)
}

// MockRanker is a mock implementation of ProposalRanker.
type MockRanker struct {
	mock.Mock
}

func (m *MockRanker) Rank(ctx context.Context, rfp *models.RFP, candidates []ai.Candidate) (*models.Comparison, error) {
	args := m.Called(ctx, rfp, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comparison), args.Error(1)
}

// fakeMailbox serves a fixed set of messages and records what was flagged.
type fakeMailbox struct {
	messages []inbox.RawMessage
	fetchErr error
	marker   string
	seen     []uint32
	closed   bool
}

func (f *fakeMailbox) FetchUnseen(ctx context.Context, marker string) ([]inbox.RawMessage, error) {
	f.marker = marker
	return f.messages, f.fetchErr
}

func (f *fakeMailbox) MarkSeen(ctx context.Context, uids []uint32) error {
	f.seen = append(f.seen, uids...)
	return nil
}

func (f *fakeMailbox) Close() error {
	f.closed = true
	return nil
}

func (f *fakeMailbox) dialer() inbox.Dialer {
	return func(ctx context.Context) (inbox.Mailbox, error) {
		return f, nil
	}
}

// stubStructurer returns a fixed structured RFP.
type stubStructurer struct {
	out *models.StructuredRFP
}

func (s stubStructurer) Structure(ctx context.Context, description string) *models.StructuredRFP {
	return s.out
}
