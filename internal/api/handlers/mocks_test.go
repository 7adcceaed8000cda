package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/services"
)

// --- Mocks ---

// MockVendorService
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

// MockRFPService
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

// MockProposalService
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

// MockOutreachService
type MockOutreachService struct {
	mock.Mock
}

func (m *MockOutreachService) SendRFP(ctx context.Context, rfp *models.RFP, vendors []models.Vendor) services.SendResult {
	args := m.Called(ctx, rfp, vendors)
	return args.Get(0).(services.SendResult)
}

// MockIngestionService
type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) CheckInbox(ctx context.Context) (*services.IngestionReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.IngestionReport), args.Error(1)
}

// MockComparisonService
type MockComparisonService struct {
	mock.Mock
}

func (m *MockComparisonService) Compare(ctx context.Context, rfpID primitive.ObjectID) (*services.ComparisonResult, error) {
	args := m.Called(ctx, rfpID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ComparisonResult), args.Error(1)
}
