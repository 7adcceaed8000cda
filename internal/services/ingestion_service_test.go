package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/inbox"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
)

func rawEmail(from, subject, body string) []byte {
	return []byte(strings.ReplaceAll(fmt.Sprintf("From: %s\nSubject: %s\nMessage-ID: <m-%d@vendor.io>\nContent-Type: text/plain\n\n%s\n",
		from, subject, len(body), body), "\n", "\r\n"))
}

type ingestionFixture struct {
	mailbox   *fakeMailbox
	rfps      *MockRFPService
	vendors   *MockVendorService
	proposals *MockProposalService
	extractor *MockExtractor
	svc       IIngestionService
}

func newIngestionFixture(messages ...inbox.RawMessage) *ingestionFixture {
	f := &ingestionFixture{
		mailbox:   &fakeMailbox{messages: messages},
		rfps:      new(MockRFPService),
		vendors:   new(MockVendorService),
		proposals: new(MockProposalService),
		extractor: new(MockExtractor),
	}
	f.svc = NewIngestionService(IngestionDeps{
		Dial:          f.mailbox.dialer(),
		RFPs:          f.rfps,
		Vendors:       f.vendors,
		Proposals:     f.proposals,
		Extractor:     f.extractor,
		SubjectMarker: "RFP",
		Logger:        zap.NewNop(),
	})
	return f
}

func TestCheckInbox_CreatesProposal(t *testing.T) {
	rfp := &models.RFP{Base: models.NewBase(), Title: "Laptops"}
	vendor := &models.Vendor{Base: models.NewBase(), Email: "sales@acme.io"}
	subject := "Re: RFP: Laptops - Request for Proposal [RFP-" + strings.ToUpper(rfp.ID.Hex()) + "]"
	body := "Total $18,000, Net 30"

	f := newIngestionFixture(inbox.RawMessage{UID: 7, Raw: rawEmail("Sales@Acme.io", subject, body)})
	price := 18000.0
	extracted := &models.ExtractedProposal{
		Pricing:    models.Pricing{TotalPrice: &price, Currency: "USD"},
		Terms:      models.ProposalTerms{PaymentTerms: "Net 30"},
		ParsedData: models.Attributes{"pricing.totalPrice": models.NumberValue(18000)},
	}

	f.rfps.On("FindByID", mock.Anything, rfp.ID).Return(rfp, nil)
	f.vendors.On("FindByEmail", mock.Anything, "sales@acme.io").Return(vendor, nil)
	f.proposals.On("Exists", mock.Anything, rfp.ID, vendor.ID).Return(false, nil)
	f.extractor.On("Extract", mock.Anything, body).Return(extracted, nil)
	f.proposals.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Proposal) bool {
		return p.RFPID == rfp.ID && p.VendorID == vendor.ID && p.RawEmail == body &&
			p.Terms.PaymentTerms == "Net 30" && *p.Pricing.TotalPrice == 18000 && p.MessageID != "" && !p.ReceivedAt.IsZero()
	})).Return(&models.Proposal{Base: models.NewBase()}, nil)

	report, err := f.svc.CheckInbox(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, "Processed 1 new proposals", report.Message)
	require.Len(t, report.Results, 1)
	assert.Equal(t, OutcomeCreated, report.Results[0].Status)
	assert.Equal(t, rfp.ID.Hex(), report.Results[0].RFPID)
	assert.Equal(t, []uint32{7}, f.mailbox.seen)
	assert.Equal(t, "RFP", f.mailbox.marker)
	assert.True(t, f.mailbox.closed)
	f.proposals.AssertExpectations(t)
	f.extractor.AssertExpectations(t)
}

func TestCheckInbox_Outcomes(t *testing.T) {
	knownRFP := &models.RFP{Base: models.NewBase()}
	missingRFP := primitive.NewObjectID()
	dupVendor := &models.Vendor{Base: models.NewBase(), Email: "dup@vendor.io"}
	aiVendor := &models.Vendor{Base: models.NewBase(), Email: "ai@vendor.io"}
	token := "RFP-" + knownRFP.ID.Hex()

	f := newIngestionFixture(
		inbox.RawMessage{UID: 1, Raw: []byte("garbage without headers")},
		inbox.RawMessage{UID: 2, Raw: rawEmail("a@vendor.io", "Quote for laptops", "hello")},
		inbox.RawMessage{UID: 3, Raw: rawEmail("a@vendor.io", "RFP-"+missingRFP.Hex(), "hello")},
		inbox.RawMessage{UID: 4, Raw: rawEmail("stranger@else.io", token, "hello")},
		inbox.RawMessage{UID: 5, Raw: rawEmail("dup@vendor.io", token, "hello")},
		inbox.RawMessage{UID: 6, Raw: rawEmail("ai@vendor.io", token, "hello")},
	)

	f.rfps.On("FindByID", mock.Anything, missingRFP).Return(nil, mongo.ErrNoDocuments)
	f.rfps.On("FindByID", mock.Anything, knownRFP.ID).Return(knownRFP, nil)
	f.vendors.On("FindByEmail", mock.Anything, "stranger@else.io").Return(nil, mongo.ErrNoDocuments)
	f.vendors.On("FindByEmail", mock.Anything, "dup@vendor.io").Return(dupVendor, nil)
	f.vendors.On("FindByEmail", mock.Anything, "ai@vendor.io").Return(aiVendor, nil)
	f.proposals.On("Exists", mock.Anything, knownRFP.ID, dupVendor.ID).Return(true, nil)
	f.proposals.On("Exists", mock.Anything, knownRFP.ID, aiVendor.ID).Return(false, nil)
	f.extractor.On("Extract", mock.Anything, "hello").Return(nil, errors.New("model unavailable"))

	report, err := f.svc.CheckInbox(context.Background())
	require.NoError(t, err)

	statuses := make([]OutcomeStatus, 0, len(report.Results))
	for _, r := range report.Results {
		statuses = append(statuses, r.Status)
	}
	assert.Equal(t, []OutcomeStatus{
		OutcomeSkipped, OutcomeSkipped, OutcomeSkipped, OutcomeSkipped, OutcomeDuplicate, OutcomeFailed,
	}, statuses)
	assert.Equal(t, "malformed message", report.Results[0].Reason)
	assert.Equal(t, "no rfp marker", report.Results[1].Reason)
	assert.Equal(t, "unknown rfp", report.Results[2].Reason)
	assert.Equal(t, "unknown vendor", report.Results[3].Reason)
	assert.Contains(t, report.Results[5].Reason, "model unavailable")

	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 4, report.Skipped)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []uint32{5}, f.mailbox.seen, "only created and duplicate messages are flagged seen")
	f.proposals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckInbox_InsertRaceIsDuplicate(t *testing.T) {
	rfp := &models.RFP{Base: models.NewBase()}
	vendor := &models.Vendor{Base: models.NewBase(), Email: "v@vendor.io"}
	f := newIngestionFixture(inbox.RawMessage{UID: 9, Raw: rawEmail("v@vendor.io", "RFP-"+rfp.ID.Hex(), "quote")})

	f.rfps.On("FindByID", mock.Anything, rfp.ID).Return(rfp, nil)
	f.vendors.On("FindByEmail", mock.Anything, "v@vendor.io").Return(vendor, nil)
	f.proposals.On("Exists", mock.Anything, rfp.ID, vendor.ID).Return(false, nil)
	f.extractor.On("Extract", mock.Anything, "quote").Return(&models.ExtractedProposal{}, nil)
	f.proposals.On("Create", mock.Anything, mock.Anything).Return(nil, ErrDuplicateProposal)

	report, err := f.svc.CheckInbox(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, []uint32{9}, f.mailbox.seen)
}

func TestCheckInbox_Empty(t *testing.T) {
	f := newIngestionFixture()
	report, err := f.svc.CheckInbox(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "No new emails", report.Message)
	assert.Empty(t, report.Results)
}

func TestCheckInbox_ConnectionErrors(t *testing.T) {
	f := newIngestionFixture()
	f.mailbox.fetchErr = errors.New("imap fetch: connection reset")
	_, err := f.svc.CheckInbox(context.Background())
	assert.ErrorContains(t, err, "connection reset")
	assert.True(t, f.mailbox.closed)

	svc := NewIngestionService(IngestionDeps{
		Dial: func(ctx context.Context) (inbox.Mailbox, error) {
			return nil, errors.New("imap login: bad credentials")
		},
		Logger: zap.NewNop(),
	})
	_, err = svc.CheckInbox(context.Background())
	assert.ErrorContains(t, err, "bad credentials")

	_, err = NewIngestionService(IngestionDeps{Logger: zap.NewNop()}).CheckInbox(context.Background())
	assert.ErrorIs(t, err, ErrInboxNotConfigured)
}

type heldLock struct{}

func (heldLock) Acquire(ctx context.Context) (func(context.Context) error, bool, error) {
	return nil, false, nil
}

func TestCheckInbox_PollInProgress(t *testing.T) {
	mb := &fakeMailbox{}
	svc := NewIngestionService(IngestionDeps{Dial: mb.dialer(), Lock: heldLock{}, Logger: zap.NewNop()})
	_, err := svc.CheckInbox(context.Background())
	assert.ErrorIs(t, err, ErrPollInProgress)
	assert.False(t, mb.closed, "mailbox must not be opened while another poll runs")
}

func TestRFPToken(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	assert.Equal(t, id, rfpToken(&inbox.Message{Subject: "Re: RFP: Laptops [RFP-" + id + "]"}))
	assert.Equal(t, id, rfpToken(&inbox.Message{
		Subject: "Re: RFP quote",
		Thread:  []string{"unrelated@acme.io", "rfp-" + id + "." + primitive.NewObjectID().Hex() + ".abc123@example.com"},
	}))
	assert.Empty(t, rfpToken(&inbox.Message{Subject: "RFP question", Thread: []string{"x@acme.io"}}))
}
