package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/cache"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/inbox"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/storage"
)

var (
	rfpTokenPattern = regexp.MustCompile(`(?i)RFP-([a-f0-9]{24})`)
	// outbound Message-IDs look like rfp-<rfp id>.<vendor id>.<random>@domain
	rfpThreadPattern = regexp.MustCompile(`(?i)^rfp-([a-f0-9]{24})\.`)
)

// rfpToken finds the RFP id in the subject, falling back to the ids of the
// messages being replied to for clients that rewrite the subject.
func rfpToken(msg *inbox.Message) string {
	if m := rfpTokenPattern.FindStringSubmatch(msg.Subject); m != nil {
		return m[1]
	}
	for _, id := range msg.Thread {
		if m := rfpThreadPattern.FindStringSubmatch(id); m != nil {
			return m[1]
		}
	}
	return ""
}

// OutcomeStatus is what happened to one inbound message.
type OutcomeStatus string

const (
	OutcomeCreated   OutcomeStatus = "created"
	OutcomeDuplicate OutcomeStatus = "duplicate"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeFailed    OutcomeStatus = "failed"
)

// MessageOutcome reports on one inbound message.
type MessageOutcome struct {
	UID        uint32        `json:"uid"`
	Subject    string        `json:"subject,omitempty"`
	From       string        `json:"from,omitempty"`
	Status     OutcomeStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	RFPID      string        `json:"rfpId,omitempty"`
	VendorID   string        `json:"vendorId,omitempty"`
	ProposalID string        `json:"proposalId,omitempty"`
}

// IngestionReport summarizes one inbox check.
type IngestionReport struct {
	Processed  int              `json:"processed"`
	Created    int              `json:"created"`
	Duplicates int              `json:"duplicates"`
	Skipped    int              `json:"skipped"`
	Failed     int              `json:"failed"`
	Message    string           `json:"message"`
	Results    []MessageOutcome `json:"results"`
}

// ProposalExtractor reads a vendor reply into structured data.
type ProposalExtractor interface {
	Extract(ctx context.Context, emailText string) (*models.ExtractedProposal, error)
}

// IIngestionService turns unseen vendor replies into proposals.
type IIngestionService interface {
	CheckInbox(ctx context.Context) (*IngestionReport, error)
}

// IngestionDeps are the collaborators of the ingestion service. Dial and
// Archive may be nil.
type IngestionDeps struct {
	Dial          inbox.Dialer
	Lock          cache.Locker
	RFPs          IRFPService
	Vendors       IVendorService
	Proposals     IProposalService
	Extractor     ProposalExtractor
	Archive       storage.IEmailArchive
	SubjectMarker string
	Logger        *zap.Logger
}

type ingestionService struct {
	IngestionDeps
	now func() time.Time
}

func NewIngestionService(deps IngestionDeps) IIngestionService {
	if deps.Lock == nil {
		deps.Lock = &cache.LocalLock{}
	}
	return &ingestionService{IngestionDeps: deps, now: time.Now}
}

// CheckInbox runs one synchronous poll. Only one poll runs at a time;
// a concurrent call gets ErrPollInProgress. Errors talking to the mail
// server fail the whole check, while per-message problems are reported in
// the results.
func (s *ingestionService) CheckInbox(ctx context.Context) (*IngestionReport, error) {
	if s.Dial == nil {
		return nil, ErrInboxNotConfigured
	}

	release, ok, err := s.Lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPollInProgress
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.Logger.Warn("failed to release poll lock", zap.Error(err))
		}
	}()

	mb, err := s.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := mb.Close(); err != nil {
			s.Logger.Warn("failed to close mailbox", zap.Error(err))
		}
	}()

	messages, err := mb.FetchUnseen(ctx, s.SubjectMarker)
	if err != nil {
		return nil, err
	}

	report := &IngestionReport{Results: make([]MessageOutcome, 0, len(messages))}
	var seen []uint32
	for _, raw := range messages {
		outcome := s.process(ctx, raw)
		report.Results = append(report.Results, outcome)
		switch outcome.Status {
		case OutcomeCreated:
			report.Created++
			seen = append(seen, raw.UID)
		case OutcomeDuplicate:
			report.Duplicates++
			seen = append(seen, raw.UID)
		case OutcomeSkipped:
			report.Skipped++
		case OutcomeFailed:
			report.Failed++
		}
	}
	report.Processed = report.Created

	if err := mb.MarkSeen(ctx, seen); err != nil {
		s.Logger.Warn("failed to flag ingested messages as seen", zap.Int("count", len(seen)), zap.Error(err))
	}

	if len(messages) == 0 {
		report.Message = "No new emails"
	} else {
		report.Message = fmt.Sprintf("Processed %d new proposals", report.Processed)
	}
	s.Logger.Info("inbox checked",
		zap.Int("fetched", len(messages)),
		zap.Int("created", report.Created),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *ingestionService) process(ctx context.Context, raw inbox.RawMessage) MessageOutcome {
	out := MessageOutcome{UID: raw.UID}
	skip := func(reason string) MessageOutcome {
		out.Status, out.Reason = OutcomeSkipped, reason
		s.Logger.Info("inbound message skipped", zap.Uint32("uid", raw.UID), zap.String("reason", reason))
		return out
	}
	fail := func(reason string, err error) MessageOutcome {
		out.Status, out.Reason = OutcomeFailed, reason
		if err != nil {
			out.Reason = fmt.Sprintf("%s: %v", reason, err)
		}
		s.Logger.Warn("inbound message failed", zap.Uint32("uid", raw.UID), zap.String("reason", reason), zap.Error(err))
		return out
	}

	msg, err := inbox.Parse(raw.Raw)
	if err != nil {
		return skip("malformed message")
	}
	out.Subject, out.From = msg.Subject, msg.From

	token := rfpToken(msg)
	if token == "" {
		return skip("no rfp marker")
	}
	rfpID, err := models.ParseID(strings.ToLower(token))
	if err != nil {
		return skip("no rfp marker")
	}
	out.RFPID = rfpID.Hex()

	rfp, err := s.RFPs.FindByID(ctx, rfpID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return skip("unknown rfp")
		}
		return fail("rfp lookup", err)
	}

	vendor, err := s.Vendors.FindByEmail(ctx, msg.From)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return skip("unknown vendor")
		}
		return fail("vendor lookup", err)
	}
	out.VendorID = vendor.ID.Hex()

	exists, err := s.Proposals.Exists(ctx, rfp.ID, vendor.ID)
	if err != nil {
		return fail("duplicate check", err)
	}
	if exists {
		out.Status = OutcomeDuplicate
		return out
	}

	if strings.TrimSpace(msg.Text) == "" {
		return skip("empty body")
	}

	extracted, err := s.Extractor.Extract(ctx, msg.Text)
	if err != nil {
		return fail("ai extraction", err)
	}

	proposal := &models.Proposal{
		RFPID:      rfp.ID,
		VendorID:   vendor.ID,
		ParsedData: extracted.ParsedData,
		RawEmail:   msg.Text,
		Pricing:    extracted.Pricing,
		Terms:      extracted.Terms,
		Notes:      extracted.Notes,
		MessageID:  msg.MessageID,
		ReceivedAt: s.now().UTC(),
	}

	if s.Archive != nil {
		key, err := s.Archive.Put(ctx, rfp.ID.Hex(), vendor.ID.Hex(), raw.Raw)
		if err != nil {
			s.Logger.Warn("failed to archive inbound email", zap.Uint32("uid", raw.UID), zap.Error(err))
		} else {
			proposal.ArchiveKey = key
		}
	}

	created, err := s.Proposals.Create(ctx, proposal)
	if err != nil {
		if errors.Is(err, ErrDuplicateProposal) {
			out.Status = OutcomeDuplicate
			return out
		}
		return fail("store proposal", err)
	}

	out.Status = OutcomeCreated
	out.ProposalID = created.ID.Hex()
	s.Logger.Info("proposal created from email",
		zap.String("proposal_id", out.ProposalID),
		zap.String("rfp_id", out.RFPID),
		zap.String("vendor_email", vendor.Email),
	)
	return out
}
