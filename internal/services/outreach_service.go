package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/email"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
)

// SendResult summarizes an outreach run.
type SendResult struct {
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Message string `json:"message"`
}

// IOutreachService emails an RFP to vendors.
type IOutreachService interface {
	SendRFP(ctx context.Context, rfp *models.RFP, vendors []models.Vendor) SendResult
}

type outreachService struct {
	sender      email.Sender
	fromName    string
	fromAddress string
	logger      *zap.Logger
}

func NewOutreachService(sender email.Sender, fromName, fromAddress string, logger *zap.Logger) IOutreachService {
	return &outreachService{sender: sender, fromName: fromName, fromAddress: fromAddress, logger: logger}
}

// CorrelationToken is the marker vendors keep in their reply subject.
func CorrelationToken(rfp *models.RFP) string {
	return "RFP-" + rfp.ID.Hex()
}

// OutreachSubject is the subject of the invitation email.
func OutreachSubject(rfp *models.RFP) string {
	return fmt.Sprintf("RFP: %s - Request for Proposal [%s]", rfp.Title, CorrelationToken(rfp))
}

// SendRFP sends one email per vendor, one at a time. A failed send is
// logged and counted; it does not stop the others.
func (s *outreachService) SendRFP(ctx context.Context, rfp *models.RFP, vendors []models.Vendor) SendResult {
	var res SendResult
	subject := OutreachSubject(rfp)

	for i := range vendors {
		vendor := &vendors[i]
		msg := &email.Message{
			FromName:    s.fromName,
			FromAddress: s.fromAddress,
			To:          []string{vendor.Email},
			Subject:     subject,
			Body:        RenderOutreachBody(rfp, vendor),
			MessageID:   email.NewMessageID(fmt.Sprintf("rfp-%s.%s", rfp.ID.Hex(), vendor.ID.Hex()), s.fromAddress),
		}
		if err := s.sender.Send(ctx, msg.To, subject, msg.Bytes()); err != nil {
			res.Failed++
			s.logger.Error("failed to send rfp",
				zap.String("rfp_id", rfp.ID.Hex()),
				zap.String("vendor_email", vendor.Email),
				zap.Error(err),
			)
			continue
		}
		res.Sent++
		s.logger.Info("rfp sent", zap.String("rfp_id", rfp.ID.Hex()), zap.String("vendor_email", vendor.Email))
	}

	res.Message = fmt.Sprintf("Sent to %d vendors", res.Sent)
	if res.Failed > 0 {
		res.Message += fmt.Sprintf(", %d failed", res.Failed)
	}
	return res
}

// RenderOutreachBody renders the plain-text invitation for one vendor.
func RenderOutreachBody(rfp *models.RFP, vendor *models.Vendor) string {
	greeting := "Dear Vendor,"
	if vendor != nil && strings.TrimSpace(vendor.Name) != "" {
		greeting = fmt.Sprintf("Dear %s,", strings.TrimSpace(vendor.Name))
	}

	var b strings.Builder
	b.WriteString(greeting + "\n\n")
	b.WriteString("We are pleased to invite you to submit a proposal for the following procurement:\n\n")
	fmt.Fprintf(&b, "=== RFP: %s ===\n\n", rfp.Title)
	fmt.Fprintf(&b, "DESCRIPTION:\n%s\n\n", rfp.Description)

	b.WriteString("ITEMS REQUIRED:\n")
	for _, item := range rfp.Items {
		spec := item.Specifications
		if strings.TrimSpace(spec) == "" {
			spec = "See description"
		}
		fmt.Fprintf(&b, "- %sx %s (%s)\n", formatNumber(item.Quantity), item.Name, spec)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "BUDGET: $%s\n", formatNumber(rfp.Budget))
	fmt.Fprintf(&b, "DEADLINE: %s\n\n", rfp.Deadline.UTC().Format("Jan 2, 2006"))

	b.WriteString("TERMS:\n")
	fmt.Fprintf(&b, "- Payment Terms: %s\n", orToBeDiscussed(rfp.Terms.PaymentTerms))
	fmt.Fprintf(&b, "- Warranty Required: %s\n", orToBeDiscussed(rfp.Terms.Warranty))
	fmt.Fprintf(&b, "- Delivery Terms: %s\n", orToBeDiscussed(rfp.Terms.DeliveryTerms))
	if strings.TrimSpace(rfp.Terms.OtherTerms) != "" {
		fmt.Fprintf(&b, "- Additional Terms: %s\n", rfp.Terms.OtherTerms)
	}
	b.WriteString("\n")

	b.WriteString("Please reply to this email with your proposal including:\n")
	b.WriteString("1. Detailed pricing for each item\n")
	b.WriteString("2. Your payment terms\n")
	b.WriteString("3. Warranty offered\n")
	b.WriteString("4. Delivery timeline\n")
	b.WriteString("5. Any other relevant information\n\n")
	fmt.Fprintf(&b, "To help us process your response, please keep \"%s\" in your reply subject line.\n\n", CorrelationToken(rfp))
	b.WriteString("Thank you for your interest.\n\n")
	b.WriteString("Best regards,\nProcurement Team")
	return b.String()
}

func orToBeDiscussed(s string) string {
	if strings.TrimSpace(s) == "" {
		return "To be discussed"
	}
	return s
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
