package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemPrice is one priced line in a vendor proposal.
type ItemPrice struct {
	Item     string   `bson:"item" json:"item"`
	Price    *float64 `bson:"price,omitempty" json:"price,omitempty"`
	Quantity *float64 `bson:"quantity,omitempty" json:"quantity,omitempty"`
}

// Pricing is the price section extracted from a vendor reply.
type Pricing struct {
	TotalPrice *float64    `bson:"total_price,omitempty" json:"totalPrice,omitempty"`
	ItemPrices []ItemPrice `bson:"item_prices" json:"itemPrices"`
	Currency   string      `bson:"currency" json:"currency"`
}

// ProposalTerms are the terms a vendor offered.
type ProposalTerms struct {
	PaymentTerms string `bson:"payment_terms,omitempty" json:"paymentTerms,omitempty"`
	Warranty     string `bson:"warranty,omitempty" json:"warranty,omitempty"`
	DeliveryTime string `bson:"delivery_time,omitempty" json:"deliveryTime,omitempty"`
	OtherTerms   string `bson:"other_terms,omitempty" json:"otherTerms,omitempty"`
}

// Proposal is a vendor's reply to an RFP, as extracted by the AI.
type Proposal struct {
	Base       `bson:",inline"`
	RFPID      primitive.ObjectID `bson:"rfp_id" json:"rfpId"`
	VendorID   primitive.ObjectID `bson:"vendor_id" json:"vendorId"`
	ParsedData Attributes         `bson:"parsed_data" json:"parsedData"`
	RawEmail   string             `bson:"raw_email" json:"rawEmail"`
	Pricing    Pricing            `bson:"pricing" json:"pricing"`
	Terms      ProposalTerms      `bson:"terms" json:"terms"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	AIScore    *float64           `bson:"ai_score,omitempty" json:"aiScore,omitempty"`
	AISummary  string             `bson:"ai_summary,omitempty" json:"aiSummary,omitempty"`
	MessageID  string             `bson:"message_id,omitempty" json:"messageId,omitempty"`
	ArchiveKey string             `bson:"archive_key,omitempty" json:"archiveKey,omitempty"`
	ReceivedAt time.Time          `bson:"received_at" json:"receivedAt"`
}

// ProposalView is a proposal with its vendor (and optionally RFP) populated.
// In JSON a populated reference replaces the bare ID under the same key.
type ProposalView struct {
	Proposal
	Vendor *VendorSummary `json:"-"`
	RFP    *RFPSummary    `json:"-"`
}

func (v ProposalView) MarshalJSON() ([]byte, error) {
	type plain Proposal
	out := struct {
		plain
		VendorID any `json:"vendorId"`
		RFPID    any `json:"rfpId"`
	}{plain: plain(v.Proposal), VendorID: v.Proposal.VendorID, RFPID: v.Proposal.RFPID}
	if v.Vendor != nil {
		out.VendorID = v.Vendor
	}
	if v.RFP != nil {
		out.RFPID = v.RFP
	}
	return json.Marshal(out)
}

// RFPSummary is the populated form of an RFP reference on a proposal.
type RFPSummary struct {
	Base     `bson:",inline"`
	Title    string    `bson:"title" json:"title"`
	Budget   float64   `bson:"budget" json:"budget"`
	Deadline time.Time `bson:"deadline" json:"deadline"`
}

// ExtractedProposal is the AI's structured reading of a vendor email.
type ExtractedProposal struct {
	Pricing    Pricing
	Terms      ProposalTerms
	Notes      string
	ParsedData Attributes
}

// Recommendation is the AI's pick among compared proposals.
type Recommendation struct {
	VendorIndex int                `json:"vendorIndex"` // 1-based into the compared list
	VendorID    primitive.ObjectID `json:"vendorId"`
	Reasoning   string             `json:"reasoning"`
}

// Comparison is the ranking result for an RFP's proposals.
type Comparison struct {
	Scores         []float64      `json:"scores"`
	Summaries      []string       `json:"summaries"`
	Recommendation Recommendation `json:"recommendation"`
}
