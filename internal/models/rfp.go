package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RFPStatus is the lifecycle state of an RFP.
type RFPStatus string

const (
	RFPStatusDraft  RFPStatus = "draft"
	RFPStatusSent   RFPStatus = "sent"
	RFPStatusClosed RFPStatus = "closed"
)

// Valid reports whether s is one of the known statuses.
func (s RFPStatus) Valid() bool {
	switch s {
	case RFPStatusDraft, RFPStatusSent, RFPStatusClosed:
		return true
	}
	return false
}

// RFPItem is a single line being procured.
type RFPItem struct {
	Name           string  `bson:"name" json:"name"`
	Quantity       float64 `bson:"quantity" json:"quantity"`
	Specifications string  `bson:"specifications,omitempty" json:"specifications,omitempty"`
}

// RFPTerms are the commercial terms requested from vendors.
type RFPTerms struct {
	PaymentTerms  string `bson:"payment_terms,omitempty" json:"paymentTerms,omitempty"`
	Warranty      string `bson:"warranty,omitempty" json:"warranty,omitempty"`
	DeliveryTerms string `bson:"delivery_terms,omitempty" json:"deliveryTerms,omitempty"`
	OtherTerms    string `bson:"other_terms,omitempty" json:"otherTerms,omitempty"`
}

// RFP is a structured Request for Proposal.
type RFP struct {
	Base        `bson:",inline"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Items       []RFPItem            `bson:"items" json:"items"`
	Budget      float64              `bson:"budget" json:"budget"`
	Deadline    time.Time            `bson:"deadline" json:"deadline"`
	Terms       RFPTerms             `bson:"terms" json:"terms"`
	Vendors     []primitive.ObjectID `bson:"vendors" json:"vendors"`
	Status      RFPStatus            `bson:"status" json:"status"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
}

// RFPView is an RFP with its vendor references populated.
type RFPView struct {
	RFP
	Vendors []VendorSummary `json:"vendors"`
}

// StructuredRFP is what the structuring step extracted from free text,
// before it is persisted.
type StructuredRFP struct {
	Title    string    `json:"title"`
	Items    []RFPItem `json:"items"`
	Budget   float64   `json:"budget"`
	Deadline time.Time `json:"deadline"`
	Terms    RFPTerms  `json:"terms"`
	Fallback bool      `json:"fallback"` // true when the heuristic extractor produced it
}

// RFPPatch carries the whitelisted fields of an RFP update. Nil means
// "not present in the request" and leaves the stored value untouched.
type RFPPatch struct {
	Title       *string
	Description *string
	Items       *[]RFPItem
	Budget      *float64
	Deadline    *time.Time
	Terms       *RFPTerms
	Status      *RFPStatus
}

// Empty reports whether the patch changes nothing.
func (p RFPPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Items == nil && p.Budget == nil &&
		p.Deadline == nil && p.Terms == nil && p.Status == nil
}
