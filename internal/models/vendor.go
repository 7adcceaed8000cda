package models

import (
	"strings"
	"time"
)

// Vendor is a supplier that can receive RFPs and reply with proposals.
type Vendor struct {
	Base      `bson:",inline"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"` // always lowercase
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Company   string    `bson:"company" json:"company"`
	Address   string    `bson:"address,omitempty" json:"address,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// VendorSummary is the populated form of a vendor reference.
type VendorSummary struct {
	Base    `bson:",inline"`
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email" json:"email"`
	Company string `bson:"company" json:"company"`
}

// Summary returns the fields shown wherever a vendor reference is populated.
func (v *Vendor) Summary() VendorSummary {
	return VendorSummary{Base: v.Base, Name: v.Name, Email: v.Email, Company: v.Company}
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VendorInput is the create payload.
type VendorInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
}

// VendorPatch is the update payload. Address is a pointer because an
// explicitly empty address clears it, while the other fields are only
// applied when non-empty.
type VendorPatch struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Company string  `json:"company"`
	Address *string `json:"address"`
}
