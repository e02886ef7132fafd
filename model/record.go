package model

import (
	"time"
)

// Document kinds
const (
	KindOficio = "oficio"
	KindCarta  = "carta"
)

// Document directions
const (
	DirectionReceived = "received"
	DirectionSent     = "sent"
)

// Contract types
const (
	ContractEquipment   = "equipment"
	ContractMaintenance = "maintenance"
)

// DocumentRecord is an official letter (oficio) or a sent/received letter
// (carta) in the correspondence registry.
type DocumentRecord struct {
	ID           int64        `json:"id"`
	Kind         string       `json:"kind"`      // oficio, carta
	Direction    string       `json:"direction"` // received, sent
	Number       string       `json:"number,omitempty"`
	Date         *time.Time   `json:"date,omitempty"`
	Sender       string       `json:"sender,omitempty"`
	Recipient    string       `json:"recipient,omitempty"`
	Title        string       `json:"title,omitempty"`
	Subject      string       `json:"subject,omitempty"`
	Summary      string       `json:"summary,omitempty"`
	Year         int          `json:"year,omitempty"`        // extracted from Number, server-side ordering
	Correlative  int          `json:"correlative,omitempty"` // extracted from Number, server-side ordering
	ExternalLink string       `json:"external_link,omitempty"`
	LocalFile    string       `json:"local_file,omitempty"`
	ParentID     *int64       `json:"parent_id,omitempty"` // the oficio a reply letter addresses
	Attachments  []Attachment `json:"attachments,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ContractSite is a maintenance contract's per-location cost line.
type ContractSite struct {
	ID       int64   `json:"id,omitempty"`
	SiteName string  `json:"site_name"`
	Amount   float64 `json:"amount"`
}

// ContractRecord is an equipment purchase or maintenance contract.
type ContractRecord struct {
	ID                int64          `json:"id"`
	Number            string         `json:"number,omitempty"`
	Date              *time.Time     `json:"date,omitempty"`
	ContractType      string         `json:"contract_type"` // equipment, maintenance
	ContractingParty  string         `json:"contracting_party,omitempty"`
	CounterpartyTaxID string         `json:"counterparty_tax_id,omitempty"`
	CounterpartyName  string         `json:"counterparty_name,omitempty"`
	ContractedItem    string         `json:"contracted_item,omitempty"`
	Quantity          int            `json:"quantity,omitempty"`   // equipment only
	UnitPrice         float64        `json:"unit_price,omitempty"` // equipment only
	Sites             []ContractSite `json:"sites,omitempty"`      // maintenance only
	TermDays          int            `json:"term_days,omitempty"`
	ExtraDays         int            `json:"extra_days,omitempty"`
	Summary           string         `json:"summary,omitempty"`
	ExternalLink      string         `json:"external_link,omitempty"`
	LocalFile         string         `json:"local_file,omitempty"`
	Attachments       []Attachment   `json:"attachments,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// TotalAmount computes the contract total on read: quantity x unit price for
// equipment, sum of site amounts for maintenance. The second return is false
// when the underlying fields are absent, so stale totals are never persisted.
func (c *ContractRecord) TotalAmount() (float64, bool) {
	switch c.ContractType {
	case ContractEquipment:
		if c.Quantity <= 0 || c.UnitPrice <= 0 {
			return 0, false
		}
		return float64(c.Quantity) * c.UnitPrice, true
	case ContractMaintenance:
		if len(c.Sites) == 0 {
			return 0, false
		}
		var total float64
		for _, s := range c.Sites {
			total += s.Amount
		}
		return total, true
	}
	return 0, false
}

// Attachment is an extra file or external link tied to a document or contract.
// Exactly one of LocalFile or ExternalLink must be set.
type Attachment struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	LocalFile    string    `json:"local_file,omitempty"`
	ExternalLink string    `json:"external_link,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Valid reports whether the attachment carries exactly one storage reference.
func (a *Attachment) Valid() bool {
	return (a.LocalFile != "") != (a.ExternalLink != "")
}

// User is a registry staff account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Admin        bool      `json:"admin"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Extraction is the best-effort structured guess returned by the AI
// field-extraction service for an uploaded PDF.
type Extraction struct {
	OfficeNumber    string `json:"office_number"`
	Date            string `json:"date"` // YYYY-MM-DD, may be empty
	Sender          string `json:"sender"`
	Recipient       string `json:"recipient"`
	Subject         string `json:"subject"`
	Summary         string `json:"summary"`
	ReferenceNumber string `json:"reference_number"` // the oficio a reply addresses
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
}
