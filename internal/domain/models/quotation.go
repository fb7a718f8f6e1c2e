package models

import "github.com/shopspring/decimal"

// SessionState tracks where a form session sits in its editing lifecycle.
type SessionState string

const (
	StateUninitialized SessionState = "UNINITIALIZED"
	StateDefaulted     SessionState = "DEFAULTED"
	StateHydrated      SessionState = "HYDRATED"
	StateDirty         SessionState = "DIRTY"
	StateValidated     SessionState = "VALIDATED"
	StateSubmitted     SessionState = "SUBMITTED"
)

// ChargeLine is one billable row of a quotation. Quantity, unit prices and
// the exchange rate are user inputs; TotalSell and TotalCost are derived and
// must never be hand-edited.
type ChargeLine struct {
	ChargeName  string          `json:"charge_name"`
	Currency    string          `json:"currency"`
	ROE         decimal.Decimal `json:"roe"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	SellPerUnit decimal.Decimal `json:"sell_per_unit"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	TotalSell   string          `json:"total_sell"`
	TotalCost   string          `json:"total_cost"`
}

// QuotationScalars are the flat header fields of one service's quotation.
type QuotationScalars struct {
	Currency  string `json:"currency"`
	ValidUpto string `json:"valid_upto"`
	Carrier   string `json:"carrier"`
	Status    string `json:"status"`
	Remark    string `json:"remark"`
}

// FormSession is the editable form for exactly one enquiry service: header
// scalars plus an ordered charge list, with its lifecycle state and the
// field errors from the last validation pass.
type FormSession struct {
	EntityID    int               `json:"entity_id"`
	State       SessionState      `json:"state"`
	Scalars     QuotationScalars  `json:"scalars"`
	Charges     []ChargeLine      `json:"charges"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// DraftEntry is one parked snapshot inside the draft store.
type DraftEntry struct {
	Form         FormSession `json:"form"`
	HasQuotation bool        `json:"has_quotation"`
}

// QuotationTotals are the aggregate figures over a charge list. They are
// recomputed from the lines on demand and never stored.
type QuotationTotals struct {
	NetSell string `json:"net_sell"`
	NetCost string `json:"net_cost"`
	Profit  string `json:"profit"`
}

// ServicePayload is the per-service slice of a submission: one parked or
// live form flattened for the ERP, totals included.
type ServicePayload struct {
	ServiceID int              `json:"service_id"`
	Scalars   QuotationScalars `json:"scalars"`
	Charges   []ChargeLine     `json:"charges"`
	Totals    QuotationTotals  `json:"totals"`
}

// QuotationSubmission is the aggregate the ERP receives: every service of
// the enquiry in one array, plus the edit-mode identifier when updating.
type QuotationSubmission struct {
	EnquiryID   string           `json:"enquiry_id"`
	QuotationID string           `json:"quotation_id,omitempty"`
	Services    []ServicePayload `json:"services"`
}

// SubmitResult reports the outcome of a submission attempt. When unfilled
// services remain and the caller did not confirm, Submitted is false and
// UnfilledServices carries their zero-based indexes in the enquiry's
// service list.
type SubmitResult struct {
	Submitted        bool   `json:"submitted"`
	QuotationID      string `json:"quotation_id,omitempty"`
	UnfilledServices []int  `json:"unfilled_services,omitempty"`
	Message          string `json:"message,omitempty"`
}

// QuotationRecord is a previously persisted quotation for one service, as
// returned by the ERP in edit mode.
type QuotationRecord struct {
	ServiceID int              `json:"service_id"`
	Scalars   QuotationScalars `json:"scalars"`
	Charges   []ChargeLine     `json:"charges"`
}
