package models

import (
	"strings"
	"time"
)

// JobMode distinguishes the two export booking wizards.
type JobMode string

const (
	JobAirExport JobMode = "AIR_EXPORT"
	JobSeaExport JobMode = "SEA_EXPORT"
)

// WizardStep names one step of the booking wizard, in order.
type WizardStep string

const (
	StepParties WizardStep = "parties"
	StepRouting WizardStep = "routing"
	StepCargo   WizardStep = "cargo"
	StepReview  WizardStep = "review"
)

// WizardSteps is the fixed step order of the booking flow.
var WizardSteps = []WizardStep{StepParties, StepRouting, StepCargo, StepReview}

// ParseWizardStep resolves a URL segment to a wizard step.
func ParseWizardStep(raw string) (WizardStep, bool) {
	step := WizardStep(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range WizardSteps {
		if s == step {
			return s, true
		}
	}
	return "", false
}

// JobParties holds the commercial parties of a booking.
type JobParties struct {
	Shipper   string `json:"shipper"`
	Consignee string `json:"consignee"`
	Notify    string `json:"notify,omitempty"`
	BranchID  string `json:"branch_id"`
}

// JobRouting holds the transport plan of a booking.
type JobRouting struct {
	PortOfLoad  string `json:"port_of_load"`
	PortOfDisch string `json:"port_of_discharge"`
	Carrier     string `json:"carrier"`
	CallMode    string `json:"call_mode,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	ETD         string `json:"etd,omitempty"`
}

// JobDraft is the wizard's work-in-progress state for one booking session.
// Steps are filled in any order but confirmed only when all of them pass
// validation.
type JobDraft struct {
	ID      string      `json:"id"`
	Mode    JobMode     `json:"mode"`
	Parties *JobParties `json:"parties,omitempty"`
	Routing *JobRouting `json:"routing,omitempty"`
	Cargo   *CargoDetail `json:"cargo,omitempty"`
	Remark  string      `json:"remark,omitempty"`
}

// Job is a confirmed booking persisted by the back office.
type Job struct {
	ID        string      `bson:"_id" json:"id"`
	JobNumber string      `bson:"job_number" json:"job_number"`
	Mode      JobMode     `bson:"mode" json:"mode"`
	Parties   JobParties  `bson:"parties" json:"parties"`
	Routing   JobRouting  `bson:"routing" json:"routing"`
	Cargo     CargoDetail `bson:"cargo" json:"cargo"`
	Remark    string      `bson:"remark,omitempty" json:"remark,omitempty"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}
