package models

import "strings"

// ServiceType discriminates the cargo-detail shape of an enquiry service.
type ServiceType string

const (
	ServiceAIR    ServiceType = "AIR"
	ServiceFCL    ServiceType = "FCL"
	ServiceLCL    ServiceType = "LCL"
	ServiceOTHERS ServiceType = "OTHERS"
)

// ParseServiceType normalizes free-form service type strings from the
// upstream API; anything unrecognized collapses to OTHERS.
func ParseServiceType(raw string) ServiceType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "AIR":
		return ServiceAIR
	case "FCL", "SEA-FCL":
		return ServiceFCL
	case "LCL", "SEA-LCL":
		return ServiceLCL
	default:
		return ServiceOTHERS
	}
}

// AirCargo describes air-freight cargo figures.
type AirCargo struct {
	Pieces           int     `json:"pieces"`
	GrossWeightKg    float64 `json:"gross_weight_kg"`
	ChargeableWeight float64 `json:"chargeable_weight"`
	Commodity        string  `json:"commodity"`
}

// FCLCargo describes full-container loads.
type FCLCargo struct {
	ContainerType string  `json:"container_type"`
	Containers    int     `json:"containers"`
	CargoWeightMt float64 `json:"cargo_weight_mt"`
	Commodity     string  `json:"commodity"`
}

// LCLCargo describes less-than-container loads.
type LCLCargo struct {
	Packages  int     `json:"packages"`
	VolumeCbm float64 `json:"volume_cbm"`
	WeightKg  float64 `json:"weight_kg"`
	Commodity string  `json:"commodity"`
}

// CargoDetail is the tagged union of per-service-type cargo shapes. Exactly
// the variant matching the owning service's type is set; the rest are nil.
// It is resolved once when the upstream enquiry payload is decoded, so the
// rest of the code never touches loosely-typed maps.
type CargoDetail struct {
	Air    *AirCargo `json:"air,omitempty"`
	FCL    *FCLCargo `json:"fcl,omitempty"`
	LCL    *LCLCargo `json:"lcl,omitempty"`
	Remark string    `json:"remark,omitempty"`
}

// EnquiryService is one independently quotable line of an enquiry. The
// drafting engine treats it as read-only reference data.
type EnquiryService struct {
	ID          int         `json:"id"`
	Type        ServiceType `json:"type"`
	Trade       string      `json:"trade"` // EXPORT or IMPORT
	PortOfLoad  string      `json:"port_of_load"`
	PortOfDisch string      `json:"port_of_discharge"`
	Cargo       CargoDetail `json:"cargo"`
	BuyRate     string      `json:"buy_rate,omitempty"`
	SellRate    string      `json:"sell_rate,omitempty"`
	RateCurr    string      `json:"rate_currency,omitempty"`
}
