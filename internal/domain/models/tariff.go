package models

import "time"

// TariffLine is one published charge of a tariff. The drafting engine's
// destination-flow adapter copies these into quotation charge lines.
type TariffLine struct {
	ChargeName  string `bson:"charge_name" json:"charge_name"`
	Currency    string `bson:"currency" json:"currency"`
	Unit        string `bson:"unit" json:"unit"`
	SellPerUnit string `bson:"sell_per_unit" json:"sell_per_unit"`
	CostPerUnit string `bson:"cost_per_unit" json:"cost_per_unit"`
}

// Tariff is a published rate card for a port pair, keyed additionally by
// service type and, for FCL, container type.
type Tariff struct {
	ID            string       `bson:"_id" json:"id"`
	Name          string       `bson:"name" json:"name"`
	ServiceType   ServiceType  `bson:"service_type" json:"service_type"`
	PortOfLoad    string       `bson:"port_of_load" json:"port_of_load"`
	PortOfDisch   string       `bson:"port_of_discharge" json:"port_of_discharge"`
	ContainerType string       `bson:"container_type,omitempty" json:"container_type,omitempty"`
	Lines         []TariffLine `bson:"lines" json:"lines"`
	ValidUpto     string       `bson:"valid_upto,omitempty" json:"valid_upto,omitempty"`
	Active        bool         `bson:"active" json:"active"`
	CreatedAt     time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `bson:"updated_at" json:"updated_at"`
}

// TariffLookup are the keys of a rate-card search.
type TariffLookup struct {
	ServiceType   ServiceType
	PortOfLoad    string
	PortOfDisch   string
	ContainerType string
}
