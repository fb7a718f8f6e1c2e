package models

import (
	"strings"
	"time"
)

// MasterKind names one master-data catalogue maintained by the back office.
type MasterKind string

const (
	KindBranch        MasterKind = "branches"
	KindCompany       MasterKind = "companies"
	KindPort          MasterKind = "ports"
	KindContainerType MasterKind = "container-types"
	KindCallMode      MasterKind = "call-modes"
	KindFrequency     MasterKind = "frequencies"
	KindService       MasterKind = "services"
)

// KnownMasterKinds lists every catalogue the CRUD screens expose.
var KnownMasterKinds = []MasterKind{
	KindBranch, KindCompany, KindPort, KindContainerType,
	KindCallMode, KindFrequency, KindService,
}

// ParseMasterKind resolves a URL segment to a catalogue, reporting whether
// it is one we serve.
func ParseMasterKind(raw string) (MasterKind, bool) {
	kind := MasterKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, k := range KnownMasterKinds {
		if k == kind {
			return k, true
		}
	}
	return "", false
}

// MasterRecord is one row of any master catalogue. Code and Name are common
// to every kind; kind-specific columns (port country, container TEU, weekday
// of a frequency) live in Attributes.
type MasterRecord struct {
	ID         string            `bson:"_id" json:"id"`
	Kind       MasterKind        `bson:"kind" json:"kind"`
	Code       string            `bson:"code" json:"code"`
	Name       string            `bson:"name" json:"name"`
	Attributes map[string]string `bson:"attributes,omitempty" json:"attributes,omitempty"`
	Active     bool              `bson:"active" json:"active"`
	Deleted    bool              `bson:"deleted" json:"-"`
	CreatedAt  time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `bson:"updated_at" json:"updated_at"`
}

// MasterListFilter captures the list-view controls: free-text search over
// code and name, an optional active filter, and pagination.
type MasterListFilter struct {
	Search string
	Active *bool
	Page   int
	Limit  int
}

// MasterPage is one page of a list view plus the total row count the table
// pager needs.
type MasterPage struct {
	Records []MasterRecord `json:"records"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}
