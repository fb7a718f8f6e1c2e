package quotation

import (
	"sync"
	"time"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

// DraftStore parks form snapshots for the services the user is not
// currently editing, keyed by drafting session and service id. Entries are
// only ever cleared by a full session reset. Every read and write passes
// through a deep copy so the live form never aliases a parked snapshot.
type DraftStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionDrafts
}

type sessionDrafts struct {
	entries map[int]models.DraftEntry
	touched time.Time
}

// NewDraftStore creates an empty draft store.
func NewDraftStore() *DraftStore {
	return &DraftStore{sessions: make(map[string]*sessionDrafts)}
}

// Put parks a snapshot for one service, replacing any previous entry.
func (s *DraftStore) Put(sessionID string, serviceID int, entry models.DraftEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts, ok := s.sessions[sessionID]
	if !ok {
		drafts = &sessionDrafts{entries: make(map[int]models.DraftEntry)}
		s.sessions[sessionID] = drafts
	}
	drafts.entries[serviceID] = deepCopyEntry(entry)
	drafts.touched = time.Now()
}

// Get returns a detached copy of the parked snapshot for one service.
func (s *DraftStore) Get(sessionID string, serviceID int) (models.DraftEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drafts, ok := s.sessions[sessionID]
	if !ok {
		return models.DraftEntry{}, false
	}
	entry, ok := drafts.entries[serviceID]
	if !ok {
		return models.DraftEntry{}, false
	}
	return deepCopyEntry(entry), true
}

// Entries returns detached copies of every parked snapshot of a session.
func (s *DraftStore) Entries(sessionID string) map[int]models.DraftEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]models.DraftEntry)
	drafts, ok := s.sessions[sessionID]
	if !ok {
		return out
	}
	for id, entry := range drafts.entries {
		out[id] = deepCopyEntry(entry)
	}
	return out
}

// MarkSubmitted flags every parked entry of a session as carrying a
// persisted quotation.
func (s *DraftStore) MarkSubmitted(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	for id, entry := range drafts.entries {
		entry.HasQuotation = true
		entry.Form.State = models.StateSubmitted
		drafts.entries[id] = entry
	}
	drafts.touched = time.Now()
}

// Reset drops every snapshot of a session.
func (s *DraftStore) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// SweepIdle drops sessions untouched for longer than the given ttl and
// returns how many were removed.
func (s *DraftStore) SweepIdle(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for id, drafts := range s.sessions {
		if drafts.touched.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// deepCopyEntry detaches a snapshot from its source. Reflective copiers
// choke on decimal.Decimal's unexported fields, so the slice and map are
// cloned by hand; decimal values themselves are immutable and safe to
// share.
func deepCopyEntry(entry models.DraftEntry) models.DraftEntry {
	out := entry
	if entry.Form.Charges != nil {
		out.Form.Charges = make([]models.ChargeLine, len(entry.Form.Charges))
		copy(out.Form.Charges, entry.Form.Charges)
	}
	if entry.Form.FieldErrors != nil {
		out.Form.FieldErrors = make(map[string]string, len(entry.Form.FieldErrors))
		for k, v := range entry.Form.FieldErrors {
			out.Form.FieldErrors[k] = v
		}
	}
	return out
}
