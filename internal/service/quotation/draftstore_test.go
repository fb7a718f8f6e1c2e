package quotation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

func sampleEntry(serviceID int) models.DraftEntry {
	return models.DraftEntry{
		Form: models.FormSession{
			EntityID: serviceID,
			State:    models.StateDirty,
			Scalars:  models.QuotationScalars{Currency: "USD", ValidUpto: "2026-12-31"},
			Charges: []models.ChargeLine{{
				ChargeName:  "AIR FREIGHT",
				Currency:    "USD",
				ROE:         decimal.RequireFromString("88.75"),
				Unit:        "KG",
				Quantity:    decimal.NewFromInt(100),
				SellPerUnit: decimal.NewFromInt(3),
				CostPerUnit: decimal.NewFromInt(2),
			}},
			FieldErrors: map[string]string{"status": "cannot be blank"},
		},
	}
}

func TestDraftStoreSnapshotFidelity(t *testing.T) {
	store := NewDraftStore()
	original := sampleEntry(1)
	store.Put("sess", 1, original)

	// Mutating the caller's copy after Put must not reach the store.
	original.Form.Charges[0].ChargeName = "MUTATED"
	original.Form.FieldErrors["status"] = "mutated"

	got, ok := store.Get("sess", 1)
	require.True(t, ok)
	assert.Equal(t, "AIR FREIGHT", got.Form.Charges[0].ChargeName)
	assert.Equal(t, "cannot be blank", got.Form.FieldErrors["status"])
	assert.Equal(t, "88.75", got.Form.Charges[0].ROE.String())

	// Mutating a Get result must not reach the store either.
	got.Form.Charges[0].Unit = "CBM"
	again, ok := store.Get("sess", 1)
	require.True(t, ok)
	assert.Equal(t, "KG", again.Form.Charges[0].Unit)
}

func TestDraftStorePutReplaces(t *testing.T) {
	store := NewDraftStore()
	store.Put("sess", 1, sampleEntry(1))

	replacement := sampleEntry(1)
	replacement.Form.Scalars.Carrier = "MAERSK"
	store.Put("sess", 1, replacement)

	got, ok := store.Get("sess", 1)
	require.True(t, ok)
	assert.Equal(t, "MAERSK", got.Form.Scalars.Carrier)
}

func TestDraftStoreGetMiss(t *testing.T) {
	store := NewDraftStore()
	_, ok := store.Get("sess", 1)
	assert.False(t, ok)

	store.Put("sess", 1, sampleEntry(1))
	_, ok = store.Get("sess", 2)
	assert.False(t, ok)
	_, ok = store.Get("other", 1)
	assert.False(t, ok)
}

func TestDraftStoreEntriesAndMarkSubmitted(t *testing.T) {
	store := NewDraftStore()
	store.Put("sess", 1, sampleEntry(1))
	store.Put("sess", 2, sampleEntry(2))

	entries := store.Entries("sess")
	require.Len(t, entries, 2)
	assert.False(t, entries[1].HasQuotation)

	store.MarkSubmitted("sess")
	entries = store.Entries("sess")
	for _, entry := range entries {
		assert.True(t, entry.HasQuotation)
		assert.Equal(t, models.StateSubmitted, entry.Form.State)
	}
}

func TestDraftStoreReset(t *testing.T) {
	store := NewDraftStore()
	store.Put("sess", 1, sampleEntry(1))
	store.Put("other", 1, sampleEntry(1))

	store.Reset("sess")
	assert.Empty(t, store.Entries("sess"))

	_, ok := store.Get("other", 1)
	assert.True(t, ok)
}

func TestDraftStoreSweepIdle(t *testing.T) {
	store := NewDraftStore()
	store.Put("stale", 1, sampleEntry(1))
	store.sessions["stale"].touched = time.Now().Add(-2 * time.Hour)
	store.Put("fresh", 1, sampleEntry(1))

	removed := store.SweepIdle(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Empty(t, store.Entries("stale"))
	assert.Len(t, store.Entries("fresh"), 1)
}
