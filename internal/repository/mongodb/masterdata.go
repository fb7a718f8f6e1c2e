package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

// ErrNotFound is returned when a record does not exist or is soft-deleted.
var ErrNotFound = errors.New("record not found")

// MasterRepository defines the storage operations behind the master-data
// CRUD screens.
type MasterRepository interface {
	ListMaster(ctx context.Context, kind models.MasterKind, filter models.MasterListFilter) (*models.MasterPage, error)
	GetMaster(ctx context.Context, kind models.MasterKind, id string) (*models.MasterRecord, error)
	InsertMaster(ctx context.Context, record models.MasterRecord) error
	UpdateMaster(ctx context.Context, record models.MasterRecord) error
	SetMasterActive(ctx context.Context, kind models.MasterKind, id string, active bool) error
	SoftDeleteMaster(ctx context.Context, kind models.MasterKind, id string) error
}

// ListMaster returns one page of a catalogue, filtered and ordered by code.
func (r *Repository) ListMaster(ctx context.Context, kind models.MasterKind, filter models.MasterListFilter) (*models.MasterPage, error) {
	coll := r.collection(masterCollection)

	query := bson.M{"kind": kind, "deleted": false}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"code": pattern},
			bson.M{"name": pattern},
		}
	}
	if filter.Active != nil {
		query["active"] = *filter.Active
	}

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", kind, err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 200 {
		limit = 25
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "code", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer cursor.Close(ctx)

	records := make([]models.MasterRecord, 0, limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode %s page: %w", kind, err)
	}

	return &models.MasterPage{Records: records, Total: total, Page: page, Limit: limit}, nil
}

// GetMaster fetches one live record.
func (r *Repository) GetMaster(ctx context.Context, kind models.MasterKind, id string) (*models.MasterRecord, error) {
	var record models.MasterRecord
	err := r.collection(masterCollection).
		FindOne(ctx, bson.M{"_id": id, "kind": kind, "deleted": false}).
		Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return &record, nil
}

// InsertMaster stores a new record.
func (r *Repository) InsertMaster(ctx context.Context, record models.MasterRecord) error {
	if _, err := r.collection(masterCollection).InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert %s: %w", record.Kind, err)
	}
	return nil
}

// UpdateMaster replaces the editable fields of a record.
func (r *Repository) UpdateMaster(ctx context.Context, record models.MasterRecord) error {
	update := bson.M{"$set": bson.M{
		"code":       record.Code,
		"name":       record.Name,
		"attributes": record.Attributes,
		"updated_at": time.Now(),
	}}
	result, err := r.collection(masterCollection).
		UpdateOne(ctx, bson.M{"_id": record.ID, "kind": record.Kind, "deleted": false}, update)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", record.Kind, record.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMasterActive flips the activate/deactivate row action.
func (r *Repository) SetMasterActive(ctx context.Context, kind models.MasterKind, id string, active bool) error {
	update := bson.M{"$set": bson.M{"active": active, "updated_at": time.Now()}}
	result, err := r.collection(masterCollection).
		UpdateOne(ctx, bson.M{"_id": id, "kind": kind, "deleted": false}, update)
	if err != nil {
		return fmt.Errorf("set active %s %s: %w", kind, id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteMaster hides a record from every list without destroying it.
func (r *Repository) SoftDeleteMaster(ctx context.Context, kind models.MasterKind, id string) error {
	update := bson.M{"$set": bson.M{"deleted": true, "updated_at": time.Now()}}
	result, err := r.collection(masterCollection).
		UpdateOne(ctx, bson.M{"_id": id, "kind": kind, "deleted": false}, update)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
