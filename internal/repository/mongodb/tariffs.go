package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

// TariffRepository defines the storage operations behind tariff authoring
// and the destination-flow lookup.
type TariffRepository interface {
	ListTariffs(ctx context.Context, page, limit int) ([]models.Tariff, int64, error)
	GetTariff(ctx context.Context, id string) (*models.Tariff, error)
	InsertTariff(ctx context.Context, tariff models.Tariff) error
	UpdateTariff(ctx context.Context, tariff models.Tariff) error
	DeleteTariff(ctx context.Context, id string) error
	Lookup(ctx context.Context, query models.TariffLookup) (*models.Tariff, error)
}

// ListTariffs returns one page of rate cards, newest first.
func (r *Repository) ListTariffs(ctx context.Context, page, limit int) ([]models.Tariff, int64, error) {
	coll := r.collection(tariffCollection)

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count tariffs: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 25
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("list tariffs: %w", err)
	}
	defer cursor.Close(ctx)

	tariffs := make([]models.Tariff, 0, limit)
	if err := cursor.All(ctx, &tariffs); err != nil {
		return nil, 0, fmt.Errorf("decode tariffs page: %w", err)
	}
	return tariffs, total, nil
}

// GetTariff fetches one rate card.
func (r *Repository) GetTariff(ctx context.Context, id string) (*models.Tariff, error) {
	var tariff models.Tariff
	err := r.collection(tariffCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&tariff)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tariff %s: %w", id, err)
	}
	return &tariff, nil
}

// InsertTariff stores a new rate card.
func (r *Repository) InsertTariff(ctx context.Context, tariff models.Tariff) error {
	if _, err := r.collection(tariffCollection).InsertOne(ctx, tariff); err != nil {
		return fmt.Errorf("insert tariff %s: %w", tariff.Name, err)
	}
	return nil
}

// UpdateTariff replaces the editable fields of a rate card.
func (r *Repository) UpdateTariff(ctx context.Context, tariff models.Tariff) error {
	update := bson.M{"$set": bson.M{
		"name":              tariff.Name,
		"service_type":      tariff.ServiceType,
		"port_of_load":      tariff.PortOfLoad,
		"port_of_discharge": tariff.PortOfDisch,
		"container_type":    tariff.ContainerType,
		"lines":             tariff.Lines,
		"valid_upto":        tariff.ValidUpto,
		"active":            tariff.Active,
		"updated_at":        time.Now(),
	}}
	result, err := r.collection(tariffCollection).UpdateOne(ctx, bson.M{"_id": tariff.ID}, update)
	if err != nil {
		return fmt.Errorf("update tariff %s: %w", tariff.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTariff removes a rate card.
func (r *Repository) DeleteTariff(ctx context.Context, id string) error {
	result, err := r.collection(tariffCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete tariff %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Lookup finds the active rate card for a lane, nil when none is
// published. Container type participates only for FCL cards.
func (r *Repository) Lookup(ctx context.Context, query models.TariffLookup) (*models.Tariff, error) {
	filter := bson.M{
		"service_type":      query.ServiceType,
		"port_of_load":      query.PortOfLoad,
		"port_of_discharge": query.PortOfDisch,
		"active":            true,
	}
	if query.ServiceType == models.ServiceFCL && query.ContainerType != "" {
		filter["container_type"] = query.ContainerType
	}

	var tariff models.Tariff
	err := r.collection(tariffCollection).
		FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})).
		Decode(&tariff)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tariff lookup: %w", err)
	}
	return &tariff, nil
}
