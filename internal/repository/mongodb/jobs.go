package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

// JobRepository defines the storage operations for confirmed bookings.
type JobRepository interface {
	InsertJob(ctx context.Context, job models.Job) error
	ListJobs(ctx context.Context, mode models.JobMode, page, limit int) ([]models.Job, int64, error)
	CountJobs(ctx context.Context, mode models.JobMode) (int64, error)
}

// InsertJob stores one confirmed booking.
func (r *Repository) InsertJob(ctx context.Context, job models.Job) error {
	if _, err := r.collection(jobCollection).InsertOne(ctx, job); err != nil {
		return fmt.Errorf("insert job %s: %w", job.JobNumber, err)
	}
	return nil
}

// ListJobs returns one page of bookings, newest first. An empty mode lists
// both wizards' jobs.
func (r *Repository) ListJobs(ctx context.Context, mode models.JobMode, page, limit int) ([]models.Job, int64, error) {
	coll := r.collection(jobCollection)

	query := bson.M{}
	if mode != "" {
		query["mode"] = mode
	}

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 25
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer cursor.Close(ctx)

	jobs := make([]models.Job, 0, limit)
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, 0, fmt.Errorf("decode jobs page: %w", err)
	}
	return jobs, total, nil
}

// CountJobs counts bookings of one mode; used for job number sequencing.
func (r *Repository) CountJobs(ctx context.Context, mode models.JobMode) (int64, error) {
	query := bson.M{}
	if mode != "" {
		query["mode"] = mode
	}
	total, err := r.collection(jobCollection).CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return total, nil
}
