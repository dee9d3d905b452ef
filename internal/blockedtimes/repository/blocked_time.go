package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	blockedtimeserrors "slotify/internal/blockedtimes/errors"
	"slotify/pkg/config"
	mongotx "slotify/pkg/db/mongo"
	"slotify/pkg/model"
)

const (
	CollectionName = "Blocked_times"
)

type mongoBlockedTimeRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BlockedTimeRepository interface {
	Create(ctx context.Context, blockedTime *model.BlockedTime) error
	FindByID(ctx context.Context, id string) (*model.BlockedTime, error)
	FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.BlockedTime, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	FindAllByOwner(ctx context.Context, ownerID string) ([]*model.BlockedTime, error)
	Update(ctx context.Context, id string, blockedTime *model.BlockedTime) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBlockedTimeRepository(cfg *config.Config) BlockedTimeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBlockedTimeRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBlockedTimeRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBlockedTimeRepository) Create(ctx context.Context, blockedTime *model.BlockedTime) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	blockedTime.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, blockedTime)
	if err != nil {
		return fmt.Errorf("failed to create blocked time: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		blockedTime.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBlockedTimeRepository) FindByID(ctx context.Context, id string) (*model.BlockedTime, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", blockedtimeserrors.ErrInvalidID, id)
	}

	var blockedTime model.BlockedTime
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&blockedTime)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, blockedtimeserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find blocked time: %w", err)
	}

	return &blockedTime, nil
}

func (r *mongoBlockedTimeRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.BlockedTime, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked times: %w", err)
	}
	defer cursor.Close(ctx)

	var blockedTimes []*model.BlockedTime
	if err = cursor.All(ctx, &blockedTimes); err != nil {
		return nil, fmt.Errorf("failed to decode blocked times: %w", err)
	}

	return blockedTimes, nil
}

func (r *mongoBlockedTimeRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count blocked times: %w", err)
	}
	return count, nil
}

// FindAllByOwner loads every blocked range for an owner, unpaginated. The
// availability engine needs the complete set; recurring templates stay
// relevant indefinitely so no time filter applies.
func (r *mongoBlockedTimeRepository) FindAllByOwner(ctx context.Context, ownerID string) ([]*model.BlockedTime, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked times: %w", err)
	}
	defer cursor.Close(ctx)

	var blockedTimes []*model.BlockedTime
	if err = cursor.All(ctx, &blockedTimes); err != nil {
		return nil, fmt.Errorf("failed to decode blocked times: %w", err)
	}

	return blockedTimes, nil
}

func (r *mongoBlockedTimeRepository) Update(ctx context.Context, id string, blockedTime *model.BlockedTime) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", blockedtimeserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"start_time":      blockedTime.StartTime,
			"end_time":        blockedTime.EndTime,
			"reason":          blockedTime.Reason,
			"is_recurring":    blockedTime.IsRecurring,
			"recurrence_type": blockedTime.RecurrenceType,
			"recurrence_end":  blockedTime.RecurrenceEnd,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update blocked time: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, blockedtimeserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoBlockedTimeRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", blockedtimeserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete blocked time: %w", err)
	}

	if result.DeletedCount == 0 {
		return blockedtimeserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBlockedTimeRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
