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

	businesseserrors "slotify/internal/businesses/errors"
	"slotify/pkg/config"
	mongotx "slotify/pkg/db/mongo"
	"slotify/pkg/model"
)

const (
	CollectionName = "Businesses"
)

type mongoBusinessRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BusinessRepository interface {
	Create(ctx context.Context, business *model.Business) error
	FindByID(ctx context.Context, id string) (*model.Business, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Business, error)
	UpdateProfile(ctx context.Context, id string, business *model.Business) (*mongo.UpdateResult, error)
	UpdateWeeklyHours(ctx context.Context, id string, hours model.WeeklyHours) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBusinessRepository(cfg *config.Config) BusinessRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBusinessRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBusinessRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoBusinessRepository) Create(ctx context.Context, business *model.Business) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	business.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, business)
	if err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		business.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBusinessRepository) FindByID(ctx context.Context, id string) (*model.Business, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", businesseserrors.ErrInvalidID, id)
	}

	var business model.Business
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&business)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, businesseserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find business: %w", err)
	}

	return &business, nil
}

func (r *mongoBusinessRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Business, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find businesses: %w", err)
	}
	defer cursor.Close(ctx)

	var businesses []*model.Business
	if err = cursor.All(ctx, &businesses); err != nil {
		return nil, fmt.Errorf("failed to decode businesses: %w", err)
	}

	return businesses, nil
}

func (r *mongoBusinessRepository) UpdateProfile(ctx context.Context, id string, business *model.Business) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", businesseserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"name":      business.Name,
			"time_zone": business.TimeZone,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update business: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, businesseserrors.ErrNotFound
	}

	return result, nil
}

// UpdateWeeklyHours replaces the whole weekly hours document. Hours are never
// patched per day; the settings screen submits the complete week.
func (r *mongoBusinessRepository) UpdateWeeklyHours(ctx context.Context, id string, hours model.WeeklyHours) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", businesseserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"weekly_hours": hours,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update weekly hours: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, businesseserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoBusinessRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", businesseserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete business: %w", err)
	}

	if result.DeletedCount == 0 {
		return businesseserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBusinessRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count businesses: %w", err)
	}

	return count, nil
}

func (r *mongoBusinessRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
