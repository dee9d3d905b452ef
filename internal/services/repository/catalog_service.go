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

	serviceserrors "slotify/internal/services/errors"
	"slotify/pkg/config"
	"slotify/pkg/model"
)

const (
	CollectionName = "Services"
)

type mongoCatalogServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type CatalogServiceRepository interface {
	Create(ctx context.Context, svc *model.CatalogService) error
	FindByID(ctx context.Context, id string) (*model.CatalogService, error)
	FindByOwner(ctx context.Context, ownerID string, visibleOnly bool, limit int, offset int64) ([]*model.CatalogService, error)
	CountByOwner(ctx context.Context, ownerID string, visibleOnly bool) (int64, error)
	Update(ctx context.Context, id string, svc *model.CatalogService) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
}

func NewMongoCatalogServiceRepository(cfg *config.Config) CatalogServiceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogServiceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoCatalogServiceRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoCatalogServiceRepository) Create(ctx context.Context, svc *model.CatalogService) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	svc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, svc)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		svc.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCatalogServiceRepository) FindByID(ctx context.Context, id string) (*model.CatalogService, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", serviceserrors.ErrInvalidID, id)
	}

	var svc model.CatalogService
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&svc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, serviceserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &svc, nil
}

func (r *mongoCatalogServiceRepository) FindByOwner(ctx context.Context, ownerID string, visibleOnly bool, limit int, offset int64) ([]*model.CatalogService, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := r.buildOwnerFilter(ownerID, visibleOnly)

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*model.CatalogService
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}

	return services, nil
}

func (r *mongoCatalogServiceRepository) CountByOwner(ctx context.Context, ownerID string, visibleOnly bool) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.buildOwnerFilter(ownerID, visibleOnly))
	if err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}
	return count, nil
}

func (r *mongoCatalogServiceRepository) buildOwnerFilter(ownerID string, visibleOnly bool) bson.M {
	filter := bson.M{"owner_id": ownerID}
	if visibleOnly {
		filter["is_visible"] = true
	}
	return filter
}

func (r *mongoCatalogServiceRepository) Update(ctx context.Context, id string, svc *model.CatalogService) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", serviceserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"name":         svc.Name,
			"description":  svc.Description,
			"duration_min": svc.DurationMin,
			"price_cents":  svc.PriceCents,
			"is_visible":   svc.IsVisible,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, serviceserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoCatalogServiceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", serviceserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	if result.DeletedCount == 0 {
		return serviceserrors.ErrNotFound
	}

	return nil
}
