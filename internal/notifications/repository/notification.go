package repository

import (
	"context"
	"fmt"
	"time"

	notificationserrors "taskhire/internal/notifications/errors"
	"taskhire/pkg/config"
	mongotx "taskhire/pkg/db/mongo"
	"taskhire/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Notifications"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByReceiver(ctx context.Context, receiver model.Party, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, receiver model.Party, ids []string) (int64, error)
	Delete(ctx context.Context, receiver model.Party, ids []string) (int64, error)
}

type mongoNotificationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoNotificationRepository(cfg *config.Config) NotificationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoNotificationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	n.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if n.Status == "" {
		n.Status = model.NotificationUnread
	}

	result, err := r.collection.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	n.ID = mongotx.InsertedHex(result.InsertedID)
	return nil
}

func (r *mongoNotificationRepository) FindByReceiver(ctx context.Context, receiver model.Party, limit int) ([]*model.Notification, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, receiverFilter(receiver), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := make([]*model.Notification, 0)
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead and Delete always filter on the receiver pair, so a guessed id
// belonging to another account matches nothing.
func (r *mongoNotificationRepository) MarkRead(ctx context.Context, receiver model.Party, ids []string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter, err := scopedIDs(receiver, ids)
	if err != nil {
		return 0, err
	}

	result, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": model.NotificationRead}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.MatchedCount, nil
}

func (r *mongoNotificationRepository) Delete(ctx context.Context, receiver model.Party, ids []string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter, err := scopedIDs(receiver, ids)
	if err != nil {
		return 0, err
	}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return result.DeletedCount, nil
}

func receiverFilter(receiver model.Party) bson.M {
	return bson.M{"receiver.id": receiver.ID, "receiver.role": receiver.Role}
}

func scopedIDs(receiver model.Party, ids []string) (bson.M, error) {
	oids, err := mongotx.ObjectIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", notificationserrors.ErrInvalidID, err)
	}
	filter := receiverFilter(receiver)
	filter["_id"] = bson.M{"$in": oids}
	return filter, nil
}
